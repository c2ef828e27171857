package lrt

import (
	"fmt"
	"strings"

	"github.com/babappa/babappa/dist"
)

// Result is one resolved likelihood-ratio test.
type Result struct {
	// Null and Alt are the analysis names of the null and
	// alternative model fits.
	Null string
	Alt  string
	// Stat is 2*(lnL_alt - lnL_null). Negative values are kept
	// as-is: they indicate a model-fit anomaly the user must see.
	Stat float64
	// Df is the chi-square degrees of freedom.
	Df float64
	// P is the raw upper-tail p-value.
	P float64
}

// test builds a Result from a resolved (null, alternative) pair.
func test(null, alt Record, df float64) Result {
	stat := 2 * (alt.LnL - null.LnL)
	return Result{
		Null: null.Analysis,
		Alt:  alt.Analysis,
		Stat: stat,
		Df:   df,
		P:    dist.SurvivalChi2(stat, df),
	}
}

// branch-model analysis name suffixes
var geneSuffixes = []string{"_BS_NULL", "_BS", "_B"}

// geneName strips the model suffix from a branch-mode analysis name.
func geneName(analysis string) string {
	for _, suffix := range geneSuffixes {
		if strings.HasSuffix(analysis, suffix) {
			return strings.TrimSuffix(analysis, suffix)
		}
	}
	return analysis
}

// BranchTests resolves the per-gene branch-site tests ({gene}_BS vs
// {gene}_BS_NULL) and branch tests ({gene}_B vs the batch-wide M0 row),
// both at one degree of freedom. Genes are discovered in table row
// order. Genes lacking one half of a pair are excluded from that test
// and reported in incomplete instead of being dropped silently.
func BranchTests(t *Table) (branchSite, branch []Result, incomplete []string) {
	m0, hasM0 := t.Get("M0")
	if !hasM0 {
		log.Warning("no M0 row found, skipping branch model tests")
	}

	seen := make(map[string]bool)
	for _, rec := range t.Rows {
		if rec.Analysis == "M0" {
			continue
		}
		gene := geneName(rec.Analysis)
		if seen[gene] {
			continue
		}
		seen[gene] = true

		bs, hasBS := t.Get(gene + "_BS")
		bsNull, hasBSNull := t.Get(gene + "_BS_NULL")
		switch {
		case hasBS && hasBSNull:
			branchSite = append(branchSite, test(bsNull, bs, 1))
		case hasBS:
			incomplete = append(incomplete, fmt.Sprintf("%s: missing %s_BS_NULL", gene, gene))
		case hasBSNull:
			incomplete = append(incomplete, fmt.Sprintf("%s: missing %s_BS", gene, gene))
		}

		if b, ok := t.Get(gene + "_B"); ok {
			if hasM0 {
				branch = append(branch, test(m0, b, 1))
			} else {
				incomplete = append(incomplete, fmt.Sprintf("%s: missing M0", gene))
			}
		}
	}

	return branchSite, branch, incomplete
}

// siteComparisons are the fixed (null, alternative) site-model pairs:
// M0 vs M1, M1 vs M2, M0 vs M3 and M7 vs M8.
var siteComparisons = [4][2]string{
	{"Model 0", "Model 1"},
	{"Model 1", "Model 2"},
	{"Model 0", "Model 3"},
	{"Model 7", "Model 8"},
}

// SiteTests resolves the fixed site-model comparisons, using the
// reported parameter-count difference as degrees of freedom. Pairs with
// a missing model are skipped. The np column is required in this mode.
func SiteTests(t *Table) ([]Result, error) {
	var results []Result
	for _, cmp := range siteComparisons {
		null, okNull := t.Get(cmp[0])
		alt, okAlt := t.Get(cmp[1])
		if !okNull || !okAlt {
			log.Infof("skipping %s vs %s: model not in table", cmp[0], cmp[1])
			continue
		}
		if !null.HasNP || !alt.HasNP {
			return nil, fmt.Errorf("comparison %s vs %s: np column required for site models",
				cmp[0], cmp[1])
		}
		results = append(results, test(null, alt, alt.NP-null.NP))
	}
	return results, nil
}
