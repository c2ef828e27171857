package lrt

import "sort"

// Alpha is the significance threshold applied to BH-adjusted p-values.
const Alpha = 0.05

// Corrected is a test result with its Benjamini-Hochberg adjusted
// p-value.
type Corrected struct {
	Result
	// PAdj is the BH-adjusted p-value, capped at 1.
	PAdj float64
	// Significant reports PAdj < Alpha.
	Significant bool
}

// Correct applies the Benjamini-Hochberg step-up procedure over one
// family of tests. The family is exactly the slice passed in: the
// caller must never split a family across calls or merge unrelated
// ones, or the FDR guarantee is lost. Output keeps the input order.
func Correct(results []Result) []Corrected {
	m := len(results)
	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return results[order[i]].P < results[order[j]].P
	})

	adj := make([]float64, m)
	run := 1.0
	for rank := m; rank >= 1; rank-- {
		v := results[order[rank-1]].P * float64(m) / float64(rank)
		if v < run {
			run = v
		}
		adj[order[rank-1]] = run
	}

	corrected := make([]Corrected, m)
	for i, res := range results {
		corrected[i] = Corrected{
			Result:      res,
			PAdj:        adj[i],
			Significant: adj[i] < Alpha,
		}
	}
	return corrected
}
