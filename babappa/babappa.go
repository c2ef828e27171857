/*

Babappa drives a molecular-evolution analysis pipeline: sequence
quality control, recombination-block splitting and validation, and
likelihood-ratio-test aggregation with false-discovery-rate correction
across many genes and blocks.

Typical block workflow:

	babappa split alignment.fasta results.gard.json
	babappa filter
	babappa lrt site codeml_results.csv

To see all the commands run:

	babappa --help

*/
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/op/go-logging"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/babappa/babappa/blocks"
	"github.com/babappa/babappa/dist"
	"github.com/babappa/babappa/lrt"
	"github.com/babappa/babappa/qc"
	"github.com/babappa/babappa/runstore"
	"github.com/babappa/babappa/tree"
)

// These variables are set during the compilation.
var githash = ""
var buildstamp = ""
var version = fmt.Sprintf("revision: %s, build time: %s", githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("babappa")
var formatter = logging.MustStringFormatter(`%{message}`)

// command-line interface
var (
	app = kingpin.New("babappa", "recombination-aware positive selection pipeline").Version(version)

	outLogF  = app.Flag("log", "write log to a file").String()
	logLevel = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("info").
		Enum("critical", "error", "warning", "notice", "info", "debug")

	// sequence quality control
	qcCmd    = app.Command("qc", "filter coding sequences by quality")
	qcInput  = qcCmd.Arg("input", "input FASTA file").Required().ExistingFile()
	qcOutput = qcCmd.Arg("output", "output file for QC-passed sequences").Required().String()

	// stop-codon masking
	maskCmd       = app.Command("mask", "mask stop codons and ambiguous codons")
	maskInput     = maskCmd.Arg("input", "input FASTA file").Required().ExistingFile()
	maskOutput    = maskCmd.Arg("output", "masked output file").Required().String()
	maskExempt    = maskCmd.Flag("exempt-terminal", "leave the terminal stop codon unmasked").Bool()
	maskTolerance = maskCmd.Flag("tolerance", "maximal masked-codon fraction per sequence").
			Default("0.2").Float64()

	// recombination block splitting
	splitCmd   = app.Command("split", "split an alignment into recombination blocks")
	splitFasta = splitCmd.Arg("alignment", "aligned FASTA file").Required().ExistingFile()
	splitJSON  = splitCmd.Arg("report", "GARD JSON report").Required().ExistingFile()
	splitOut   = splitCmd.Flag("out", "output directory root").
			Default("recombination_blocks").String()

	// block validation
	filterCmd     = app.Command("filter", "validate block files, moving invalid ones aside")
	filterBlocks  = filterCmd.Flag("blocks", "block directory root").
			Default("recombination_blocks").String()
	filterDiscard = filterCmd.Flag("discard", "discard directory root").
			Default("discarded_blocks").String()

	// foreground tree generation
	fgCmd  = app.Command("foreground", "generate per-leaf foreground-labeled trees")
	fgTree = fgCmd.Arg("tree", "Newick tree file").Required().ExistingFile()
	fgOut  = fgCmd.Arg("outdir", "output directory").Required().String()

	// LRT aggregation
	lrtCmd = app.Command("lrt", "likelihood-ratio tests with BH correction")

	lrtBranchCmd = lrtCmd.Command("branch", "per-gene branch and branch-site tests")
	lrtBranchCSV = lrtBranchCmd.Arg("csv", "per-analysis results table").Required().ExistingFile()
	lrtBranchOut = lrtBranchCmd.Flag("out", "output directory").Default(".").String()

	lrtSiteCmd = lrtCmd.Command("site", "fixed site-model comparisons")
	lrtSiteCSV = lrtSiteCmd.Arg("csv", "per-model results table").Required().ExistingFile()
	lrtSiteOut = lrtSiteCmd.Flag("out", "output file").Default(lrt.ResultsFile).String()

	// results merging
	mergeCmd     = app.Command("merge", "consolidate per-batch corrected results")
	mergeSite    = mergeCmd.Flag("site", "site-model results directory").String()
	mergeBS      = mergeCmd.Flag("branchsite", "branch-site results directory").String()
	mergeBlock   = mergeCmd.Flag("block", "per-block results directory").String()
	mergeOutFile = mergeCmd.Arg("output", "consolidated output CSV").Required().String()

	// run status
	statusCmd = app.Command("status", "show the status of a pipeline run")
	statusDB  = statusCmd.Flag("db", "run status database").Default("babappa_runs.db").String()
	statusID  = statusCmd.Arg("id", "run identifier").Required().String()

	sweepCmd = app.Command("sweep", "garbage-collect finished pipeline runs")
	sweepDB  = sweepCmd.Flag("db", "run status database").Default("babappa_runs.db").String()
	sweepTTL = sweepCmd.Flag("ttl", "minimal age of terminal runs to delete").
			Default("168h").Duration()
)

func runLRTBranch() error {
	table, err := lrt.ReadTableFile(*lrtBranchCSV)
	if err != nil {
		return err
	}

	branchSite, branch, incomplete := lrt.BranchTests(table)
	for _, miss := range incomplete {
		log.Warningf("incomplete: %s", miss)
	}
	if len(incomplete) > 0 {
		log.Warningf("%d genes had incomplete model pairs", len(incomplete))
	}
	if len(branchSite) == 0 && len(branch) == 0 {
		log.Notice("no comparisons found, skipping correction")
		return nil
	}
	log.Infof("LRT critical value at %v (df=1): %.4f",
		lrt.Alpha, dist.QuantileChi2(1-lrt.Alpha, 1))

	if err := os.MkdirAll(*lrtBranchOut, 0755); err != nil {
		return err
	}
	// the branch-site and branch tests are separate hypothesis
	// families; each gets its own correction
	if len(branchSite) > 0 {
		fn := filepath.Join(*lrtBranchOut, "lrt_results_branchsite.csv")
		if err := lrt.WriteResultsFile(fn, lrt.Correct(branchSite)); err != nil {
			return err
		}
		log.Noticef("%d branch-site tests written to %s", len(branchSite), fn)
	}
	if len(branch) > 0 {
		fn := filepath.Join(*lrtBranchOut, "lrt_results_branch.csv")
		if err := lrt.WriteResultsFile(fn, lrt.Correct(branch)); err != nil {
			return err
		}
		log.Noticef("%d branch tests written to %s", len(branch), fn)
	}
	return nil
}

func runLRTSite() error {
	table, err := lrt.ReadTableFile(*lrtSiteCSV)
	if err != nil {
		return err
	}
	results, err := lrt.SiteTests(table)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		log.Notice("no comparisons found, skipping correction")
		return nil
	}
	if err := lrt.WriteResultsFile(*lrtSiteOut, lrt.Correct(results)); err != nil {
		return err
	}
	log.Noticef("%d site-model tests written to %s", len(results), *lrtSiteOut)
	return nil
}

func runMerge() error {
	var sources []lrt.MergeSource
	for _, src := range []struct{ dir, label string }{
		{*mergeSite, "SiteModel"},
		{*mergeBS, "BranchSite"},
		{*mergeBlock, "Block"},
	} {
		if src.dir != "" {
			sources = append(sources, lrt.MergeSource{Dir: src.dir, Label: src.label})
		}
	}
	if len(sources) == 0 {
		return fmt.Errorf("no input directories given")
	}

	f, err := os.Create(*mergeOutFile)
	if err != nil {
		return err
	}
	n, err := lrt.Merge(f, sources)
	if err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if n == 0 {
		log.Notice("no corrected results found to merge")
	} else {
		log.Noticef("%d rows merged into %s", n, *mergeOutFile)
	}
	return nil
}

func runStatus() error {
	store, err := runstore.Open(*statusDB)
	if err != nil {
		return err
	}
	defer store.Close()

	r, err := store.Get(*statusID)
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%s\tcreated %s\n", r.ID, r.Status, r.Created.Format(time.RFC3339))
	for _, line := range r.Logs {
		fmt.Println("  " + line)
	}
	return nil
}

func runSweep() error {
	store, err := runstore.Open(*sweepDB)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Sweep(*sweepTTL)
	if err != nil {
		return err
	}
	log.Noticef("deleted %d runs", n)
	return nil
}

func runForeground() error {
	f, err := os.Open(*fgTree)
	if err != nil {
		return err
	}
	t, err := tree.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %v", *fgTree, err)
	}

	written, err := tree.WriteForegrounds(t, *fgOut)
	if err != nil {
		return err
	}
	for _, fn := range written {
		log.Infof("foreground tree written: %s", fn)
	}
	log.Noticef("%d foreground trees written to %s", len(written), *fgOut)
	return nil
}

func main() {
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	// logging
	logging.SetFormatter(formatter)

	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("Error creating log file:", err)
		}
		defer f.Close()
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	for _, name := range []string{"babappa", "gard", "blocks", "qc", "lrt", "runstore", "pipeline"} {
		logging.SetLevel(level, name)
	}

	switch cmd {
	case qcCmd.FullCommand():
		err = qc.Process(*qcInput, *qcOutput)

	case maskCmd.FullCommand():
		policy := qc.MaskPolicy{ExemptTerminal: *maskExempt, Tolerance: *maskTolerance}
		err = qc.ProcessMask(*maskInput, *maskOutput, policy)

	case splitCmd.FullCommand():
		var written []string
		written, err = blocks.Split(*splitFasta, *splitJSON, *splitOut)
		if err == nil {
			log.Noticef("%d block files written under %s", len(written), *splitOut)
		}

	case filterCmd.FullCommand():
		var results []blocks.CheckResult
		results, err = blocks.Filter(*filterBlocks, *filterDiscard)
		if err == nil {
			discarded := 0
			for _, r := range results {
				if !r.Valid {
					discarded++
				}
			}
			log.Noticef("%d blocks checked, %d discarded", len(results), discarded)
		}

	case fgCmd.FullCommand():
		err = runForeground()

	case lrtBranchCmd.FullCommand():
		err = runLRTBranch()

	case lrtSiteCmd.FullCommand():
		err = runLRTSite()

	case mergeCmd.FullCommand():
		err = runMerge()

	case runCmd.FullCommand():
		err = runTool()

	case statusCmd.FullCommand():
		err = runStatus()

	case sweepCmd.FullCommand():
		err = runSweep()
	}

	if err != nil {
		log.Fatal(err)
	}
}
