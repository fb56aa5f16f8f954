package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Report: formats per-window diagnostics and net free energy summaries
// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// reporter formats channel results as plain text. It owns no data and writes
// to an injected sink so tests can capture the output.
type reporter struct {
	out     io.Writer
	verbose bool
}

func newReporter(out io.Writer, verbose bool) *reporter {
	return &reporter{out: out, verbose: verbose}
}

// channel reports one channel's profile: correlation and BAR tables when
// verbose, the net summary line always.
func (r *reporter) channel(label string, prof *channelProfile) {
	if r.verbose {
		r.correlationTable(label, prof.corrTimes)
		r.barTable(label, prof.records)
	}
	fmt.Fprintf(r.out, "\nNet dG_%s energy difference = %.4f +- %.4f kcal/mol\n", label, prof.net, prof.netSigma)
}

// correlationTable prints the per-window statistical inefficiencies of both
// directions. Rows are per direction-local window index, not per pair.
func (r *reporter) correlationTable(label string, corrTimes []correlationTimes) {
	fmt.Fprintf(r.out, "\n\n#####---Correlation Times for dG_%s--#####\n", label)
	fmt.Fprintf(r.out, "%3s %5s %9s\n", "Window", "F", "R")
	for i, ct := range corrTimes {
		fmt.Fprintf(r.out, "%3d %10.3f %10.3f\n", i, ct.forward, ct.reverse)
	}
}

// barTable prints the per window-pair estimator output: cumulative free
// energy, the window's own contribution, and its uncertainty.
func (r *reporter) barTable(label string, records []estimateRecord) {
	fmt.Fprintf(r.out, "\n\n#####---BAR estimator for dG_%s---#####\n", label)
	fmt.Fprintf(r.out, "%3s %5s %11s %11s\n", "Window", "dG", "ddG", "Uncert.")
	fmt.Fprintln(r.out, "---------------------------------------------------------")
	for _, rec := range records {
		fmt.Fprintf(r.out, "%3d %10.4f %10.4f +- %3.4f\n", rec.window, rec.cumulative, rec.delta, rec.sigma)
	}
}

// writeResultsFile persists the per-window free energies and the net result
// of every computed channel to a results file next to the input data.
func writeResultsFile(directory string, label string, composite *compositeProfile) error {
	outputFile := filepath.Join(directory, label+"_results.txt")

	out, err := os.Create(outputFile)
	if err != nil {
		fmt.Println("Failed to create output file: " + outputFile)
		return err
	}
	defer out.Close()

	channels := []struct {
		name string
		prof *channelProfile
	}{
		{channelTotal, composite.total},
		{channelElec, composite.elec},
		{channelVdw, composite.vdw},
	}

	for _, ch := range channels {
		if ch.prof == nil {
			continue
		}
		if _, err := fmt.Fprintf(out, "%s FEP Results \n", ch.name); err != nil {
			return err
		}
		for i, rec := range ch.prof.records {
			lambdaLabel := ""
			if i < len(composite.labels) {
				lambdaLabel = composite.labels[i]
			}
			_, err := fmt.Fprintf(out, "%s\t%.4f +/- %.4f kcal/mol \n", lambdaLabel, rec.delta, rec.sigma)
			if err != nil {
				fmt.Println("Failed to write " + ch.name + " FEP values to output file: " + outputFile)
				return err
			}
		}
		if _, err := fmt.Fprintf(out, "\nTotal: %.4f +/- %.4f kcal/mol \n\n", ch.prof.net, ch.prof.netSigma); err != nil {
			return err
		}
	}

	return nil
}

// reportFatal prints context for the user before aborting, the same way the
// command line layer handles unrecoverable errors everywhere else.
func reportFatal(context string, err error) {
	fmt.Println(context)
	log.Fatal(err)
}
