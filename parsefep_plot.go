package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Plot: exports plot-ready data files for an external renderer
// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// dataFilePlotter implements the plotter collaborator by writing plain-text
// data files for an external tool to render. It does no drawing itself.
// Reverse series are sign flipped here, at the display boundary: going
// forward costs x kcal/mol, so the backward overlay should read -x. The
// estimator never sees the flipped values.
type dataFilePlotter struct {
	directory string
	label     string
}

// overlap writes the forward and negated reverse work samples per window
// pair, for probability histogram overlap plots. Forward window i pairs with
// reverse window N-1-i, same as during estimation.
func (p dataFilePlotter) overlap(fwdWork [][]float64, revWork [][]float64, labels []string) error {
	return p.writePairedSeries("dE-overlap", fwdWork, revWork, labels)
}

// timeSeries writes the forward and negated reverse one-step free energy
// samples per window pair, for free-energy-over-time plots.
func (p dataFilePlotter) timeSeries(fwdFreeEnergy [][]float64, revFreeEnergy [][]float64, labels []string) error {
	return p.writePairedSeries("dGvTime", fwdFreeEnergy, revFreeEnergy, labels)
}

func (p dataFilePlotter) writePairedSeries(kind string, fwd [][]float64, rev [][]float64, labels []string) error {
	outPath := filepath.Join(p.directory, p.label+"_"+kind+".dat")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Println("Failed to create plot data file: " + outPath)
		return err
	}
	defer out.Close()

	n := len(fwd)
	for kF := 0; kF < n; kF++ {
		kR := n - 1 - kF
		label := ""
		if kF < len(labels) {
			label = labels[kF]
		}
		if _, err := fmt.Fprintf(out, "# window %d %s\n", kF, label); err != nil {
			return err
		}
		for i, v := range fwd[kF] {
			if _, err := fmt.Fprintf(out, "F %d %.6f\n", i, v); err != nil {
				return err
			}
		}
		if kR < len(rev) {
			for i, v := range rev[kR] {
				if _, err := fmt.Fprintf(out, "R %d %.6f\n", i, -v); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
	}
	return nil
}

// summary writes the cumulative free energy profile over lambda, with the
// component channels as extra columns when decomposition was run.
func (p dataFilePlotter) summary(composite *compositeProfile) error {
	outPath := filepath.Join(p.directory, p.label+"_summary.dat")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Println("Failed to create plot data file: " + outPath)
		return err
	}
	defer out.Close()

	header := "# lambda dG sigma"
	if composite.elec != nil && composite.vdw != nil {
		header += " elec vdw"
	}
	if _, err := fmt.Fprintln(out, header); err != nil {
		return err
	}

	n := len(composite.total.cumulative)
	for i := 0; i < n; i++ {
		// lambda runs 0 to 1 across the profile
		lambda := 0.0
		if n > 1 {
			lambda = float64(i) / float64(n-1)
		}
		line := fmt.Sprintf("%.6f %.6f %.6f", lambda, composite.total.cumulative[i], composite.total.sigma[i])
		if composite.elec != nil && composite.vdw != nil {
			line += fmt.Sprintf(" %.6f %.6f", composite.elec.cumulative[i], composite.vdw.cumulative[i])
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
