package main

import (
	"fmt"
)

// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Analysis: runs the parse -> decorrelate -> BAR pipeline per channel and assembles the composite profile
// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// Analysis channels. Total is the one-step free energy estimate; Elec and VdW
// are the component energy deltas computed during parsing.
const channelTotal string = "Total"
const channelElec string = "Elec"
const channelVdw string = "VdW"

// analysisOptions is the explicit configuration value threaded through the
// pipeline. Nothing in the pipeline reads ambient state.
type analysisOptions struct {
	// label prefixed to output files and report lines
	outputLabel string
	// also analyze the electrostatic and van der Waals channels
	decompose bool
	// print per-window correlation and BAR tables
	verbose bool
	// hand the parsed series and profiles to the installed plotter
	plotEnabled bool
}

// compositeProfile aligns the per-channel profiles by window index. The elec
// and vdw entries are nil unless decomposition was requested.
type compositeProfile struct {
	// lambda range labels of the forward windows
	labels []string
	total  *channelProfile
	elec   *channelProfile
	vdw    *channelProfile
}

// plotter is the rendering collaborator. Implementations receive raw series
// and profiles; any sign flip of the reverse data for display (forward and
// reverse overlays point in opposite directions) happens inside the plotter,
// never before estimation.
type plotter interface {
	// probability overlap of forward and reverse work distributions per window
	overlap(fwdWork [][]float64, revWork [][]float64, labels []string) error
	// free energy sample series over simulation time per window
	timeSeries(fwdFreeEnergy [][]float64, revFreeEnergy [][]float64, labels []string) error
	// cumulative free energy profiles over lambda
	summary(profile *compositeProfile) error
}

// AnalysisManager is the "API" to this file. It runs the channel pipelines
// over parsed forward and reverse windows, reports each channel, and
// assembles the composite profile. Channels are estimated independently:
// each computes its own statistical inefficiencies.
func AnalysisManager(fwdWindows []windowSamples, revWindows []windowSamples,
	opt analysisOptions, d decorrelator, est estimator, rep *reporter, p plotter) (*compositeProfile, error) {

	composite := &compositeProfile{labels: windowLabels(fwdWindows)}

	// Decomposed channels run first so the total lands last in the report,
	// same ordering the report consumers expect
	channels := []string{channelTotal}
	if opt.decompose {
		channels = []string{channelVdw, channelElec, channelTotal}
	}

	for _, channel := range channels {
		fwd, err := seriesForChannel(fwdWindows, channel)
		if err != nil {
			return nil, err
		}
		rev, err := seriesForChannel(revWindows, channel)
		if err != nil {
			return nil, err
		}

		prof, err := estimateChannel(fwd, rev, d, est)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", channel, err)
		}

		rep.channel(channel, prof)

		switch channel {
		case channelTotal:
			composite.total = prof
		case channelElec:
			composite.elec = prof
		case channelVdw:
			composite.vdw = prof
		}
	}

	if opt.plotEnabled && p != nil {
		if err := runPlots(fwdWindows, revWindows, composite, p); err != nil {
			return nil, fmt.Errorf("plotting: %w", err)
		}
	}

	return composite, nil
}

// runPlots feeds the plotting collaborator. Kept separate from estimation so
// a plot failure cannot be mistaken for an estimation failure.
func runPlots(fwdWindows []windowSamples, revWindows []windowSamples, composite *compositeProfile, p plotter) error {
	fwdWork := make([][]float64, len(fwdWindows))
	revWork := make([][]float64, len(revWindows))
	fwdFE := make([][]float64, len(fwdWindows))
	revFE := make([][]float64, len(revWindows))
	for i, w := range fwdWindows {
		fwdWork[i] = w.work
		fwdFE[i] = w.freeEnergy
	}
	for i, w := range revWindows {
		revWork[i] = w.work
		revFE[i] = w.freeEnergy
	}

	if err := p.overlap(fwdWork, revWork, composite.labels); err != nil {
		return err
	}
	if err := p.timeSeries(fwdFE, revFE, composite.labels); err != nil {
		return err
	}
	return p.summary(composite)
}
