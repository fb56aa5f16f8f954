package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Parser: turns one direction's concatenated fepout stream into per-window sample series
// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// NAMD fepout markers. A "#Free energy change..." line closes out a window and
// carries its lambda range; sample lines only count once the "#STARTING
// COLLECTION OF ENSEMBLE AVERAGE" line has been seen, since everything before
// that is equilibration and must be discarded.
const windowSummaryMarker string = "#Free"
const collectionMarker string = "#STARTING"

// Columns of a FepEnergy sample line used by the analysis (whitespace tokens,
// zero indexed). dE is the work sample, dG the one-step free energy estimate.
const colElecUnperturbed int = 2
const colElecPerturbed int = 3
const colVdwUnperturbed int = 4
const colVdwPerturbed int = 5
const colWork int = 6
const colFreeEnergy int = 9
const minSampleTokens int = 10

// Tokens of the window summary line holding the lambda range label, e.g.
// "[ 0.975 1 ]" from tokens 6 through 9
const labelTokenStart int = 6
const labelTokenEnd int = 10

// windowSamples holds everything collected for one lambda window of one
// direction. The elec and vdw series are derived during parsing as
// (perturbed - unperturbed) and are not independently sampled.
type windowSamples struct {
	// lambda range label taken from the window summary line
	label string
	// work samples (dE column)
	work []float64
	// one-step free energy samples (dG column)
	freeEnergy []float64
	// electrostatic component deltas
	elec []float64
	// van der Waals component deltas
	vdw []float64
}

// parser states for the two phase scan of a window segment
type parserState int

const (
	collectingPreamble parserState = iota
	collectingEnsemble
)

// parseFEPStream scans a concatenated fepout stream and returns one
// windowSamples record per lambda window, ordered by appearance. The position
// in the slice is the window index. A window with no ensemble samples before
// its summary line yields empty series; downstream decorrelation is
// responsible for rejecting those explicitly.
func parseFEPStream(r io.Reader) ([]windowSamples, error) {
	var windows []windowSamples

	// accumulation buffers for the window currently being scanned
	current := windowSamples{}
	state := collectingPreamble
	lineNum := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}

		// Window summary marker: seal the current window under the running
		// index, then reset the buffers and drop back to the preamble state
		if tokens[0] == windowSummaryMarker {
			if len(tokens) < labelTokenEnd {
				return nil, fmt.Errorf("window %d: summary line %d has %d tokens, expected at least %d: %q",
					len(windows), lineNum, len(tokens), labelTokenEnd, line)
			}
			current.label = strings.Join(tokens[labelTokenStart:labelTokenEnd], " ")
			windows = append(windows, current)
			current = windowSamples{}
			state = collectingPreamble
			continue
		}

		// Collection marker: everything from here to the summary line is
		// ensemble data
		if strings.HasPrefix(tokens[0], collectionMarker) {
			state = collectingEnsemble
			continue
		}

		if state != collectingEnsemble {
			continue
		}

		// Only FepEnergy rows carry samples; skip any other chatter NAMD
		// interleaves with the ensemble section
		if tokens[0] != "FepEnergy:" {
			continue
		}

		if len(tokens) < minSampleTokens {
			return nil, fmt.Errorf("window %d: sample line %d has %d tokens, expected at least %d: %q",
				len(windows), lineNum, len(tokens), minSampleTokens, line)
		}

		vals, err := parseSampleColumns(tokens, lineNum, len(windows))
		if err != nil {
			return nil, err
		}

		current.work = append(current.work, vals[colWork])
		current.freeEnergy = append(current.freeEnergy, vals[colFreeEnergy])
		current.elec = append(current.elec, vals[colElecPerturbed]-vals[colElecUnperturbed])
		current.vdw = append(current.vdw, vals[colVdwPerturbed]-vals[colVdwUnperturbed])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading fepout stream: %w", err)
	}

	if len(windows) == 0 {
		return nil, errors.New("no window summary lines found in fepout stream - is this really a fepout file?")
	}

	return windows, nil
}

// parseSampleColumns converts the numeric columns of one sample line. Only the
// columns the analysis consumes are converted; a conversion failure names the
// window, line number and column so the bad row can be located in the raw
// output.
func parseSampleColumns(tokens []string, lineNum int, windowIdx int) (map[int]float64, error) {
	vals := make(map[int]float64, 6)
	cols := [...]int{colElecUnperturbed, colElecPerturbed, colVdwUnperturbed, colVdwPerturbed, colWork, colFreeEnergy}
	for _, c := range cols {
		v, err := strconv.ParseFloat(tokens[c], 64)
		if err != nil {
			return nil, fmt.Errorf("window %d: sample line %d column %d %q is not numeric: %w",
				windowIdx, lineNum, c, tokens[c], err)
		}
		vals[c] = v
	}
	return vals, nil
}

// seriesForChannel picks the per-window series for one analysis channel out of
// the parsed windows. Channel names follow the labels used in the report.
func seriesForChannel(windows []windowSamples, channel string) ([][]float64, error) {
	series := make([][]float64, len(windows))
	for i, w := range windows {
		switch channel {
		case channelTotal:
			series[i] = w.freeEnergy
		case channelElec:
			series[i] = w.elec
		case channelVdw:
			series[i] = w.vdw
		default:
			return nil, errors.New("unrecognized analysis channel \"" + channel + "\"")
		}
	}
	return series, nil
}

// windowLabels extracts the lambda range labels in window order.
func windowLabels(windows []windowSamples) []string {
	labels := make([]string, len(windows))
	for i, w := range windows {
		labels[i] = w.label
	}
	return labels
}
