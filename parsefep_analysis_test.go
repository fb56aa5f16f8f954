package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWindows(n int) []windowSamples {
	windows := make([]windowSamples, n)
	for i := range windows {
		base := float64(i + 1)
		windows[i] = windowSamples{
			label:      "[ 0 1 ]",
			work:       []float64{base, base + 0.1},
			freeEnergy: []float64{base, base + 0.1},
			elec:       []float64{base * 10, base*10 + 0.1},
			vdw:        []float64{base * 100, base*100 + 0.1},
		}
	}
	return windows
}

func TestAnalysisManagerTotalOnly(t *testing.T) {
	fwd := testWindows(2)
	rev := testWindows(2)

	var buf bytes.Buffer
	rep := newReporter(&buf, false)
	est := &averagingEstimator{}

	composite, err := AnalysisManager(fwd, rev, analysisOptions{outputLabel: "results"},
		identityDecorrelator{}, est, rep, nil)
	require.NoError(t, err)

	require.NotNil(t, composite.total)
	assert.Nil(t, composite.elec)
	assert.Nil(t, composite.vdw)
	assert.Len(t, composite.total.cumulative, 2)
	// one estimator call per window pair, total channel only
	assert.Equal(t, 2, est.calls)

	out := buf.String()
	assert.Contains(t, out, "Net dG_Total energy difference")
	assert.NotContains(t, out, "Net dG_Elec")
	assert.NotContains(t, out, "Net dG_VdW")
}

func TestAnalysisManagerDecompose(t *testing.T) {
	fwd := testWindows(2)
	rev := testWindows(2)

	var buf bytes.Buffer
	rep := newReporter(&buf, false)
	est := &averagingEstimator{}

	composite, err := AnalysisManager(fwd, rev, analysisOptions{outputLabel: "results", decompose: true},
		identityDecorrelator{}, est, rep, nil)
	require.NoError(t, err)

	require.NotNil(t, composite.total)
	require.NotNil(t, composite.elec)
	require.NotNil(t, composite.vdw)
	// three channels, two windows each
	assert.Equal(t, 6, est.calls)

	out := buf.String()
	// component channels are reported before the total
	vdwPos := strings.Index(out, "Net dG_VdW")
	elecPos := strings.Index(out, "Net dG_Elec")
	totalPos := strings.Index(out, "Net dG_Total")
	require.GreaterOrEqual(t, vdwPos, 0)
	require.GreaterOrEqual(t, elecPos, 0)
	require.GreaterOrEqual(t, totalPos, 0)
	assert.Less(t, vdwPos, elecPos)
	assert.Less(t, elecPos, totalPos)
}

func TestAnalysisManagerChannelsAreIndependent(t *testing.T) {
	// each channel must be fed its own series: with the averaging stub the
	// three channels land on clearly distinct nets for this data
	fwd := testWindows(2)
	rev := make([]windowSamples, 2)
	for i := range rev {
		rev[i] = windowSamples{
			work:       []float64{-1, -1},
			freeEnergy: []float64{-1, -1},
			elec:       []float64{-10, -10},
			vdw:        []float64{-100, -100},
		}
	}

	var buf bytes.Buffer
	composite, err := AnalysisManager(fwd, rev, analysisOptions{decompose: true},
		identityDecorrelator{}, &averagingEstimator{}, newReporter(&buf, false), nil)
	require.NoError(t, err)

	// total: ((1.05+1)/2) + ((2.05+1)/2) = 2.55
	assert.InDelta(t, 2.55, composite.total.net, 1e-9)
	// elec: ((10.05+10)/2) + ((20.05+10)/2) = 25.05
	assert.InDelta(t, 25.05, composite.elec.net, 1e-9)
	// vdw: ((100.05+100)/2) + ((200.05+100)/2) = 250.05
	assert.InDelta(t, 250.05, composite.vdw.net, 1e-9)
}

func TestAnalysisManagerPropagatesChannelError(t *testing.T) {
	fwd := testWindows(2)
	rev := testWindows(3)

	var buf bytes.Buffer
	_, err := AnalysisManager(fwd, rev, analysisOptions{},
		identityDecorrelator{}, &averagingEstimator{}, newReporter(&buf, false), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel Total")
	assert.Contains(t, err.Error(), "window count mismatch")
}

// recordingPlotter captures what the orchestrator hands to the plotting collaborator
type recordingPlotter struct {
	overlapCalls    int
	timeSeriesCalls int
	summaryCalls    int
	fwdWork         [][]float64
	revWork         [][]float64
}

func (p *recordingPlotter) overlap(fwdWork [][]float64, revWork [][]float64, labels []string) error {
	p.overlapCalls++
	p.fwdWork = fwdWork
	p.revWork = revWork
	return nil
}

func (p *recordingPlotter) timeSeries(fwd [][]float64, rev [][]float64, labels []string) error {
	p.timeSeriesCalls++
	return nil
}

func (p *recordingPlotter) summary(profile *compositeProfile) error {
	p.summaryCalls++
	return nil
}

func TestAnalysisManagerPlotterHook(t *testing.T) {
	fwd := testWindows(2)
	rev := testWindows(2)

	var buf bytes.Buffer
	p := &recordingPlotter{}
	_, err := AnalysisManager(fwd, rev, analysisOptions{plotEnabled: true},
		identityDecorrelator{}, &averagingEstimator{}, newReporter(&buf, false), p)
	require.NoError(t, err)

	assert.Equal(t, 1, p.overlapCalls)
	assert.Equal(t, 1, p.timeSeriesCalls)
	assert.Equal(t, 1, p.summaryCalls)
	// the plotter receives the raw work samples, unflipped
	require.Len(t, p.fwdWork, 2)
	assert.Equal(t, fwd[0].work, p.fwdWork[0])
	assert.Equal(t, rev[1].work, p.revWork[1])
}

func TestAnalysisManagerPlotterSkippedWhenDisabled(t *testing.T) {
	fwd := testWindows(2)
	rev := testWindows(2)

	var buf bytes.Buffer
	p := &recordingPlotter{}
	_, err := AnalysisManager(fwd, rev, analysisOptions{plotEnabled: false},
		identityDecorrelator{}, &averagingEstimator{}, newReporter(&buf, false), p)
	require.NoError(t, err)
	assert.Zero(t, p.overlapCalls)
}
