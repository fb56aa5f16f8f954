package main

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////
// BAR: Bennett acceptance ratio estimator and the per-window pairing/accumulation around it
// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// estimator combines one window's forward and reverse work samples into a
// free energy difference and its standard deviation. The reverse samples are
// the raw work values of the backward perturbation - they must NOT be sign
// flipped before being passed in. Tests substitute deterministic stubs.
type estimator interface {
	estimate(fwd []float64, rev []float64) (deltaG float64, sigma float64, err error)
}

// barEstimator implements the self-consistent Bennett acceptance ratio. The
// free energy is the root of the Bennett implicit equation, located by
// bracket expansion and bisection; the uncertainty is Bennett's asymptotic
// variance estimate evaluated at the converged value.
type barEstimator struct {
	// absolute convergence tolerance on deltaG
	tolerance float64
	// bisection iteration cap before declaring non-convergence
	maxIterations int
}

func newBAREstimator() barEstimator {
	return barEstimator{tolerance: 1e-10, maxIterations: 500}
}

func (b barEstimator) estimate(fwd []float64, rev []float64) (float64, float64, error) {
	if len(fwd) == 0 || len(rev) == 0 {
		return 0, 0, fmt.Errorf("BAR is undefined on empty input (%d forward, %d reverse samples)", len(fwd), len(rev))
	}

	// Bracket the root. The Bennett objective is monotonically increasing in
	// deltaG, so once a sign change is found bisection cannot fail.
	guess := 0.5 * (stat.Mean(fwd, nil) - stat.Mean(rev, nil))
	lo, hi := guess-1.0, guess+1.0
	flo, fhi := barObjective(fwd, rev, lo), barObjective(fwd, rev, hi)
	width := 1.0
	for flo*fhi > 0 {
		width *= 2.0
		if width > 1e6 {
			return 0, 0, errors.New("BAR failed to converge: could not bracket the free energy root")
		}
		lo, hi = guess-width, guess+width
		flo, fhi = barObjective(fwd, rev, lo), barObjective(fwd, rev, hi)
	}

	deltaG := guess
	converged := false
	for i := 0; i < b.maxIterations; i++ {
		deltaG = 0.5 * (lo + hi)
		if hi-lo < b.tolerance {
			converged = true
			break
		}
		f := barObjective(fwd, rev, deltaG)
		if f == 0 {
			converged = true
			break
		}
		if f*flo < 0 {
			hi = deltaG
		} else {
			lo = deltaG
			flo = f
		}
	}
	if !converged {
		return 0, 0, fmt.Errorf("BAR failed to converge within %d iterations", b.maxIterations)
	}

	sigma := barSigma(fwd, rev, deltaG)
	return deltaG, sigma, nil
}

// barObjective evaluates the Bennett self-consistency condition at a trial
// deltaG. With M = ln(nF/nR) the root satisfies
//
//	sum_i f(M + wF_i - dG) = sum_j f(-M + wR_j + dG)
//
// where f is the Fermi function. Both sums are evaluated in log space for
// numerical stability with large work values.
func barObjective(fwd []float64, rev []float64, deltaG float64) float64 {
	m := math.Log(float64(len(fwd)) / float64(len(rev)))

	logF := make([]float64, len(fwd))
	for i, w := range fwd {
		logF[i] = -log1pExp(m + w - deltaG)
	}
	logR := make([]float64, len(rev))
	for j, w := range rev {
		logR[j] = -log1pExp(-m + w + deltaG)
	}
	return floats.LogSumExp(logF) - floats.LogSumExp(logR)
}

// barSigma is Bennett's asymptotic variance estimate at the converged
// deltaG: the relative variances of the Fermi weights of each population,
// each scaled by its sample count, summed and square rooted.
func barSigma(fwd []float64, rev []float64, deltaG float64) float64 {
	m := math.Log(float64(len(fwd)) / float64(len(rev)))

	fF := make([]float64, len(fwd))
	for i, w := range fwd {
		fF[i] = fermi(m + w - deltaG)
	}
	fR := make([]float64, len(rev))
	for j, w := range rev {
		fR[j] = fermi(-m + w + deltaG)
	}

	varF := relativeVariance(fF) / float64(len(fwd))
	varR := relativeVariance(fR) / float64(len(rev))
	return math.Sqrt(varF + varR)
}

// relativeVariance is <f^2>/<f>^2 - 1
func relativeVariance(f []float64) float64 {
	sq := make([]float64, len(f))
	for i, v := range f {
		sq[i] = v * v
	}
	mean := stat.Mean(f, nil)
	return stat.Mean(sq, nil)/(mean*mean) - 1.0
}

func fermi(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(x))
}

// log1pExp computes log(1 + exp(x)) without overflow
func log1pExp(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}

// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Pairwise estimation over all windows of one channel
// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// estimateRecord is one window pair's contribution: the cumulative free
// energy through this window, this window's own delta, and its standard
// deviation. Ordered by forward window index.
type estimateRecord struct {
	window     int
	cumulative float64
	delta      float64
	sigma      float64
}

// correlationTimes holds the statistical inefficiencies of one window index
// in each direction. The indices are per direction, not paired.
type correlationTimes struct {
	forward float64
	reverse float64
}

// channelProfile is the result of running the pairwise estimator over all
// windows of one channel.
type channelProfile struct {
	// cumulative free energy per window, forward index order
	cumulative []float64
	// cumulative standard deviation per window, non-decreasing
	sigma []float64
	// net free energy over the whole profile and its uncertainty
	net      float64
	netSigma float64
	// per window-pair diagnostics
	records []estimateRecord
	// per window index statistical inefficiencies, both directions
	corrTimes []correlationTimes
}

// estimateChannel runs decorrelation and the bidirectional estimator over all
// windows of one channel. Forward window i pairs with reverse window N-1-i:
// the reverse simulation traverses lambda in the opposite order, so zipping
// both directions by identical index would combine mismatched lambda ranges.
// Any failure aborts the whole channel - a missing window would silently
// corrupt every later cumulative value.
func estimateChannel(fwd [][]float64, rev [][]float64, d decorrelator, est estimator) (*channelProfile, error) {
	if len(fwd) != len(rev) {
		return nil, fmt.Errorf("window count mismatch: %d forward windows vs %d reverse windows", len(fwd), len(rev))
	}
	n := len(fwd)
	if n == 0 {
		return nil, errors.New("no windows to estimate")
	}

	// Decorrelate every window of both directions up front, recording the
	// correlation times for the report
	fwdSub := make([][]float64, n)
	revSub := make([][]float64, n)
	corrTimes := make([]correlationTimes, n)
	for i := 0; i < n; i++ {
		g, sub, err := decorrelate(d, fwd[i])
		if err != nil {
			return nil, fmt.Errorf("forward window %d: %w", i, err)
		}
		corrTimes[i].forward = g
		fwdSub[i] = sub
	}
	for i := 0; i < n; i++ {
		g, sub, err := decorrelate(d, rev[i])
		if err != nil {
			return nil, fmt.Errorf("reverse window %d: %w", i, err)
		}
		corrTimes[i].reverse = g
		revSub[i] = sub
	}

	prof := &channelProfile{
		cumulative: make([]float64, n),
		sigma:      make([]float64, n),
		records:    make([]estimateRecord, n),
		corrTimes:  corrTimes,
	}

	// Apply the estimator to each pair and accumulate. The running free
	// energy is a plain sum; the running uncertainty is propagated as the
	// root sum of squares under the assumption that window-to-window
	// estimator errors are independent.
	net := 0.0
	netSigma := 0.0
	sumSigmaSq := 0.0
	for i := 0; i < n; i++ {
		kR := n - 1 - i
		dg, sd, err := est.estimate(fwdSub[i], revSub[kR])
		if err != nil {
			return nil, fmt.Errorf("window pair (forward %d, reverse %d): %w", i, kR, err)
		}

		net += dg
		netSigma = math.Sqrt(sd*sd + netSigma*netSigma)
		sumSigmaSq += sd * sd

		prof.cumulative[i] = net
		prof.sigma[i] = netSigma
		prof.records[i] = estimateRecord{window: i, cumulative: net, delta: dg, sigma: sd}
	}

	prof.net = net
	// computed independently of the running accumulation; must agree with
	// sigma[n-1] to floating point tolerance
	prof.netSigma = math.Sqrt(sumSigmaSq)

	return prof, nil
}
