package limit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// chainStates is the number of transient states in the Markov chain model of
// the run length distribution
const chainStates = 40

// MEWMA returns the control limit h that gives a multivariate EWMA chart
// with smoothing constant lambda on p variables an in-control average run
// length of arl.  The run length is modeled with the Markov chain
// approximation of Runger and Prabhu and h is found by bisection; the model
// uses the asymptotic covariance of the smoothed vector, matching the chart
// statistic.  With lambda = 1 the chart has no memory and h is exactly the
// chi-squared quantile at 1 - 1/arl.
func MEWMA(lambda, arl float64, p int) (float64, error) {
	if p < 1 {
		return 0, fmt.Errorf("dimension must be positive, got %d", p)
	}
	if lambda <= 0 || lambda > 1 {
		return 0, fmt.Errorf("smoothing constant must be in (0, 1], got %g", lambda)
	}
	if arl <= 1 {
		return 0, fmt.Errorf("in-control average run length must exceed 1, got %g", arl)
	}
	if lambda == 1 {
		return distuv.ChiSquared{K: float64(p)}.Quantile(1 - 1/arl), nil
	}

	// ARL is strictly increasing in h: bracket the target, then bisect.
	// The memoryless limit is a good starting bracket since smoothing
	// lowers the limit at the same ARL.
	hi := distuv.ChiSquared{K: float64(p)}.Quantile(1 - 1/arl)
	for i := 0; ; i++ {
		a, err := MEWMAARL(hi, lambda, p)
		if err != nil {
			return 0, err
		}
		if a >= arl {
			break
		}
		if i == 60 {
			return 0, fmt.Errorf("control limit search failed to bracket ARL %g", arl)
		}
		hi *= 2
	}
	lo := 0.0
	for hi-lo > 1e-6 {
		mid := 0.5 * (lo + hi)
		a, err := MEWMAARL(mid, lambda, p)
		if err != nil {
			return 0, err
		}
		if a < arl {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), nil
}

// MEWMAARL returns the in-control average run length of a multivariate EWMA
// chart with control limit h and smoothing constant lambda on p variables.
// It evaluates the same Markov chain that MEWMA inverts: the magnitude of the
// standardized smoothed vector is discretized on [0, UCL], one-step
// transitions follow a noncentral chi-squared law, and the ARL is the
// expected time to absorption starting from zero.
func MEWMAARL(h, lambda float64, p int) (float64, error) {
	if p < 1 {
		return 0, fmt.Errorf("dimension must be positive, got %d", p)
	}
	if lambda <= 0 || lambda > 1 {
		return 0, fmt.Errorf("smoothing constant must be in (0, 1], got %g", lambda)
	}
	if h <= 0 {
		return 0, fmt.Errorf("control limit must be positive, got %g", h)
	}
	if lambda == 1 {
		// no memory: run lengths are geometric in the chi-squared tail
		tail := 1 - distuv.ChiSquared{K: float64(p)}.CDF(h)
		if tail == 0 {
			return math.Inf(1), nil
		}
		return 1 / tail, nil
	}

	m := chainStates
	ucl := math.Sqrt(h * lambda / (2 - lambda))
	w := ucl / float64(m)

	// squared magnitude at the interval edges, scaled for the transition law:
	// given magnitude r, the next squared magnitude over lambda^2 is
	// noncentral chi-squared with noncentrality ((1-lambda) r / lambda)^2
	bounds := make([]float64, m+1)
	for j := 1; j <= m; j++ {
		b := float64(j) * w / lambda
		bounds[j] = b * b
	}
	row := func(dst []float64, center float64) {
		nc := (1 - lambda) * center / lambda
		dist := noncentralChiSquared{K: float64(p), Delta: nc * nc}
		prev := 0.0
		for j := 1; j <= m; j++ {
			cur := dist.CDF(bounds[j])
			dst[j-1] = cur - prev
			prev = cur
		}
	}

	q := mat.NewDense(m, m, nil)
	for i := 1; i <= m; i++ {
		row(q.RawRowView(i-1), (float64(i)-0.5)*w)
	}

	// expected steps to absorption nu solves (I - Q) nu = 1
	a := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			v := -q.At(i, j)
			if i == j {
				v++
			}
			a.Set(i, j, v)
		}
	}
	ones := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		ones.SetVec(i, 1)
	}
	var nu mat.VecDense
	if err := nu.SolveVec(a, ones); err != nil {
		return 0, fmt.Errorf("run length solve failed: %v", err)
	}

	// the chart starts exactly at zero, so the first transition is central
	start := make([]float64, m)
	row(start, 0)
	arl := 1.0
	for j := 0; j < m; j++ {
		arl += start[j] * nu.AtVec(j)
	}
	return arl, nil
}
