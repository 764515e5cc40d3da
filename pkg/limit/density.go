package limit

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Bandwidth returns the rule-of-thumb bandwidth for a Gaussian kernel density
// estimate: 0.9 times the lesser of the standard deviation and the
// interquartile range over 1.349, scaled by n^(-1/5).  Degenerate spreads
// fall back to the standard deviation, then the magnitude of the first
// observation, then 1.
func Bandwidth(obs []float64) float64 {
	hi := stat.StdDev(obs, nil)
	lo := math.Min(hi, interquartile(obs)/1.349)
	if lo == 0 {
		switch {
		case hi > 0:
			lo = hi
		case math.Abs(obs[0]) > 0:
			lo = math.Abs(obs[0])
		default:
			lo = 1.0
		}
	}
	return 0.9 * lo * math.Pow(float64(len(obs)), -0.2)
}

// KDEQuantile returns the prob quantile of a Gaussian kernel density estimate
// fitted to obs.  The estimate's CDF is an equal-weight mixture of normal
// CDFs centered on the observations, and the quantile is found by bisection
// on it.
func KDEQuantile(obs []float64, prob float64) (float64, error) {
	if len(obs) < 2 {
		return 0, fmt.Errorf("need at least 2 observations for a density estimate, got %d", len(obs))
	}
	if prob <= 0 || prob >= 1 {
		return 0, fmt.Errorf("probability must be in (0, 1), got %g", prob)
	}

	bw := Bandwidth(obs)
	n := float64(len(obs))
	cdf := func(x float64) float64 {
		sum := 0.0
		for _, o := range obs {
			sum += distuv.UnitNormal.CDF((x - o) / bw)
		}
		return sum / n
	}

	lo := floats.Min(obs) - 10*bw
	hi := floats.Max(obs) + 10*bw
	for cdf(lo) > prob {
		lo -= 10 * bw
	}
	for cdf(hi) < prob {
		hi += 10 * bw
	}
	for i := 0; i < 200 && hi-lo > 1e-12*(1+math.Abs(hi)); i++ {
		mid := 0.5 * (lo + hi)
		if cdf(mid) < prob {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), nil
}

// interquartile returns the interquartile range with linear interpolation
// between order statistics
func interquartile(obs []float64) float64 {
	s := make([]float64, len(obs))
	copy(s, obs)
	sort.Float64s(s)
	return orderQuantile(s, 0.75) - orderQuantile(s, 0.25)
}

func orderQuantile(sorted []float64, q float64) float64 {
	h := q * float64(len(sorted)-1)
	i := int(h)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-float64(i))*(sorted[i+1]-sorted[i])
}
