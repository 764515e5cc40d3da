package limit

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// noncentralChiSquared is a noncentral chi-squared distribution with K
// degrees of freedom and noncentrality Delta
type noncentralChiSquared struct {
	K     float64
	Delta float64
}

// CDF evaluates the distribution as a Poisson-weighted mixture of central
// chi-squared distributions, accumulating the weights in log space so large
// noncentralities do not underflow
func (d noncentralChiSquared) CDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if d.Delta == 0 {
		return distuv.ChiSquared{K: d.K}.CDF(x)
	}

	half := 0.5 * d.Delta
	// the Poisson weights peak at half; sum well past the mode so the
	// truncated tail is negligible
	terms := int(half+10*math.Sqrt(half)) + 60

	logw := -half
	sum := 0.0
	for j := 0; j <= terms; j++ {
		if j > 0 {
			logw += math.Log(half / float64(j))
		}
		if w := math.Exp(logw); w > 0 {
			sum += w * distuv.ChiSquared{K: d.K + 2*float64(j)}.CDF(x)
		}
	}
	return math.Min(sum, 1)
}
