package limit

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// HotellingF returns the control limit for a Hotelling T-squared statistic on
// p variables whose parameters were estimated from n baseline observations.
// The scaled statistic of a future observation follows an F distribution with
// p and n-p degrees of freedom, so the limit is p(n+1)(n-1)/(n(n-p)) times
// the F quantile at prob.  prob is typically 1-1/ARL or 1-FAR.
func HotellingF(p, n int, prob float64) (float64, error) {
	if p < 1 {
		return 0, fmt.Errorf("dimension must be positive, got %d", p)
	}
	if n <= p {
		return 0, fmt.Errorf("need more than %d baseline observations for %d variables, got %d", p, p, n)
	}
	if prob <= 0 || prob >= 1 {
		return 0, fmt.Errorf("probability must be in (0, 1), got %g", prob)
	}
	f := distuv.F{D1: float64(p), D2: float64(n - p)}
	scale := float64(p) * float64(n+1) * float64(n-1) / (float64(n) * float64(n-p))
	return scale * f.Quantile(prob), nil
}
