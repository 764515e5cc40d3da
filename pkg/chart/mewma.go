package chart

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/trgrimm/t2-mewma/pkg/estimate"
	"github.com/trgrimm/t2-mewma/pkg/limit"
)

// DefaultLambda is the MEWMA smoothing constant used when WithLambda is not
// given
const DefaultLambda = 0.1

// MEWMAResult holds a fitted multivariate EWMA chart
type MEWMAResult struct {
	// Test is the statistic sequence of the monitoring observations
	Test []float64
	// Limit is the control limit calibrated to the in-control ARL target
	Limit float64
	// Alarms flags each monitoring observation whose statistic exceeds
	// the limit
	Alarms []bool
	// Estimate is the baseline location/scatter the chart was built on
	Estimate *estimate.Estimate
	// Lambda is the smoothing constant the chart was fit with
	Lambda float64
}

// MEWMA fits a multivariate EWMA chart: monitoring observations are centered
// on the baseline mean and folded through the recursion
// q = lambda*x + (1-lambda)*q starting from zero, and each smoothed vector
// is scored against the asymptotic covariance (lambda/(2-lambda)) times the
// baseline covariance.  The limit is calibrated to the configured in-control
// ARL, which is required; a false alarm rate is not defined for this chart.
func MEWMA(train, test mat.Matrix, opts ...Option) (*MEWMAResult, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.rule != "" {
		return nil, InvalidConfig{Field: "threshold rule", Value: string(cfg.rule), Reason: "only the T² chart takes a threshold rule"}
	}
	if cfg.far != 0 {
		return nil, InvalidConfig{Field: "false alarm rate", Value: cfg.far, Reason: "the MEWMA limit is calibrated to an in-control ARL; set one with WithInControlARL"}
	}
	if cfg.arl == 0 {
		return nil, InvalidConfig{Field: "in-control ARL", Reason: "an in-control ARL target is required"}
	}
	lambda := cfg.lambda
	if lambda == 0 {
		lambda = DefaultLambda
	}
	if err := checkDims(train, test); err != nil {
		return nil, err
	}

	est, err := estimate.New(train, cfg.method, cfg.estimateOpts()...)
	if err != nil {
		return nil, err
	}
	n, p := train.Dims()

	smoothedCov := mat.NewSymDense(p, nil)
	smoothedCov.ScaleSym(lambda/(2-lambda), est.Cov)
	var chol mat.Cholesky
	if !chol.Factorize(smoothedCov) {
		return nil, estimate.SingularCovariance{Rows: n, Cols: p}
	}

	h, err := limit.MEWMA(lambda, cfg.arl, p)
	if err != nil {
		return nil, err
	}

	stats := smoothedDistances(mat.DenseCopyOf(test), est.Mean, &chol, lambda)
	return &MEWMAResult{
		Test:     stats,
		Limit:    h,
		Alarms:   exceed(stats, h),
		Estimate: est,
		Lambda:   lambda,
	}, nil
}

// smoothedDistances left-folds the centered monitoring rows through the EWMA
// recursion, scoring each smoothed vector against the factorized smoothed
// covariance.  The fold is strictly sequential: each statistic depends on
// every prior observation through the running state q.
func smoothedDistances(x *mat.Dense, mean *mat.VecDense, chol *mat.Cholesky, lambda float64) []float64 {
	n, p := x.Dims()
	out := make([]float64, n)
	q := mat.NewVecDense(p, nil)
	centered := mat.NewVecDense(p, nil)
	zero := mat.NewVecDense(p, nil)
	for t := 0; t < n; t++ {
		centered.SubVec(x.RowView(t), mean)
		q.ScaleVec(1-lambda, q)
		q.AddScaledVec(q, lambda, centered)
		d := stat.Mahalanobis(q, zero, chol)
		out[t] = d * d
	}
	return out
}
