// Package chart fits multivariate control charts.  A chart consumes a
// baseline sample of in-control observations, estimates its location and
// scatter, scores a monitoring sequence with a quadratic-form statistic, and
// flags the observations whose statistic exceeds a calibrated control limit.
package chart

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/trgrimm/t2-mewma/pkg/estimate"
	"github.com/trgrimm/t2-mewma/pkg/limit"
)

// T2Result holds a fitted Hotelling T² chart
type T2Result struct {
	// Train is the statistic sequence of the baseline observations
	Train []float64
	// Test is the statistic sequence of the monitoring observations
	Test []float64
	// Limit is the control limit applied to the monitoring sequence
	Limit float64
	// Alarms flags each monitoring observation whose statistic exceeds
	// the limit
	Alarms []bool
	// Estimate is the baseline location/scatter the chart was built on
	Estimate *estimate.Estimate
}

// T2 fits a Hotelling T² chart: every baseline and monitoring observation is
// scored by its squared Mahalanobis distance from the baseline estimate, and
// monitoring observations are flagged against a limit derived either from
// the F distribution (Parametric) or from a kernel density estimate of the
// baseline statistics (Nonparametric).  Rows are observations and columns
// are variables; both matrices must share their column count.
func T2(train, test mat.Matrix, opts ...Option) (*T2Result, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.lambda != 0 {
		return nil, InvalidConfig{Field: "lambda", Value: cfg.lambda, Reason: "only the MEWMA chart takes a smoothing constant"}
	}
	rule := cfg.rule
	if rule == "" {
		rule = Parametric
	}
	if rule != Parametric && rule != Nonparametric {
		return nil, InvalidConfig{Field: "threshold rule", Value: string(rule), Reason: "must be parametric or nonparametric"}
	}
	if err := checkDims(train, test); err != nil {
		return nil, err
	}
	prob, err := cfg.prob()
	if err != nil {
		return nil, err
	}

	est, err := estimate.New(train, cfg.method, cfg.estimateOpts()...)
	if err != nil {
		return nil, err
	}
	n, p := train.Dims()
	var chol mat.Cholesky
	if !chol.Factorize(est.Cov) {
		return nil, estimate.SingularCovariance{Rows: n, Cols: p}
	}

	trainStats := distances(mat.DenseCopyOf(train), est.Mean, &chol)
	testStats := distances(mat.DenseCopyOf(test), est.Mean, &chol)

	var h float64
	switch rule {
	case Parametric:
		h, err = limit.HotellingF(p, n, prob)
	case Nonparametric:
		h, err = limit.KDEQuantile(trainStats, prob)
	}
	if err != nil {
		return nil, err
	}

	return &T2Result{
		Train:    trainStats,
		Test:     testStats,
		Limit:    h,
		Alarms:   exceed(testStats, h),
		Estimate: est,
	}, nil
}

func checkDims(train, test mat.Matrix) error {
	tr, tc := train.Dims()
	mr, mc := test.Dims()
	if tr == 0 || mr == 0 || tc == 0 || tc != mc {
		return DimensionMismatch{TrainRows: tr, TrainCols: tc, TestRows: mr, TestCols: mc}
	}
	return nil
}

// distances returns the squared Mahalanobis distance of every row of x from
// mean under the factorized covariance
func distances(x *mat.Dense, mean *mat.VecDense, chol *mat.Cholesky) []float64 {
	n, _ := x.Dims()
	out := make([]float64, n)
	for i := range out {
		d := stat.Mahalanobis(x.RowView(i), mean, chol)
		out[i] = d * d
	}
	return out
}

// exceed flags every statistic strictly above the limit
func exceed(stats []float64, h float64) []bool {
	out := make([]bool, len(stats))
	for i, s := range stats {
		out[i] = s > h
	}
	return out
}
