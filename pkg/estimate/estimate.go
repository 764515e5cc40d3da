// Package estimate computes location and scatter estimates from baseline
// observations, either classically or robustly via the minimum covariance
// determinant.
package estimate

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Method selects how the baseline mean vector and covariance matrix are estimated
type Method string

const (
	// Classical is the sample mean and unbiased sample covariance
	Classical Method = "classical"
	// Robust is the reweighted minimum covariance determinant (FAST-MCD)
	Robust Method = "robust"
)

// DefaultSeed seeds the subsampling generator when WithSeed is not given so
// that repeated runs on the same data return identical estimates
const DefaultSeed uint64 = 1

// Estimate is an immutable location/scatter pair for a set of baseline
// observations
type Estimate struct {
	Mean *mat.VecDense
	Cov  *mat.SymDense
}

// Dim returns the number of variables the estimate describes
func (e *Estimate) Dim() int {
	return e.Mean.Len()
}

// Option sets tuning parameters for the estimator
type Option func(*config) error

type config struct {
	seed   uint64
	trials int
	subset int
}

// WithSeed sets the seed for the random subsampling used by the robust
// estimator
func WithSeed(seed uint64) Option {
	return func(c *config) error {
		c.seed = seed
		return nil
	}
}

// WithTrials sets the number of random starting subsets for the robust
// estimator
func WithTrials(trials int) Option {
	return func(c *config) error {
		if trials <= 0 {
			return fmt.Errorf("trials must be positive, got %d", trials)
		}
		c.trials = trials
		return nil
	}
}

// WithSubsetSize sets the size h of the covered subset for the robust
// estimator.  The default floor((n+p+1)/2) gives the maximum breakdown point.
func WithSubsetSize(h int) Option {
	return func(c *config) error {
		if h <= 0 {
			return fmt.Errorf("subset size must be positive, got %d", h)
		}
		c.subset = h
		return nil
	}
}

// New estimates the mean vector and covariance matrix of the observation
// matrix x (rows are observations, columns are variables) using the requested
// method.  The returned covariance is always positive definite; degenerate
// input fails with SingularCovariance.
func New(x mat.Matrix, method Method, opts ...Option) (*Estimate, error) {
	cfg := config{
		seed:   DefaultSeed,
		trials: defaultTrials,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	n, p := x.Dims()
	if n < 2 || p < 1 || n <= p {
		return nil, SingularCovariance{Rows: n, Cols: p}
	}

	switch method {
	case Classical:
		return classical(x)
	case Robust:
		return robust(mat.DenseCopyOf(x), cfg)
	default:
		return nil, InvalidMethod{Method: string(method)}
	}
}

func classical(x mat.Matrix) (*Estimate, error) {
	n, p := x.Dims()

	mean := mat.NewVecDense(p, nil)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, x)
		mean.SetVec(j, stat.Mean(col, nil))
	}

	cov := mat.NewSymDense(p, nil)
	stat.CovarianceMatrix(cov, x, nil)

	var chol mat.Cholesky
	if !chol.Factorize(cov) {
		return nil, SingularCovariance{Rows: n, Cols: p}
	}
	return &Estimate{Mean: mean, Cov: cov}, nil
}
