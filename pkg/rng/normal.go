package rng

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

var _ VectorRNG = &MultiNormal{}

// MultiNormal generates multivariate normal random vectors from an
// explicitly seeded source so simulations are reproducible
type MultiNormal struct {
	dist *distmv.Normal
}

// Rand returns the next random vector
func (r *MultiNormal) Rand() []float64 {
	return r.dist.Rand(nil)
}

// Dim returns the length of generated vectors
func (r *MultiNormal) Dim() int {
	return r.dist.Dim()
}

// NewMultiNormal returns a generator with the given mean and covariance
func NewMultiNormal(mean []float64, cov *mat.SymDense, seed uint64) (*MultiNormal, error) {
	if len(mean) != cov.SymmetricDim() {
		return nil, fmt.Errorf("mean has %d elements but covariance is %dx%d", len(mean), cov.SymmetricDim(), cov.SymmetricDim())
	}
	dist, ok := distmv.NewNormal(mean, cov, rand.NewSource(seed))
	if !ok {
		return nil, fmt.Errorf("covariance is not positive definite")
	}
	return &MultiNormal{dist: dist}, nil
}

// NewStandardNormal returns a generator of p independent standard normal
// coordinates
func NewStandardNormal(p int, seed uint64) (*MultiNormal, error) {
	if p < 1 {
		return nil, fmt.Errorf("dimension must be positive, got %d", p)
	}
	cov := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		cov.SetSym(i, i, 1)
	}
	return NewMultiNormal(make([]float64, p), cov, seed)
}
