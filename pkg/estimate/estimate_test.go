package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// normRows returns an n x p matrix of independent unit-variance normal
// observations centered on mean
func normRows(n int, mean []float64, seed uint64) *mat.Dense {
	r := rand.New(rand.NewSource(seed))
	p := len(mean)
	d := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			d.Set(i, j, r.NormFloat64()+mean[j])
		}
	}
	return d
}

func TestClassicalEstimate(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		1, 2,
		3, 6,
		5, 4,
	})
	est, err := New(x, Classical)
	assert.NoError(t, err)
	assert.Equal(t, 2, est.Dim())

	assert.InDelta(t, 3.0, est.Mean.AtVec(0), 1e-12)
	assert.InDelta(t, 4.0, est.Mean.AtVec(1), 1e-12)

	exp := [][]float64{{4, 2}, {2, 4}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, exp[i][j], est.Cov.At(i, j), 1e-12)
		}
	}
}

func TestClassicalConsistency(t *testing.T) {
	truth := []float64{1.0, 2.0, 3.0}
	x := normRows(4000, truth, 17)

	est, err := New(x, Classical)
	assert.NoError(t, err)
	for j, m := range truth {
		assert.InDelta(t, m, est.Mean.AtVec(j), 0.1)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			exp := 0.0
			if i == j {
				exp = 1.0
			}
			assert.InDelta(t, exp, est.Cov.At(i, j), 0.15)
		}
	}
}

func TestUnknownMethod(t *testing.T) {
	x := normRows(20, []float64{0, 0}, 1)
	_, err := New(x, Method("bogus"))
	assert.Error(t, err)
	assert.IsType(t, InvalidMethod{}, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestDegenerateData(t *testing.T) {
	tt := []struct {
		name   string
		x      *mat.Dense
		method Method
	}{
		{name: "fewer observations than variables", x: mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}), method: Classical},
		{name: "single observation", x: mat.NewDense(1, 1, []float64{1}), method: Classical},
		{name: "constant variable classical", x: constantColumn(10), method: Classical},
		{name: "constant variable robust", x: constantColumn(30), method: Robust},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.x, tc.method)
			assert.Error(t, err)
			assert.IsType(t, SingularCovariance{}, err)
		})
	}
}

// constantColumn builds an n x 2 matrix whose second variable never changes,
// making the sample covariance exactly singular
func constantColumn(n int) *mat.Dense {
	d := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		d.Set(i, 0, float64(i))
		d.Set(i, 1, 7.0)
	}
	return d
}

func TestOptionValidation(t *testing.T) {
	x := normRows(20, []float64{0, 0}, 3)
	tt := []struct {
		name string
		opt  Option
	}{
		{name: "zero trials", opt: WithTrials(0)},
		{name: "negative trials", opt: WithTrials(-5)},
		{name: "zero subset", opt: WithSubsetSize(0)},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(x, Robust, tc.opt)
			assert.Error(t, err)
		})
	}
}

func TestSubsetSizeRange(t *testing.T) {
	// n=20, p=2: valid subset sizes are 11..20
	x := normRows(20, []float64{0, 0}, 3)

	_, err := New(x, Robust, WithSubsetSize(5))
	assert.Error(t, err)

	_, err = New(x, Robust, WithSubsetSize(21))
	assert.Error(t, err)

	_, err = New(x, Robust, WithSubsetSize(11), WithTrials(50))
	assert.NoError(t, err)
}

func TestFullSubsetIsClassical(t *testing.T) {
	x := normRows(40, []float64{1, -1}, 9)

	class, err := New(x, Classical)
	assert.NoError(t, err)
	rob, err := New(x, Robust, WithSubsetSize(40))
	assert.NoError(t, err)

	assert.True(t, mat.Equal(class.Mean, rob.Mean))
	assert.True(t, mat.Equal(class.Cov, rob.Cov))
}
