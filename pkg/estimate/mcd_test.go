package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// contaminated returns clean standard bivariate normal observations followed
// by a cluster of outliers at (10, 10)
func contaminated(clean, outliers int, seed uint64) *mat.Dense {
	r := rand.New(rand.NewSource(seed))
	d := mat.NewDense(clean+outliers, 2, nil)
	for i := 0; i < clean; i++ {
		d.Set(i, 0, r.NormFloat64())
		d.Set(i, 1, r.NormFloat64())
	}
	for i := clean; i < clean+outliers; i++ {
		d.Set(i, 0, 10.0+0.1*r.NormFloat64())
		d.Set(i, 1, 10.0+0.1*r.NormFloat64())
	}
	return d
}

func TestRobustOutlierResistance(t *testing.T) {
	x := contaminated(100, 20, 11)

	class, err := New(x, Classical)
	assert.NoError(t, err)
	rob, err := New(x, Robust, WithSeed(7))
	assert.NoError(t, err)

	// a 17% cluster at (10,10) drags the classical estimate
	for j := 0; j < 2; j++ {
		assert.Greater(t, class.Mean.AtVec(j), 1.2)
		assert.Greater(t, class.Cov.At(j, j), 5.0)
	}
	// the robust estimate stays on the clean majority
	for j := 0; j < 2; j++ {
		assert.InDelta(t, 0.0, rob.Mean.AtVec(j), 0.4)
		assert.InDelta(t, 1.0, rob.Cov.At(j, j), 0.6)
	}
	assert.InDelta(t, 0.0, rob.Cov.At(0, 1), 0.5)
}

func TestRobustCleanData(t *testing.T) {
	x := normRows(300, []float64{0, 0}, 5)

	rob, err := New(x, Robust, WithSeed(13))
	assert.NoError(t, err)
	for j := 0; j < 2; j++ {
		assert.InDelta(t, 0.0, rob.Mean.AtVec(j), 0.25)
		assert.InDelta(t, 1.0, rob.Cov.At(j, j), 0.35)
	}
	assert.InDelta(t, 0.0, rob.Cov.At(0, 1), 0.3)
}

func TestRobustDeterminism(t *testing.T) {
	x := contaminated(60, 10, 21)

	a, err := New(x, Robust, WithSeed(99))
	assert.NoError(t, err)
	b, err := New(x, Robust, WithSeed(99))
	assert.NoError(t, err)

	assert.True(t, mat.Equal(a.Mean, b.Mean))
	assert.True(t, mat.Equal(a.Cov, b.Cov))

	// the default seed is fixed, so omitting WithSeed is deterministic too
	c, err := New(x, Robust)
	assert.NoError(t, err)
	d, err := New(x, Robust)
	assert.NoError(t, err)
	assert.True(t, mat.Equal(c.Mean, d.Mean))
	assert.True(t, mat.Equal(c.Cov, d.Cov))
}

func TestConsistencyFactor(t *testing.T) {
	// half-sample truncation in one dimension inflates the scatter by ~7
	assert.InDelta(t, 7.0087, consistency(0.5, 1), 0.01)
	// reweighting factor for the 0.975 cutoff in two dimensions
	assert.InDelta(t, 1.1045, consistency(0.975, 2), 0.001)

	// approaches 1 as the covered fraction approaches 1
	assert.InDelta(t, 1.0, consistency(0.999, 2), 0.05)

	// monotone decreasing in the covered fraction
	for _, p := range []int{1, 2, 5} {
		assert.Greater(t, consistency(0.5, p), consistency(0.75, p))
		assert.Greater(t, consistency(0.75, p), consistency(0.975, p))
		assert.Greater(t, consistency(0.975, p), 1.0)
	}
}
