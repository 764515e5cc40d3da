package chart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/trgrimm/t2-mewma/pkg/estimate"
	"github.com/trgrimm/t2-mewma/pkg/limit"
)

func TestMEWMARecursionPin(t *testing.T) {
	// the baseline is constructed so the fitted estimate is exactly
	// (0, I): each +/-a pair contributes 2a^2/5 = 1 to its diagonal
	a := math.Sqrt(2.5)
	train := mat.NewDense(6, 3, []float64{
		a, 0, 0,
		-a, 0, 0,
		0, a, 0,
		0, -a, 0,
		0, 0, a,
		0, 0, -a,
	})
	test := mat.NewDense(1, 3, []float64{1, 1, 1})

	res, err := MEWMA(train, test, WithInControlARL(200))
	assert.NoError(t, err)
	assert.Equal(t, DefaultLambda, res.Lambda)

	eye := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		eye.SetSym(i, i, 1)
	}
	assert.True(t, mat.Equal(eye, res.Estimate.Cov))
	for j := 0; j < 3; j++ {
		assert.Equal(t, 0.0, res.Estimate.Mean.AtVec(j))
	}

	// q1 = 0.1*(1,1,1) and the smoothed covariance is (0.1/1.9)*I, so
	// the first statistic is 3*0.01*(1.9/0.1) = 0.57
	assert.Len(t, res.Test, 1)
	assert.InDelta(t, 0.57, res.Test[0], 1e-12)
}

func TestMEWMALambdaOneMatchesHotelling(t *testing.T) {
	// with no memory the smoothed statistic reduces to the plain
	// squared distance of each observation
	train := sample(t, 100, 3, 20, 0)
	test := sample(t, 30, 3, 21, 1.0)

	m, err := MEWMA(train, test, WithLambda(1), WithInControlARL(200))
	assert.NoError(t, err)
	h, err := T2(train, test, WithInControlARL(200))
	assert.NoError(t, err)

	assert.Equal(t, len(h.Test), len(m.Test))
	for i := range m.Test {
		assert.InDelta(t, h.Test[i], m.Test[i], 1e-9)
	}
}

func TestMEWMALimitMatchesResolver(t *testing.T) {
	train := sample(t, 80, 2, 22, 0)
	test := sample(t, 10, 2, 23, 0)

	res, err := MEWMA(train, test, WithLambda(0.2), WithInControlARL(150))
	assert.NoError(t, err)
	exp, err := limit.MEWMA(0.2, 150, 2)
	assert.NoError(t, err)
	assert.Equal(t, exp, res.Limit)
}

func TestMEWMAConfigErrors(t *testing.T) {
	train := sample(t, 50, 2, 24, 0)
	test := sample(t, 10, 2, 25, 0)

	tt := []struct {
		name string
		opts []Option
	}{
		{name: "missing ARL", opts: nil},
		{name: "false alarm rate not applicable", opts: []Option{WithFalseAlarmRate(0.01)}},
		{name: "threshold rule not applicable", opts: []Option{WithThresholdRule(Parametric), WithInControlARL(200)}},
		{name: "lambda above one", opts: []Option{WithLambda(1.5), WithInControlARL(200)}},
		{name: "zero lambda", opts: []Option{WithLambda(0), WithInControlARL(200)}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			res, err := MEWMA(train, test, tc.opts...)
			assert.Error(t, err)
			assert.IsType(t, InvalidConfig{}, err)
			assert.Nil(t, res)
		})
	}
}

func TestMEWMADimensionMismatch(t *testing.T) {
	train := sample(t, 30, 3, 26, 0)
	test := sample(t, 10, 2, 27, 0)

	res, err := MEWMA(train, test, WithInControlARL(200))
	assert.Error(t, err)
	assert.IsType(t, DimensionMismatch{}, err)
	assert.Nil(t, res)
}

func TestMEWMAInvalidMethod(t *testing.T) {
	train := sample(t, 30, 2, 28, 0)
	test := sample(t, 10, 2, 29, 0)

	res, err := MEWMA(train, test, WithMethod("bogus"), WithInControlARL(200))
	assert.Error(t, err)
	assert.IsType(t, estimate.InvalidMethod{}, err)
	assert.Nil(t, res)
}

func TestMEWMASustainedShift(t *testing.T) {
	train := sample(t, 500, 3, 30, 0)
	test := icThenShifted(t, 50, 150, 3, 31, 2.0)

	res, err := MEWMA(train, test, WithInControlARL(200))
	assert.NoError(t, err)

	// the smoothed statistic may excurse briefly while in control but
	// settles far above the limit within a few samples of the shift and
	// stays there
	assert.LessOrEqual(t, count(res.Alarms[:50]), 10)
	for i := 59; i < 200; i++ {
		assert.True(t, res.Alarms[i], "index %d", i)
	}
}
