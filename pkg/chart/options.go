package chart

import (
	"github.com/trgrimm/t2-mewma/pkg/estimate"
)

// ThresholdRule selects how the T² control limit is derived from the
// baseline
type ThresholdRule string

const (
	// Parametric derives the limit from the F distribution of the scaled
	// statistic
	Parametric ThresholdRule = "parametric"
	// Nonparametric derives the limit from a kernel density estimate of
	// the baseline statistic sequence
	Nonparametric ThresholdRule = "nonparametric"
)

type config struct {
	method  estimate.Method
	rule    ThresholdRule
	lambda  float64
	far     float64
	arl     float64
	seed    uint64
	seedSet bool
	trials  int
	subset  int
}

// Option configures a chart fit
type Option func(*config) error

// WithMethod selects the baseline estimation method, estimate.Classical or
// estimate.Robust.  The default is estimate.Classical.
func WithMethod(m estimate.Method) Option {
	return func(c *config) error {
		c.method = m
		return nil
	}
}

// WithThresholdRule selects the T² limit derivation, Parametric or
// Nonparametric.  The default is Parametric.
func WithThresholdRule(r ThresholdRule) Option {
	return func(c *config) error {
		c.rule = r
		return nil
	}
}

// WithFalseAlarmRate sets the per-observation false alarm rate target used
// to derive the T² limit.  An in-control ARL target takes precedence when
// both are configured.
func WithFalseAlarmRate(far float64) Option {
	return func(c *config) error {
		if far <= 0 || far >= 1 {
			return InvalidConfig{Field: "false alarm rate", Value: far, Reason: "must be in (0, 1)"}
		}
		c.far = far
		return nil
	}
}

// WithInControlARL sets the in-control average run length target used to
// derive the control limit
func WithInControlARL(arl float64) Option {
	return func(c *config) error {
		if arl <= 1 {
			return InvalidConfig{Field: "in-control ARL", Value: arl, Reason: "must exceed 1"}
		}
		c.arl = arl
		return nil
	}
}

// WithLambda sets the MEWMA smoothing constant.  The default is
// DefaultLambda; 1 gives a memoryless chart.
func WithLambda(lambda float64) Option {
	return func(c *config) error {
		if lambda <= 0 || lambda > 1 {
			return InvalidConfig{Field: "lambda", Value: lambda, Reason: "smoothing constant must be in (0, 1]"}
		}
		c.lambda = lambda
		return nil
	}
}

// WithSeed fixes the seed for the robust estimator's random subsampling so
// repeated fits are reproducible.  Without it the estimator uses its fixed
// default seed.
func WithSeed(seed uint64) Option {
	return func(c *config) error {
		c.seed = seed
		c.seedSet = true
		return nil
	}
}

// WithMCDTrials sets the number of random starting subsets for the robust
// estimator
func WithMCDTrials(trials int) Option {
	return func(c *config) error {
		if trials <= 0 {
			return InvalidConfig{Field: "MCD trials", Value: trials, Reason: "must be positive"}
		}
		c.trials = trials
		return nil
	}
}

// WithMCDSubsetSize sets the covered subset size for the robust estimator
func WithMCDSubsetSize(h int) Option {
	return func(c *config) error {
		if h <= 0 {
			return InvalidConfig{Field: "MCD subset size", Value: h, Reason: "must be positive"}
		}
		c.subset = h
		return nil
	}
}

func newConfig(opts []Option) (config, error) {
	cfg := config{method: estimate.Classical}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, err
		}
	}
	return cfg, nil
}

// prob returns the target non-exceedance probability for the limit.  The
// ARL target wins when both it and a false alarm rate are configured.
func (c config) prob() (float64, error) {
	switch {
	case c.arl > 0:
		return 1 - 1/c.arl, nil
	case c.far > 0:
		return 1 - c.far, nil
	default:
		return 0, InvalidConfig{Field: "limit target", Reason: "set a false alarm rate or an in-control ARL"}
	}
}

func (c config) estimateOpts() []estimate.Option {
	var opts []estimate.Option
	if c.seedSet {
		opts = append(opts, estimate.WithSeed(c.seed))
	}
	if c.trials > 0 {
		opts = append(opts, estimate.WithTrials(c.trials))
	}
	if c.subset > 0 {
		opts = append(opts, estimate.WithSubsetSize(c.subset))
	}
	return opts
}
