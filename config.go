package mspm

import (
	"fmt"
	"strconv"

	"github.com/trgrimm/t2-mewma/pkg/chart"
	"github.com/trgrimm/t2-mewma/pkg/estimate"
)

// Config holds a fully resolved monitoring run: where the observations come
// from, which chart to fit, and how to render the result.
type Config struct {
	TrainPath string
	TestPath  string
	Chart     string
	Method    estimate.Method
	Rule      chart.ThresholdRule
	Lambda    float64
	ARL       float64
	FAR       float64
	Seed      uint64
	Trials    int
	Subset    int
	Header    bool
	Format    string
	Out       string

	seedSet bool
}

type ConfigOption func(c *Config) error

// NewConfig resolves defaults and applies options, accumulating every
// configuration error rather than stopping at the first
func NewConfig(options ...ConfigOption) (*Config, []error) {
	c := &Config{
		Chart:  "t2",
		Method: estimate.Classical,
		Format: "text",
	}

	var errors []error
	for _, option := range options {
		err := option(c)
		if err != nil {
			errors = append(errors, err)
		}
	}
	if c.TrainPath == "" {
		errors = append(errors, fmt.Errorf("no baseline observations, specify a CSV file using option --train"))
	}
	if c.TestPath == "" {
		errors = append(errors, fmt.Errorf("no observations to monitor, specify a CSV file using option --test"))
	}

	if len(errors) > 0 {
		return nil, errors
	}
	return c, nil
}

func TrainFile(path string) ConfigOption {
	return func(c *Config) error {
		c.TrainPath = path
		return nil
	}
}

func TestFile(path string) ConfigOption {
	return func(c *Config) error {
		c.TestPath = path
		return nil
	}
}

func Chart(name string) ConfigOption {
	return func(c *Config) error {
		switch name {
		case "t2", "mewma":
			c.Chart = name
			return nil
		default:
			return fmt.Errorf("unknown chart %s, expected t2 or mewma", name)
		}
	}
}

func Method(name string) ConfigOption {
	return func(c *Config) error {
		switch estimate.Method(name) {
		case estimate.Classical, estimate.Robust:
			c.Method = estimate.Method(name)
			return nil
		default:
			return fmt.Errorf("unknown method %s, expected classical or robust", name)
		}
	}
}

func Rule(name string) ConfigOption {
	return func(c *Config) error {
		switch chart.ThresholdRule(name) {
		case chart.Parametric, chart.Nonparametric:
			c.Rule = chart.ThresholdRule(name)
			return nil
		default:
			return fmt.Errorf("unknown threshold rule %s, expected parametric or nonparametric", name)
		}
	}
}

func Lambda(value string) ConfigOption {
	return func(c *Config) error {
		l, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("could not convert lambda to a number")
		}
		if l <= 0 || l > 1 {
			return fmt.Errorf("lambda must be in (0, 1], got %s", value)
		}
		c.Lambda = l
		return nil
	}
}

func ARL(value string) ConfigOption {
	return func(c *Config) error {
		a, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("could not convert arl to a number")
		}
		if a <= 1 {
			return fmt.Errorf("arl must be greater than 1, got %s", value)
		}
		c.ARL = a
		return nil
	}
}

func FAR(value string) ConfigOption {
	return func(c *Config) error {
		a, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("could not convert far to a number")
		}
		if a <= 0 || a >= 1 {
			return fmt.Errorf("far must be in (0, 1), got %s", value)
		}
		c.FAR = a
		return nil
	}
}

func Seed(value string) ConfigOption {
	return func(c *Config) error {
		s, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("could not convert seed to an integer")
		}
		c.Seed = s
		c.seedSet = true
		return nil
	}
}

func Trials(value string) ConfigOption {
	return func(c *Config) error {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("trials must be a positive integer, got %s", value)
		}
		c.Trials = n
		return nil
	}
}

func Subset(value string) ConfigOption {
	return func(c *Config) error {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("subset must be a positive integer, got %s", value)
		}
		c.Subset = n
		return nil
	}
}

func Header() ConfigOption {
	return func(c *Config) error {
		c.Header = true
		return nil
	}
}

func Format(name string) ConfigOption {
	return func(c *Config) error {
		switch name {
		case "text", "json", "logfmt":
			c.Format = name
			return nil
		default:
			return fmt.Errorf("unknown format %s, expected text, json, or logfmt", name)
		}
	}
}

func Output(path string) ConfigOption {
	return func(c *Config) error {
		c.Out = path
		return nil
	}
}

// chartOptions translates the configuration into fitting options, leaving
// chart-specific validation to the chart itself
func (c *Config) chartOptions() []chart.Option {
	opts := []chart.Option{chart.WithMethod(c.Method)}
	if c.Rule != "" {
		opts = append(opts, chart.WithThresholdRule(c.Rule))
	}
	if c.Lambda > 0 {
		opts = append(opts, chart.WithLambda(c.Lambda))
	}
	if c.ARL > 0 {
		opts = append(opts, chart.WithInControlARL(c.ARL))
	}
	if c.FAR > 0 {
		opts = append(opts, chart.WithFalseAlarmRate(c.FAR))
	}
	if c.seedSet {
		opts = append(opts, chart.WithSeed(c.Seed))
	}
	if c.Trials > 0 {
		opts = append(opts, chart.WithMCDTrials(c.Trials))
	}
	if c.Subset > 0 {
		opts = append(opts, chart.WithMCDSubsetSize(c.Subset))
	}
	return opts
}
