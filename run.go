// Package mspm fits multivariate control charts to observation files and
// renders the monitoring outcome.  It wires command line or YAML
// configuration to the chart engines in pkg/chart.
package mspm

import (
	"fmt"

	"github.com/trgrimm/t2-mewma/pkg/chart"
	"github.com/trgrimm/t2-mewma/pkg/sample"
)

// Run loads the baseline and monitoring observations, fits the configured
// chart, and returns a report of the outcome
func Run(cfg *Config) (*Report, error) {
	train, err := sample.LoadFile(cfg.TrainPath, cfg.Header)
	if err != nil {
		return nil, fmt.Errorf("could not load baseline observations: %v", err)
	}
	test, err := sample.LoadFile(cfg.TestPath, cfg.Header)
	if err != nil {
		return nil, fmt.Errorf("could not load monitoring observations: %v", err)
	}

	opts := cfg.chartOptions()
	switch cfg.Chart {
	case "mewma":
		res, err := chart.MEWMA(train, test, opts...)
		if err != nil {
			return nil, err
		}
		return newReport(cfg, test, res.Test, res.Limit, res.Alarms, res.Lambda), nil
	default:
		res, err := chart.T2(train, test, opts...)
		if err != nil {
			return nil, err
		}
		return newReport(cfg, test, res.Test, res.Limit, res.Alarms, 0), nil
	}
}
