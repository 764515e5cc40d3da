package mspm

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-yaml/yaml"
	"github.com/spf13/pflag"
)

type options struct {
	options []ConfigOption
	err     error
}

// ParseCommandLine configures a monitoring run from command line options or
// from a YAML configuration file passed with the -c flag.  Returns a slice of
// functional options that can be applied to the configuration.
func ParseCommandLine() ([]ConfigOption, error) {
	pf := createFlagSet()
	return parse(os.Args[1:], pf)
}

func parse(args []string, pf *pflag.FlagSet) ([]ConfigOption, error) {
	options := options{}
	if err := pf.ParseAll(args, parseFlag(&options)); err != nil {
		return options.options, err
	}
	return options.options, options.err
}

func createFlagSet() *pflag.FlagSet {
	pf := pflag.NewFlagSet("mspm", pflag.ContinueOnError)
	pf.Usage = func() {
		fmt.Printf("Usage of mspm:\nmspm --train baseline.csv --test current.csv <options>\n")
		fmt.Printf("\n%s", pf.FlagUsagesWrapped(10))
	}

	pf.String("train", "", "CSV file of in-control baseline observations (required)")
	pf.String("test", "", "CSV file of observations to monitor (required)")
	pf.StringP("config", "c", "", "Use yaml configuration file")
	pf.String("chart", "t2", "Control chart to fit: t2 or mewma")
	pf.String("method", "classical", "Location and scatter estimator: classical or robust")
	pf.String("rule", "", "Threshold rule for the t2 chart: parametric or nonparametric")
	pf.String("lambda", "", "Smoothing weight for the mewma chart in (0, 1]")
	pf.String("arl", "", "Target in-control average run length for the control limit")
	pf.String("far", "", "Target false alarm rate for the t2 control limit")
	pf.String("seed", "", "Seed for the robust estimator's subsampling")
	pf.String("trials", "", "Number of random starts for the robust estimator")
	pf.String("subset", "", "Subset size for the robust estimator")
	pf.Bool("header", false, "Treat the first CSV record of each file as a header")
	pf.String("format", "text", "Report format: text, json, or logfmt")
	pf.StringP("out", "o", "", "Write the report to a file instead of stdout")

	return pf
}

func parseFlag(o *options) func(*pflag.Flag, string) error {
	return func(flag *pflag.Flag, value string) error {
		switch flag.Name {
		case "config":
			opts, err := parseFromFile(value)
			if err != nil {
				o.err = err
				return err
			}
			o.options = append(o.options, opts...)
		default:
			option, err := handleOption(flag.Name, value)
			if err != nil {
				o.err = err
				return err
			}
			o.options = append(o.options, option)
		}
		return nil
	}
}

func handleOption(name string, value string) (ConfigOption, error) {
	switch name {
	case "train":
		return TrainFile(value), nil
	case "test":
		return TestFile(value), nil
	case "chart":
		return Chart(value), nil
	case "method":
		return Method(value), nil
	case "rule":
		return Rule(value), nil
	case "lambda":
		return Lambda(value), nil
	case "arl":
		return ARL(value), nil
	case "far":
		return FAR(value), nil
	case "seed":
		return Seed(value), nil
	case "trials":
		return Trials(value), nil
	case "subset":
		return Subset(value), nil
	case "header":
		return Header(), nil
	case "format":
		return Format(value), nil
	case "out":
		return Output(value), nil
	default:
		return nil, fmt.Errorf("Unknown option: %s", name)
	}
}

func parseFromFile(fpath string) ([]ConfigOption, error) {
	var options []ConfigOption
	data, err := os.ReadFile(fpath)
	if err != nil {
		return options, err
	}

	cfg := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return options, err
	}
	for k, v := range cfg {
		var opt ConfigOption
		var err error
		switch v := v.(type) {
		case string:
			opt, err = handleOption(k, v)
		case int:
			opt, err = handleOption(k, strconv.Itoa(v))
		case float64:
			opt, err = handleOption(k, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			if !v {
				continue
			}
			opt, err = handleOption(k, "")
		default:
			return options, fmt.Errorf("Could not process config key %s, unknown type", k)
		}
		if err != nil {
			return options, err
		}
		options = append(options, opt)
	}
	return options, nil
}
