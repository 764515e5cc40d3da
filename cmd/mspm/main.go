package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	mspm "github.com/trgrimm/t2-mewma"
)

func main() {

	opts, err := mspm.ParseCommandLine()
	if err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Printf("Could not parse configuration: %s\n\nUse mspm --help for options\n", err)
		}
		os.Exit(1)
	}

	cfg, errs := mspm.NewConfig(opts...)
	if len(errs) > 0 {
		fmt.Println("Error in config:")
		for _, e := range errs {
			fmt.Println(e)
		}
		os.Exit(1)
	}

	rep, err := mspm.Run(cfg)
	if err != nil {
		fmt.Println("Monitoring error:", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	var f *os.File
	if cfg.Out != "" {
		f, err = os.Create(cfg.Out)
		if err != nil {
			fmt.Println("Report error:", err)
			os.Exit(1)
		}
		out = f
	}
	err = rep.Render(out, cfg.Format)
	if f != nil {
		f.Close()
	}
	if err != nil {
		fmt.Println("Report error:", err)
		os.Exit(1)
	}

	// a nonzero exit distinguishes an out of control process from a
	// clean run for scripted use
	if rep.HasAlarms() {
		os.Exit(2)
	}
	os.Exit(0)
}
