package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/GoSim-25-26J-441/call-heatmap/config"
	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/service"
)

func runDepIC(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("depic", flag.ContinueOnError)
	tracesPath := fs.String("traces", "", "Jaeger trace export (JSON)")
	profile := fs.String("config", "", "YAML profile; its entity list picks the scored services")
	out := fs.String("out", "", "long-format CSV to write (default: the profile's input path, else depICs.csv)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tracesPath == "" {
		return errors.New("depic: -traces is required")
	}

	cfg, err := config.Load(*profile)
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = "depICs.csv"
		if *profile != "" {
			path = cfg.Input.Path
		}
	}

	records, err := service.DepICTraces(*tracesPath, path, cfg.Canonical(), cfg.App.LogLevel)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote: %s (%d pairs)\n", path, len(records))
	return nil
}
