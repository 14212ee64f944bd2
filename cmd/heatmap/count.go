package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/service"
)

func runCount(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("count", flag.ContinueOnError)
	tracesPath := fs.String("traces", "", "Jaeger trace export (JSON)")
	out := fs.String("out", "service_calls.csv", "long-format CSV to write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tracesPath == "" {
		return errors.New("count: -traces is required")
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	records, err := service.CountTraces(*tracesPath, *out, level)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote: %s (%d pairs)\n", *out, len(records))
	return nil
}
