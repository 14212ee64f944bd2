package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/GoSim-25-26J-441/call-heatmap/config"
	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/service"
)

type renderFlags struct {
	profile string
	in      string
	out     string
	dpi     int
}

func parseRenderFlags(name string, args []string) (*config.Config, error) {
	var f renderFlags
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&f.profile, "config", "", "YAML profile (columns, entity list, display options)")
	fs.StringVar(&f.in, "in", "", "input CSV, overrides the profile")
	fs.StringVar(&f.out, "out", "", "output PNG, overrides the profile")
	fs.IntVar(&f.dpi, "dpi", 0, "output resolution, overrides the profile")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(f.profile)
	if err != nil {
		return nil, err
	}
	if f.in != "" {
		cfg.Input.Path = f.in
	}
	if f.out != "" {
		cfg.Output.Path = f.out
	}
	if f.dpi > 0 {
		cfg.Display.DPI = f.dpi
	}
	return cfg, cfg.Validate()
}

func runRender(args []string, stdout io.Writer) error {
	cfg, err := parseRenderFlags("render", args)
	if err != nil {
		return err
	}
	res, err := service.Render(cfg)
	// a failed export still reports the image it wrote
	if res == nil {
		return err
	}

	rows, cols := res.Matrix.Dims()
	fmt.Fprintf(stdout, "Wrote: %s (%dx%d)\n", res.ImagePath, rows, cols)
	for _, kind := range cfg.Output.Exports {
		if p, ok := res.Exports[kind]; ok {
			fmt.Fprintf(stdout, " - %s: %s\n", kind, p)
		}
	}
	if n := len(res.Dropped); n > 0 {
		fmt.Fprintf(stdout, "Dropped %d records outside the entity list\n", n)
	}
	if n := len(res.Skipped); n > 0 {
		fmt.Fprintf(stdout, "Skipped %d malformed records\n", n)
	}
	return err
}

func runPreview(args []string, stdout io.Writer) error {
	cfg, err := parseRenderFlags("preview", args)
	if err != nil {
		return err
	}
	_, err = service.Preview(cfg, stdout)
	return err
}
