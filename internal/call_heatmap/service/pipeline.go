package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/call-heatmap/config"
	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/domain"
	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/graph/export"
	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/ingest/parser"
	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/ingest/traces"
	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/matrix"
	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/render"
)

type Result struct {
	RunID     string                `json:"run_id" yaml:"run_id"`
	ImagePath string                `json:"image_path,omitempty" yaml:"image_path,omitempty"`
	Exports   map[string]string     `json:"exports,omitempty" yaml:"exports,omitempty"`
	Matrix    *domain.Matrix        `json:"matrix" yaml:"matrix"`
	Records   []domain.CallRecord   `json:"-" yaml:"-"`
	Dropped   []domain.CallRecord   `json:"dropped,omitempty" yaml:"dropped,omitempty"`
	Skipped   []*domain.RecordError `json:"-" yaml:"-"`
}

// Render runs load, build and render in order and writes the image plus any
// configured exports. Nothing is written if loading, building or drawing
// fails. When an export fails the image and the exports finished before it
// stay on disk and are reported in the returned Result along with the error.
func Render(cfg *config.Config) (*Result, error) {
	res, lg, err := build(cfg)
	if err != nil {
		return nil, err
	}

	img, err := render.Encode(res.Matrix, cfg.Display)
	if err != nil {
		lg.LogError("render", err)
		return nil, err
	}
	if dir := filepath.Dir(cfg.Output.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			err = fmt.Errorf("%w: %s: %v", domain.ErrOutputWriteFailure, dir, err)
			lg.LogError("render", err)
			return nil, err
		}
	}
	if err := render.WriteAtomic(cfg.Output.Path, img); err != nil {
		lg.LogError("render", err)
		return nil, err
	}
	res.ImagePath = cfg.Output.Path
	lg.LogInfof("render", "wrote %s dpi=%d palette=%s", res.ImagePath, cfg.Display.DPI, cfg.Display.Palette)

	if err := writeExports(cfg, res, lg); err != nil {
		lg.LogError("export", err)
		return res, err
	}
	return res, nil
}

// Preview prints the matrix to w instead of writing an image.
func Preview(cfg *config.Config, w io.Writer) (*Result, error) {
	res, lg, err := build(cfg)
	if err != nil {
		return nil, err
	}
	if err := render.Text(w, res.Matrix, cfg.Display); err != nil {
		lg.LogError("preview", err)
		return nil, err
	}
	return res, nil
}

func build(cfg *config.Config) (*Result, *Logger, error) {
	res := &Result{RunID: uuid.NewString()}
	lg := NewLogger(res.RunID, cfg.App.LogLevel)

	loaded, err := parser.ParseCSV(cfg.Input.Path, cfg.ParserOptions())
	if err != nil {
		lg.LogError("load", err)
		return nil, nil, err
	}
	for _, s := range loaded.Skipped {
		lg.LogWarnf("load", "skipped record: %v", s)
	}
	lg.LogInfof("load", "read %d records from %s", len(loaded.Records), cfg.Input.Path)
	res.Records = loaded.Records
	res.Skipped = loaded.Skipped

	m, rep, err := matrix.Build(loaded.Records, matrix.Options{
		Canonical: cfg.Canonical(),
		Aggregate: cfg.Matrix.Aggregate,
		Unknown:   cfg.Matrix.Unknown,
	})
	if err != nil {
		lg.LogError("build", err)
		return nil, nil, err
	}
	if rep.Duplicates > 0 {
		lg.LogInfof("build", "merged %d duplicate pairs using %s", rep.Duplicates, cfg.Matrix.Aggregate)
	}
	for _, d := range rep.Dropped {
		lg.LogWarnf("build", "dropped %s -> %s (line %d): not in entity list", d.Source, d.Destination, d.Line)
	}
	rows, cols := m.Dims()
	lg.LogDebugf("build", "matrix %dx%d", rows, cols)

	res.Matrix = m
	res.Dropped = rep.Dropped
	return res, lg, nil
}

func writeExports(cfg *config.Config, res *Result, lg *Logger) error {
	if len(cfg.Output.Exports) == 0 {
		return nil
	}
	base := strings.TrimSuffix(cfg.Output.Path, filepath.Ext(cfg.Output.Path))
	res.Exports = map[string]string{}
	doc := export.NewDocument(res.Matrix, cfg.Display.Title)
	format, err := render.ValueFormatter(cfg.Display.ValueFormat)
	if err != nil {
		return err
	}

	write := func(kind, path string, fn func() error) error {
		if err := fn(); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrOutputWriteFailure, path, err)
		}
		res.Exports[kind] = path
		lg.LogInfof("export", "wrote %s %s", kind, path)
		return nil
	}

	dotPath := base + ".dot"
	writeDot := func() error {
		return export.WriteDOT(dotPath, export.ToDOT(res.Matrix, cfg.Display.Title, format))
	}

	for _, kind := range cfg.Output.Exports {
		var err error
		switch kind {
		case "json":
			p := base + ".json"
			err = write(kind, p, func() error { return export.WriteJSON(p, doc) })
		case "yaml":
			p := base + ".yaml"
			err = write(kind, p, func() error { return export.WriteYAML(p, doc) })
		case "csv":
			p := base + ".matrix.csv"
			err = write(kind, p, func() error { return export.WriteWideCSVFile(p, res.Matrix) })
		case "long_csv":
			p := base + ".calls.csv"
			err = write(kind, p, func() error { return export.WriteLongCSVFile(p, res.Records, cfg.Input.Columns.Weight) })
		case "dot":
			err = write(kind, dotPath, writeDot)
		case "svg":
			p := base + ".svg"
			err = write(kind, p, func() error {
				if _, ok := res.Exports["dot"]; !ok {
					if err := writeDot(); err != nil {
						return err
					}
					if !cfg.Exports("dot") {
						defer os.Remove(dotPath)
					}
				}
				return export.DotTo(dotPath, p, "svg", cfg.Output.DotBin)
			})
		default:
			err = fmt.Errorf("%w: unknown export %q", domain.ErrInvalidConfig, kind)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// CountTraces turns a Jaeger trace export into a long-format call-count CSV
// that Render can read.
func CountTraces(tracesPath, outPath, logLevel string) ([]domain.CallRecord, error) {
	return fromTraces("count", tracesPath, outPath, "count", logLevel, traces.CountCalls)
}

// DepICTraces scores service pairs by shared invocation chains and writes
// them as a long-format CSV with a DepIC_Value column. An empty services list
// scores every service seen in the traces.
func DepICTraces(tracesPath, outPath string, services []domain.EntityID, logLevel string) ([]domain.CallRecord, error) {
	return fromTraces("depic", tracesPath, outPath, "DepIC_Value", logLevel, func(td *traces.TraceData) []domain.CallRecord {
		return traces.DepICs(td, services)
	})
}

func fromTraces(op, tracesPath, outPath, weightColumn, logLevel string, derive func(*traces.TraceData) []domain.CallRecord) ([]domain.CallRecord, error) {
	lg := NewLogger(uuid.NewString(), logLevel)

	td, err := traces.ParseJaegerFile(tracesPath)
	if err != nil {
		lg.LogError(op, err)
		return nil, err
	}
	records := derive(td)
	lg.LogInfof(op, "derived %d service pairs from %d traces", len(records), len(td.Data))

	if err := export.WriteLongCSVFile(outPath, records, weightColumn); err != nil {
		err = fmt.Errorf("%w: %s: %v", domain.ErrOutputWriteFailure, outPath, err)
		lg.LogError(op, err)
		return nil, err
	}
	lg.LogInfof(op, "wrote %s", outPath)
	return records, nil
}
