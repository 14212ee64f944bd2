package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/domain"
	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/ingest/parser"
	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/render"
)

type Config struct {
	Input   InputConfig           `yaml:"input"`
	Matrix  MatrixConfig          `yaml:"matrix"`
	Display domain.DisplayOptions `yaml:"display"`
	Output  OutputConfig          `yaml:"output"`
	App     AppConfig             `yaml:"app"`
}

type InputConfig struct {
	Path          string         `yaml:"path" validate:"required"`
	Delimiter     string         `yaml:"delimiter" validate:"omitempty,len=1"`
	Columns       parser.Columns `yaml:"columns"`
	SkipMalformed bool           `yaml:"skip_malformed"`
}

type MatrixConfig struct {
	// Entities pins both axes to this ordered list when non-empty.
	Entities  []string                   `yaml:"entities" validate:"omitempty,unique,dive,required"`
	Aggregate domain.AggregatePolicy     `yaml:"aggregate" validate:"oneof=sum last max reject"`
	Unknown   domain.UnknownEntityPolicy `yaml:"unknown_entities" validate:"oneof=drop fail"`
}

type OutputConfig struct {
	Path    string   `yaml:"path" validate:"required"`
	Exports []string `yaml:"exports" validate:"omitempty,unique,dive,oneof=json yaml csv long_csv dot svg"`
	DotBin  string   `yaml:"dot_bin"`
}

type AppConfig struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn error"`
	Version     string `yaml:"version"`
}

// Default mirrors the plain call-count heatmap.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path:    "service_calls.csv",
			Columns: parser.DefaultColumns(),
		},
		Matrix: MatrixConfig{
			Aggregate: domain.AggregateSum,
			Unknown:   domain.UnknownDrop,
		},
		Display: domain.DisplayOptions{
			Title:           "Service-to-Service Call Heatmap",
			RowAxisLabel:    "Caller (From)",
			ColumnAxisLabel: "Callee (To)",
			ValueFormat:     ".0f",
			Palette:         domain.PaletteReds,
			DPI:             300,
			CellSize:        render.DefaultCellSize,
		},
		Output: OutputConfig{
			Path: "heatmap.png",
		},
		App: AppConfig{
			Environment: "development",
			LogLevel:    "info",
			Version:     "1.0.0",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML profile and
// the environment, in that order.
func Load(profilePath string) (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := Default()
	if profilePath != "" {
		b, err := os.ReadFile(profilePath)
		if err != nil {
			return nil, fmt.Errorf("%w: profile %s: %v", domain.ErrInvalidConfig, profilePath, err)
		}
		if err := cfg.merge(b); err != nil {
			return nil, fmt.Errorf("%w: profile %s: %v", domain.ErrInvalidConfig, profilePath, err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge decodes a YAML profile over cfg. Unknown keys are rejected so typos
// in a profile do not pass silently.
func (c *Config) merge(b []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Input.Path = getEnv("HEATMAP_INPUT", c.Input.Path)
	c.Output.Path = getEnv("HEATMAP_OUTPUT", c.Output.Path)
	c.Output.DotBin = getEnv("DOT_BIN", c.Output.DotBin)
	c.Display.DPI = getEnvAsInt("HEATMAP_DPI", c.Display.DPI)
	c.Display.Palette = domain.Palette(getEnv("HEATMAP_PALETTE", string(c.Display.Palette)))
	if v := os.Getenv("HEATMAP_ENTITIES"); v != "" {
		c.Matrix.Entities = splitList(v)
	}
	c.App.Environment = getEnv("APP_ENV", c.App.Environment)
	c.App.LogLevel = getEnv("LOG_LEVEL", c.App.LogLevel)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("value_format", func(fl validator.FieldLevel) bool {
		_, err := render.ValueFormatter(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("palette", func(fl validator.FieldLevel) bool {
		name := strings.ToLower(fl.Field().String())
		for _, p := range render.Palettes() {
			if string(p) == name {
				return true
			}
		}
		return false
	})
	return v
}

type displayRules struct {
	ValueFormat string `validate:"value_format"`
	Palette     string `validate:"palette"`
}

func (c *Config) Validate() error {
	c.Display.Palette = domain.Palette(strings.ToLower(string(c.Display.Palette)))
	c.App.LogLevel = strings.ToLower(c.App.LogLevel)

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, describe(err))
	}
	rules := displayRules{ValueFormat: c.Display.ValueFormat, Palette: string(c.Display.Palette)}
	if err := validate.Struct(rules); err != nil {
		return fmt.Errorf("%w: display: %s", domain.ErrInvalidConfig, describe(err))
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return strings.Join(parts, "; ")
}

// Canonical returns the pinned axis list.
func (c *Config) Canonical() []domain.EntityID {
	if len(c.Matrix.Entities) == 0 {
		return nil
	}
	out := make([]domain.EntityID, len(c.Matrix.Entities))
	for i, e := range c.Matrix.Entities {
		out[i] = domain.EntityID(e)
	}
	return out
}

// ParserOptions maps the input section onto loader options.
func (c *Config) ParserOptions() parser.Options {
	opts := parser.Options{Columns: c.Input.Columns, SkipMalformed: c.Input.SkipMalformed}
	if c.Input.Delimiter != "" {
		opts.Delimiter = []rune(c.Input.Delimiter)[0]
	}
	return opts
}

func (c *Config) Exports(kind string) bool {
	for _, e := range c.Output.Exports {
		if e == kind {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
