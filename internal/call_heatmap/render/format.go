package render

import (
	"fmt"
	"regexp"

	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/domain"
)

const DefaultValueFormat = ".2f"

var valueFormatRE = regexp.MustCompile(`^(?:\.(\d{1,2}))?([fge])$`)

// ValueFormatter turns a precision format such as ".0f" or ".2f" into a
// formatting func.
func ValueFormatter(layout string) (func(float64) string, error) {
	if layout == "" {
		layout = DefaultValueFormat
	}
	if !valueFormatRE.MatchString(layout) {
		return nil, fmt.Errorf("%w: value format %q, want e.g. .0f or .2f", domain.ErrInvalidConfig, layout)
	}
	verb := "%" + layout
	return func(v float64) string {
		s := fmt.Sprintf(verb, v)
		// avoid "-0" and "-0.00" for values that round to zero
		if z := fmt.Sprintf(verb, 0.0); s == "-"+z {
			return z
		}
		return s
	}, nil
}
