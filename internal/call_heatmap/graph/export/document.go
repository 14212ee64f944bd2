package export

import (
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/domain"
)

// Document is the serialized form of a matrix written next to the image.
type Document struct {
	Title  string            `json:"title,omitempty" yaml:"title,omitempty"`
	Rows   []domain.EntityID `json:"rows" yaml:"rows"`
	Cols   []domain.EntityID `json:"cols" yaml:"cols"`
	Values [][]float64       `json:"values" yaml:"values"`
	Min    float64           `json:"min" yaml:"min"`
	Max    float64           `json:"max" yaml:"max"`
}

func NewDocument(m *domain.Matrix, title string) Document {
	lo, hi := m.Range()
	return Document{
		Title:  title,
		Rows:   m.Rows,
		Cols:   m.Cols,
		Values: m.Values,
		Min:    lo,
		Max:    hi,
	}
}

func WriteJSON(path string, v any) error {
	return writeEncoded(path, v, func(v any) ([]byte, error) {
		b, err := json.MarshalIndent(v, "", "  ")
		return append(b, '\n'), err
	})
}

func WriteYAML(path string, v any) error {
	return writeEncoded(path, v, yaml.Marshal)
}

func writeEncoded(path string, v any, marshal func(any) ([]byte, error)) error {
	b, err := marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
