package export

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/domain"
)

func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteWideCSV writes the pivoted table: one header row of column ids, then
// one row per source.
func WriteWideCSV(w io.Writer, m *domain.Matrix) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(m.Cols)+1)
	header = append(header, "")
	for _, c := range m.Cols {
		header = append(header, string(c))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, r := range m.Rows {
		row := make([]string, 0, len(m.Cols)+1)
		row = append(row, string(r))
		for _, v := range m.Values[i] {
			row = append(row, formatWeight(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLongCSV writes records as from,to,<weightColumn> sorted by source then
// destination so repeated exports are byte-identical.
func WriteLongCSV(w io.Writer, records []domain.CallRecord, weightColumn string) error {
	if weightColumn == "" {
		weightColumn = "count"
	}
	sorted := append([]domain.CallRecord{}, records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Source != sorted[j].Source {
			return sorted[i].Source < sorted[j].Source
		}
		return sorted[i].Destination < sorted[j].Destination
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"from", "to", weightColumn}); err != nil {
		return err
	}
	for _, r := range sorted {
		if err := cw.Write([]string{string(r.Source), string(r.Destination), formatWeight(r.Weight)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteWideCSVFile(path string, m *domain.Matrix) error {
	return writeFileWith(path, func(w io.Writer) error { return WriteWideCSV(w, m) })
}

func WriteLongCSVFile(path string, records []domain.CallRecord, weightColumn string) error {
	return writeFileWith(path, func(w io.Writer) error { return WriteLongCSV(w, records, weightColumn) })
}

func writeFileWith(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
