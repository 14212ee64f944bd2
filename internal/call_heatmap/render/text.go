package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/domain"
	"github.com/charmbracelet/lipgloss"
)

// Text prints the matrix as a colored table for a terminal. Colors are
// dropped automatically when w is not a terminal.
func Text(w io.Writer, m *domain.Matrix, opts domain.DisplayOptions) error {
	if m == nil || m.Empty() {
		return domain.ErrEmptyMatrix
	}
	format, err := ValueFormatter(opts.ValueFormat)
	if err != nil {
		return err
	}
	if opts.Palette == "" {
		opts.Palette = DefaultPalette
	}
	lo, hi := m.Range()
	sc, err := newScale(opts.Palette, lo, hi)
	if err != nil {
		return err
	}

	re := lipgloss.NewRenderer(w)
	labelW := widestRunes(m.Rows)
	cellW := 0
	for _, c := range m.Cols {
		cellW = max(cellW, len([]rune(string(c))))
	}
	for _, row := range m.Values {
		for _, v := range row {
			cellW = max(cellW, len(format(v)))
		}
	}
	cellW += 2

	label := re.NewStyle().Width(labelW + 1).Align(lipgloss.Left)
	header := re.NewStyle().Width(cellW).Align(lipgloss.Right).Bold(true)

	var b strings.Builder
	if opts.Title != "" {
		b.WriteString(re.NewStyle().Bold(true).Render(opts.Title))
		b.WriteString("\n")
	}
	if opts.RowAxisLabel != "" || opts.ColumnAxisLabel != "" {
		b.WriteString(re.NewStyle().Faint(true).Render(fmt.Sprintf("rows: %s, columns: %s", opts.RowAxisLabel, opts.ColumnAxisLabel)))
		b.WriteString("\n")
	}

	b.WriteString(label.Render(""))
	for _, c := range m.Cols {
		b.WriteString(header.Render(string(c)))
	}
	b.WriteString("\n")

	for i, r := range m.Rows {
		b.WriteString(label.Render(string(r)))
		for _, v := range m.Values[i] {
			bg := sc.color(v)
			st := re.NewStyle().
				Width(cellW).
				Align(lipgloss.Right).
				Background(lipgloss.Color(hex(bg))).
				Foreground(lipgloss.Color(hex(ink(bg))))
			b.WriteString(st.Render(format(v)))
		}
		b.WriteString("\n")
	}
	b.WriteString(re.NewStyle().Faint(true).Render(fmt.Sprintf("scale %s: %s .. %s", opts.Palette, format(lo), format(hi))))
	b.WriteString("\n")

	_, err = io.WriteString(w, b.String())
	return err
}

func widestRunes(ids []domain.EntityID) int {
	w := 0
	for _, id := range ids {
		w = max(w, len([]rune(string(id))))
	}
	return w
}
