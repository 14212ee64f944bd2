package export

import (
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/domain"
)

// ToDOT draws the non-zero cells of m as a weighted call graph. Nodes are
// the union of both axes in axis order; pen width grows with the weight.
func ToDOT(m *domain.Matrix, title string, format func(float64) string) string {
	if format == nil {
		format = formatWeight
	}
	var b strings.Builder
	b.WriteString("digraph G {\n  rankdir=LR;\n  node [shape=box, style=rounded];\n")
	if title != "" {
		b.WriteString(fmt.Sprintf(`  labelloc="t"; label="%s"; fontname="Helvetica";`, escape(title)))
		b.WriteString("\n")
	}

	seen := map[domain.EntityID]bool{}
	for _, ids := range [][]domain.EntityID{m.Rows, m.Cols} {
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			b.WriteString(fmt.Sprintf(`  "%s" [label="%s", shape=box,style="rounded,filled",fillcolor="#eef6ff"];`+"\n",
				escape(string(id)), escape(string(id))))
		}
	}

	lo, hi := m.Range()
	for i, r := range m.Rows {
		for j, c := range m.Cols {
			v := m.Values[i][j]
			if v == 0 {
				continue
			}
			pen := 1.0
			if hi > lo {
				pen += 4 * (v - lo) / (hi - lo)
			}
			b.WriteString(fmt.Sprintf(`  "%s" -> "%s" [label="%s", penwidth=%.2f];`+"\n",
				escape(string(r)), escape(string(c)), format(v), pen))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
