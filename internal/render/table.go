package render

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

type tableCell struct {
	text   strings.Builder
	isHead bool
}

// tableState buffers a table's cells until block_end(table), per spec.md
// §4.5 ("cells are buffered until block_end(table)").
type tableState struct {
	rows   [][]*tableCell
	curRow []*tableCell
	curCel *tableCell
}

func newTableState() *tableState {
	return &tableState{}
}

func (t *tableState) startRow() {
	t.flushRow()
}

func (t *tableState) startCell(isHead bool) {
	t.curCel = &tableCell{isHead: isHead}
}

func (t *tableState) appendText(s string) {
	if t.curCel != nil {
		t.curCel.text.WriteString(s)
	}
}

func (t *tableState) endCell() {
	if t.curCel != nil {
		t.curRow = append(t.curRow, t.curCel)
		t.curCel = nil
	}
}

func (t *tableState) flushRow() {
	if t.curRow != nil {
		t.rows = append(t.rows, t.curRow)
		t.curRow = nil
	}
}

// closeTable computes display-width-aware column widths, shrinking the
// widest column to fit the available width, and emits a fully drawn table.
func (r *Renderer) closeTable() {
	t := r.table
	r.table = nil
	if t == nil {
		return
	}
	t.flushRow()
	if len(t.rows) == 0 {
		return
	}

	cols := 0
	for _, row := range t.rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	widths := make([]int, cols)
	for _, row := range t.rows {
		for i, cell := range row {
			w := ansi.StringWidth(cell.text.String())
			if w > widths[i] {
				widths[i] = w
			}
		}
	}

	available := r.currentWidth()
	shrinkToFit(widths, available, cols)

	var b strings.Builder
	for rowIdx, row := range t.rows {
		for i := 0; i < cols; i++ {
			var cell *tableCell
			if i < len(row) {
				cell = row[i]
			}
			text := ""
			isHead := false
			if cell != nil {
				text = cell.text.String()
				isHead = cell.isHead
			}
			style := r.styles.Text
			if isHead {
				style = r.styles.Bold
			}
			cellStyled := style.Width(widths[i]).Render(ansi.Truncate(text, widths[i], "…"))
			b.WriteString(cellStyled)
			if i < cols-1 {
				b.WriteString(r.styles.Border.Render(" │ "))
			}
		}
		b.WriteByte('\n')
		if rowIdx == 0 {
			sep := make([]string, cols)
			for i := range sep {
				sep[i] = strings.Repeat("─", widths[i])
			}
			b.WriteString(r.styles.Border.Render(strings.Join(sep, "─┼─")))
			b.WriteByte('\n')
		}
	}

	r.write(lipgloss.NewStyle().Render(b.String()))
}

// shrinkToFit reduces the widest column(s) until the total fits within
// available, per spec.md §4.5 ("fit to the available width by shrinking
// the widest column").
func shrinkToFit(widths []int, available, cols int) {
	separators := (cols - 1) * 3 // " │ " between columns
	total := func() int {
		sum := separators
		for _, w := range widths {
			sum += w
		}
		return sum
	}
	for total() > available {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= 3 {
			break
		}
		widths[widest]--
	}
}
