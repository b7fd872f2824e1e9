package ocr

import (
	"sort"
	"strings"
)

// Layout holds the spacing heuristics used to rebuild a page's visual
// structure from word boxes. Gaps are measured from the previous box's right
// edge; a gap strictly greater than ColumnGap marks a column boundary.
type Layout struct {
	LineTolerance int // vertical drift allowed within one line, default 10
	FieldGap      int // gap above which two words get a double space, default 20
	ColumnGap     int // gap above which the column marker is inserted, default 50
}

const columnMarker = "  |  "

func DefaultLayout() Layout {
	return Layout{LineTolerance: 10, FieldGap: 20, ColumnGap: 50}
}

// Structure regroups word boxes into visually ordered lines and joins them
// with gap-derived separators. Raw token concatenation loses the tabular
// structure the field rules depend on; spacing heuristics recover column
// boundaries without a table-detection model. Pure function: empty input
// yields an empty string.
func (l Layout) Structure(boxes []WordBox) string {
	if len(boxes) == 0 {
		return ""
	}

	sorted := make([]WordBox, len(boxes))
	copy(sorted, boxes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].Left < sorted[j].Left
	})

	// Greedy line partition: a box joins the current line when its vertical
	// position is within tolerance of the line's anchor, the first box of the
	// line. Drift is measured from the anchor, not a running average.
	var lines [][]WordBox
	current := []WordBox{sorted[0]}
	anchorY := sorted[0].Top
	for _, box := range sorted[1:] {
		if abs(box.Top-anchorY) <= l.LineTolerance {
			current = append(current, box)
		} else {
			lines = append(lines, current)
			current = []WordBox{box}
			anchorY = box.Top
		}
	}
	lines = append(lines, current)

	var b strings.Builder
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].Left < line[j].Left })
		prevRight := -1
		for i, box := range line {
			if i > 0 {
				gap := box.Left - prevRight
				switch {
				case gap > l.ColumnGap:
					b.WriteString(columnMarker)
				case gap > l.FieldGap:
					b.WriteString("  ")
				default:
					b.WriteString(" ")
				}
			}
			b.WriteString(box.Text)
			prevRight = box.Left + box.Width
		}
		b.WriteString("\n")
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
