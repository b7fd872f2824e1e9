package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func box(text string, left, top, width int) WordBox {
	return WordBox{Text: text, Left: left, Top: top, Width: width, Height: 12, Confidence: 90, Page: 1}
}

func TestStructureEmpty(t *testing.T) {
	l := DefaultLayout()
	assert.Equal(t, "", l.Structure(nil))
	assert.Equal(t, "", l.Structure([]WordBox{}))
}

func TestStructureSingleLine(t *testing.T) {
	l := DefaultLayout()
	got := l.Structure([]WordBox{
		box("PoS", 0, 10, 30),
		box("ID:", 35, 10, 20),
	})
	assert.Equal(t, "PoS ID:\n", got)
}

func TestStructureGapSeparators(t *testing.T) {
	l := DefaultLayout()

	tests := []struct {
		name string
		gap  int
		want string
	}{
		{"touching words single space", 5, "a b\n"},
		{"field gap boundary stays single space", 20, "a b\n"},
		{"just past field gap", 21, "a  b\n"},
		{"column gap boundary stays double space", 50, "a  b\n"},
		{"just past column gap", 51, "a  |  b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boxes := []WordBox{
				box("a", 0, 10, 10),
				box("b", 10+tt.gap, 10, 10),
			}
			assert.Equal(t, tt.want, l.Structure(boxes))
		})
	}
}

func TestStructureLineGroupingAnchoredAtFirstBox(t *testing.T) {
	l := DefaultLayout()

	// 10 and 18 sit within tolerance of the anchor at 10; 30 does not, even
	// though it is within tolerance of 18 under a drifting comparison.
	got := l.Structure([]WordBox{
		box("first", 0, 10, 30),
		box("same", 40, 18, 30),
		box("second", 0, 30, 30),
	})
	assert.Equal(t, "first same\nsecond\n", got)
}

func TestStructureSortsOutOfOrderBoxes(t *testing.T) {
	l := DefaultLayout()

	got := l.Structure([]WordBox{
		box("right", 200, 50, 40),
		box("below", 0, 100, 40),
		box("left", 0, 50, 40),
	})
	assert.Equal(t, "left  |  right\nbelow\n", got)
}

func TestStructureIdempotentOnSameInput(t *testing.T) {
	l := DefaultLayout()
	boxes := []WordBox{
		box("Supplier:", 0, 10, 60),
		box("GreenFuel", 120, 12, 70),
		box("GmbH", 195, 11, 40),
	}
	first := l.Structure(boxes)
	second := l.Structure(boxes)
	assert.Equal(t, first, second)
	assert.Equal(t, "Supplier:  |  GreenFuel GmbH\n", first)
}
