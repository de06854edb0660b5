package battleship

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFootprint(t *testing.T) {
	require.Equal(t,
		[]Coordinates{{Row: 4, Col: 2}, {Row: 4, Col: 3}, {Row: 4, Col: 4}},
		Footprint(4, 2, 3, OrientationHorizontal),
	)
	require.Equal(t,
		[]Coordinates{{Row: 4, Col: 2}, {Row: 5, Col: 2}, {Row: 6, Col: 2}},
		Footprint(4, 2, 3, OrientationVertical),
	)
}

func TestCanPlaceBounds(t *testing.T) {
	board := NewBoard()

	testCases := []struct {
		name        string
		row, col    int
		size        int
		orientation Orientation
		expected    bool
	}{
		{name: "corner origin", row: 0, col: 0, size: 6, orientation: OrientationHorizontal, expected: true},
		{name: "touching right edge", row: 0, col: 4, size: 6, orientation: OrientationHorizontal, expected: true},
		{name: "past right edge", row: 0, col: 5, size: 6, orientation: OrientationHorizontal, expected: false},
		{name: "touching bottom edge", row: 5, col: 9, size: 5, orientation: OrientationVertical, expected: true},
		{name: "past bottom edge", row: 6, col: 9, size: 5, orientation: OrientationVertical, expected: false},
		{name: "negative row", row: -1, col: 0, size: 1, orientation: OrientationHorizontal, expected: false},
		{name: "negative col", row: 0, col: -1, size: 2, orientation: OrientationVertical, expected: false},
		{name: "zero size", row: 0, col: 0, size: 0, orientation: OrientationHorizontal, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, CanPlace(board, tc.row, tc.col, tc.size, tc.orientation))
		})
	}
}

func TestCanPlaceAdjacency(t *testing.T) {
	board := NewBoard()
	board.MarkShip(Footprint(4, 4, 3, OrientationHorizontal)) // (4,4) (4,5) (4,6)

	testCases := []struct {
		name        string
		row, col    int
		size        int
		orientation Orientation
		expected    bool
	}{
		{name: "overlap", row: 4, col: 5, size: 1, orientation: OrientationHorizontal, expected: false},
		{name: "crossing", row: 2, col: 5, size: 4, orientation: OrientationVertical, expected: false},
		{name: "orthogonal left", row: 4, col: 2, size: 2, orientation: OrientationHorizontal, expected: false},
		{name: "orthogonal above", row: 3, col: 5, size: 1, orientation: OrientationHorizontal, expected: false},
		{name: "diagonal top left", row: 3, col: 3, size: 1, orientation: OrientationHorizontal, expected: false},
		{name: "diagonal bottom right", row: 5, col: 7, size: 2, orientation: OrientationVertical, expected: false},
		{name: "one cell gap", row: 2, col: 4, size: 3, orientation: OrientationHorizontal, expected: true},
		{name: "gap on the right", row: 4, col: 8, size: 2, orientation: OrientationHorizontal, expected: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, CanPlace(board, tc.row, tc.col, tc.size, tc.orientation))
		})
	}
}

func TestCanPlaceIsPure(t *testing.T) {
	board := NewBoard()
	before := board.Copy()
	CanPlace(board, 0, 0, 4, OrientationVertical)
	require.Equal(t, before, board)
}
