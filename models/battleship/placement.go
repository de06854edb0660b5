package battleship

type Orientation uint8

const (
	OrientationHorizontal Orientation = iota
	OrientationVertical
)

func (o Orientation) IsValid() bool {
	return o == OrientationHorizontal || o == OrientationVertical
}

func (o Orientation) String() string {
	if o == OrientationVertical {
		return "vertical"
	}
	return "horizontal"
}

// Footprint returns the size cells a ship covers when its
// first deck sits at (row, col). Horizontal ships grow to
// the right, vertical ones downwards.
func Footprint(row, col, size int, orientation Orientation) []Coordinates {
	coords := make([]Coordinates, 0, size)
	for i := 0; i < size; i++ {
		if orientation == OrientationVertical {
			coords = append(coords, NewCoordinates(row+i, col))
		} else {
			coords = append(coords, NewCoordinates(row, col+i))
		}
	}
	return coords
}

// CanPlace reports whether a ship fits at (row, col) without
// leaving the board, overlapping another ship or touching one,
// diagonals included. Manual placement and fleet generation
// both go through here.
func CanPlace(board Board, row, col, size int, orientation Orientation) bool {
	if size <= 0 {
		return false
	}

	for _, c := range Footprint(row, col, size, orientation) {
		if !board.InBounds(c.Row, c.Col) || board[c.Row][c.Col].HasShip {
			return false
		}

		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				nr, nc := c.Row+dr, c.Col+dc
				if board.InBounds(nr, nc) && board[nr][nc].HasShip {
					return false
				}
			}
		}
	}
	return true
}
