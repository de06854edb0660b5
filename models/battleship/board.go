package battleship

// Both sides play on a square board of this size.
const BoardSize int = 10

type Cell struct {
	HasShip  bool `json:"has_ship"`
	IsPlaced bool `json:"is_placed"`
	IsHit    bool `json:"is_hit"`
	IsMiss   bool `json:"is_miss"`
}

// A cell is resolved once it has been shot at, whatever the outcome.
func (c Cell) IsResolved() bool {
	return c.IsHit || c.IsMiss
}

type Coordinates struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func NewCoordinates(row, col int) Coordinates {
	return Coordinates{Row: row, Col: col}
}

type Board [][]Cell

// Creates a new default board
// All cells are empty and never shot at
func NewBoard() Board {
	board := make(Board, BoardSize)

	for i := 0; i < BoardSize; i++ {
		board[i] = make([]Cell, BoardSize)
	}
	return board
}

func (b Board) InBounds(row, col int) bool {
	return row >= 0 && row < len(b) && col >= 0 && col < len(b[row])
}

// MarkShip writes a ship footprint. Callers validate the
// footprint with CanPlace first; coordinates off the board
// are skipped.
func (b Board) MarkShip(coords []Coordinates) {
	for _, c := range coords {
		if !b.InBounds(c.Row, c.Col) {
			continue
		}
		b[c.Row][c.Col].HasShip = true
		b[c.Row][c.Col].IsPlaced = true
	}
}

// MarkShot resolves a cell as hit or miss. A cell is
// resolved at most once; shooting it again changes nothing
// and reports false.
func (b Board) MarkShot(row, col int, hit bool) bool {
	if !b.InBounds(row, col) || b[row][col].IsResolved() {
		return false
	}

	if hit {
		b[row][col].IsHit = true
	} else {
		b[row][col].IsMiss = true
	}
	return true
}

// Number of ship cells not hit yet. Zero means that side lost.
func (b Board) RemainingDecks() int {
	decks := 0
	for _, row := range b {
		for _, cell := range row {
			if cell.HasShip && !cell.IsHit {
				decks++
			}
		}
	}
	return decks
}

func (b Board) ShipCells() int {
	cells := 0
	for _, row := range b {
		for _, cell := range row {
			if cell.HasShip {
				cells++
			}
		}
	}
	return cells
}

// Unresolved lists every cell not shot at yet, row by row.
func (b Board) Unresolved() []Coordinates {
	coords := make([]Coordinates, 0, len(b)*len(b))
	for r, row := range b {
		for c, cell := range row {
			if !cell.IsResolved() {
				coords = append(coords, NewCoordinates(r, c))
			}
		}
	}
	return coords
}

func (b Board) Copy() Board {
	board := make(Board, len(b))
	for i, row := range b {
		board[i] = make([]Cell, len(row))
		copy(board[i], row)
	}
	return board
}

// Masked returns a copy safe to show to the other side:
// ships are only revealed where they have been hit.
func (b Board) Masked() Board {
	board := b.Copy()
	for _, row := range board {
		for i := range row {
			if row[i].HasShip && !row[i].IsHit {
				row[i].HasShip = false
				row[i].IsPlaced = false
			}
		}
	}
	return board
}
