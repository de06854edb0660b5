package battleship

import "golang.org/x/exp/rand"

// Strategy picks the cell the automated opponent shoots at.
// ok is false when every cell has already been resolved.
type Strategy interface {
	ChooseTarget(board Board) (target Coordinates, ok bool)
}

// RandomStrategy shoots uniformly at random among the cells
// not shot yet. It keeps no memory; everything it needs is on
// the board.
type RandomStrategy struct {
	rnd *rand.Rand
}

var _ Strategy = (*RandomStrategy)(nil)

func NewRandomStrategy(rnd *rand.Rand) *RandomStrategy {
	return &RandomStrategy{rnd: rnd}
}

func (s *RandomStrategy) ChooseTarget(board Board) (Coordinates, bool) {
	candidates := board.Unresolved()
	if len(candidates) == 0 {
		return Coordinates{}, false
	}
	return candidates[s.rnd.Intn(len(candidates))], true
}
