package battleship

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const (
	// Tries per ship before the board is thrown away.
	MaxPlacementAttempts int = 1000

	// Fresh boards tried before giving up on the fleet.
	MaxFleetRetries int = 50
)

type FleetGenerator struct {
	rnd      *rand.Rand
	attempts int
	retries  int
}

func NewFleetGenerator(rnd *rand.Rand) *FleetGenerator {
	return &FleetGenerator{
		rnd:      rnd,
		attempts: MaxPlacementAttempts,
		retries:  MaxFleetRetries,
	}
}

// Generate lays the ships out at random, in catalog order,
// with no two ships touching. When a ship cannot be placed
// within the attempt budget the board is regenerated from
// scratch; a fleet that still does not fit is an error.
func (fg *FleetGenerator) Generate(specs []ShipSpec) (Board, error) {
	for _, spec := range specs {
		if spec.Size <= 0 {
			return nil, cerr.ErrInvalidShipSize(spec.Name, spec.Size)
		}
		if spec.Size > BoardSize {
			return nil, cerr.ErrShipTooLarge(spec.Name, spec.Size, BoardSize)
		}
	}

	var stuck ShipSpec
	for retry := 0; retry < fg.retries; retry++ {
		board, failed, ok := fg.tryGenerate(specs)
		if ok {
			return board, nil
		}
		stuck = failed
		log.Warn().Msgf("fleet generation restarted; ship %s not placed after %d attempts (retry no. %d)", failed.Name, fg.attempts, retry+1)
	}

	return nil, cerr.ErrFleetGenerationExhausted(stuck.Name, fg.retries)
}

func (fg *FleetGenerator) tryGenerate(specs []ShipSpec) (Board, ShipSpec, bool) {
	board := NewBoard()

	for _, spec := range specs {
		if !fg.placeShip(board, spec) {
			return nil, spec, false
		}
	}
	return board, ShipSpec{}, true
}

func (fg *FleetGenerator) placeShip(board Board, spec ShipSpec) bool {
	for attempt := 0; attempt < fg.attempts; attempt++ {
		orientation := OrientationHorizontal
		if fg.rnd.Intn(2) == 1 {
			orientation = OrientationVertical
		}

		// the origin range keeps the footprint on the board
		maxRow, maxCol := BoardSize, BoardSize-spec.Size+1
		if orientation == OrientationVertical {
			maxRow, maxCol = BoardSize-spec.Size+1, BoardSize
		}
		row := fg.rnd.Intn(maxRow)
		col := fg.rnd.Intn(maxCol)

		if CanPlace(board, row, col, spec.Size, orientation) {
			board.MarkShip(Footprint(row, col, spec.Size, orientation))
			return true
		}
	}
	return false
}
