package battleship

const (
	ShipSuperCarrier = "Super Carrier"
	ShipCarrier      = "Carrier"
	ShipBattleship   = "Battleship"
	ShipCruiser      = "Cruiser"
	ShipSubmarine    = "Submarine"
	ShipDestroyer    = "Destroyer"
	ShipPatrolBoat   = "Patrol Boat"
)

type ShipSpec struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// StandardFleet returns the ship catalog, largest first.
// 24 decks in total.
func StandardFleet() []ShipSpec {
	return []ShipSpec{
		{Name: ShipSuperCarrier, Size: 6},
		{Name: ShipCarrier, Size: 5},
		{Name: ShipBattleship, Size: 4},
		{Name: ShipCruiser, Size: 3},
		{Name: ShipSubmarine, Size: 3},
		{Name: ShipDestroyer, Size: 2},
		{Name: ShipPatrolBoat, Size: 1},
	}
}

type ShipPlacement struct {
	Name   string `json:"name"`
	Size   int    `json:"size"`
	Placed bool   `json:"placed"`
}

func NewShipPlacements(specs []ShipSpec) []ShipPlacement {
	ships := make([]ShipPlacement, len(specs))
	for i, spec := range specs {
		ships[i] = ShipPlacement{Name: spec.Name, Size: spec.Size}
	}
	return ships
}

func allShipsPlaced(ships []ShipPlacement) bool {
	for _, ship := range ships {
		if !ship.Placed {
			return false
		}
	}
	return true
}
