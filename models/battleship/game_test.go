package battleship

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type layoutEntry struct {
	name        string
	row, col    int
	orientation Orientation
}

// a valid layout of the standard fleet, Patrol Boat first
var testLayout = []layoutEntry{
	{name: ShipPatrolBoat, row: 0, col: 0},
	{name: ShipSuperCarrier, row: 2, col: 0},
	{name: ShipCarrier, row: 4, col: 0},
	{name: ShipBattleship, row: 6, col: 0},
	{name: ShipCruiser, row: 8, col: 0},
	{name: ShipSubmarine, row: 8, col: 4},
	{name: ShipDestroyer, row: 0, col: 3},
}

// scriptedStrategy shoots at the given cells in order.
type scriptedStrategy struct {
	targets []Coordinates
	next    int
}

func (s *scriptedStrategy) ChooseTarget(board Board) (Coordinates, bool) {
	for s.next < len(s.targets) {
		target := s.targets[s.next]
		s.next++
		if !board[target.Row][target.Col].IsResolved() {
			return target, true
		}
	}
	return Coordinates{}, false
}

func newTestGame(t *testing.T, opts ...GameOption) *Game {
	t.Helper()
	game, err := NewGame(append([]GameOption{WithSeed(1)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(game.Close)
	return game
}

func placeFleet(t *testing.T, game *Game, layout []layoutEntry) {
	t.Helper()
	for _, entry := range layout {
		require.True(t, game.SelectShip(entry.name), entry.name)
		require.True(t, game.SetOrientation(entry.orientation))
		require.True(t, game.PlaceShip(entry.row, entry.col), entry.name)
	}
}

// opponentCells splits the opponent board into ship and water cells.
func opponentCells(game *Game) (ships, water []Coordinates) {
	game.mu.Lock()
	defer game.mu.Unlock()

	for r := range game.opponentBoard {
		for c, cell := range game.opponentBoard[r] {
			if cell.HasShip {
				ships = append(ships, NewCoordinates(r, c))
			} else {
				water = append(water, NewCoordinates(r, c))
			}
		}
	}
	return ships, water
}

func playerShipCells(layout []layoutEntry) []Coordinates {
	specs := make(map[string]int)
	for _, spec := range StandardFleet() {
		specs[spec.Name] = spec.Size
	}

	cells := make([]Coordinates, 0, 24)
	for _, entry := range layout {
		cells = append(cells, Footprint(entry.row, entry.col, specs[entry.name], entry.orientation)...)
	}
	return cells
}

func TestNewGame(t *testing.T) {
	game := newTestGame(t)

	snapshot := game.Snapshot()
	require.Len(t, snapshot.Uuid, 6)
	require.Equal(t, PhasePlacement, snapshot.Phase)
	require.Equal(t, GameModeBot, snapshot.Mode)
	require.True(t, snapshot.PlayerTurn)
	require.Empty(t, snapshot.Message)
	require.Empty(t, snapshot.SelectedShip)
	require.Equal(t, OrientationHorizontal, snapshot.Orientation)
	require.Len(t, snapshot.Ships, 7)
	for _, ship := range snapshot.Ships {
		require.False(t, ship.Placed)
	}
	require.Zero(t, snapshot.PlayerDecksLeft)
	require.Equal(t, 24, snapshot.OpponentDecksLeft)
}

func TestPlacePatrolBoatThenFleet(t *testing.T) {
	game := newTestGame(t)
	events := game.Events().Subscribe()

	require.True(t, game.SelectShip(ShipPatrolBoat))
	require.True(t, game.PlaceShip(0, 0))

	snapshot := game.Snapshot()
	require.True(t, snapshot.PlayerBoard[0][0].HasShip)
	require.True(t, snapshot.PlayerBoard[0][0].IsPlaced)
	require.Equal(t, 1, snapshot.PlayerBoard.ShipCells())
	for _, ship := range snapshot.Ships {
		require.Equal(t, ship.Name == ShipPatrolBoat, ship.Placed, ship.Name)
	}
	require.Empty(t, snapshot.SelectedShip)
	require.Equal(t, PhasePlacement, snapshot.Phase)

	placeFleet(t, game, testLayout[1:])

	require.Equal(t, PhaseAttack, game.Phase())
	require.Equal(t, MessageAttackStarted, game.Message())
	require.Equal(t, 24, game.RemainingDecks(SidePlayer))
	require.Equal(t, EventAttackStarted, <-events)
}

func TestPlaceShipFootprint(t *testing.T) {
	game := newTestGame(t)

	require.True(t, game.SelectShip(ShipBattleship))
	require.True(t, game.SetOrientation(OrientationVertical))
	require.True(t, game.PlaceShip(3, 7))

	board := game.Snapshot().PlayerBoard
	require.Equal(t, 4, board.ShipCells())
	for _, c := range Footprint(3, 7, 4, OrientationVertical) {
		require.True(t, board[c.Row][c.Col].HasShip)
	}
}

func TestPlacementNoOps(t *testing.T) {
	game := newTestGame(t)

	// nothing selected
	require.False(t, game.PlaceShip(0, 0))
	require.Zero(t, game.Snapshot().PlayerBoard.ShipCells())

	require.False(t, game.SelectShip("Dinghy"))

	require.True(t, game.SelectShip(ShipDestroyer))
	require.False(t, game.PlaceShip(0, 9)) // off the board
	require.False(t, game.PlaceShip(-1, 0))
	require.True(t, game.PlaceShip(0, 0))

	// placed ships cannot be selected again
	require.False(t, game.SelectShip(ShipDestroyer))
	require.False(t, game.PlaceShip(5, 5))

	// touching the destroyer
	require.True(t, game.SelectShip(ShipPatrolBoat))
	require.False(t, game.PlaceShip(1, 2))
	require.Equal(t, ShipPatrolBoat, game.Snapshot().SelectedShip)
	require.Equal(t, 2, game.Snapshot().PlayerBoard.ShipCells())

	require.False(t, game.SetOrientation(Orientation(7)))
	require.Equal(t, OrientationVertical, game.ToggleOrientation())
	require.Equal(t, OrientationHorizontal, game.ToggleOrientation())

	// attacks are not allowed while placing
	require.False(t, game.Attack(0, 0))
}

func TestAttackHitThenOpponentMoves(t *testing.T) {
	game := newTestGame(t, WithBotDelay(20*time.Millisecond))
	placeFleet(t, game, testLayout)
	events := game.Events().Subscribe()

	ships, _ := opponentCells(game)
	target := ships[0]

	require.True(t, game.Attack(target.Row, target.Col))
	snapshot := game.Snapshot()
	require.True(t, snapshot.OpponentBoard[target.Row][target.Col].IsHit)
	require.Equal(t, MessageHit, snapshot.Message)
	require.False(t, snapshot.PlayerTurn)
	require.Equal(t, 23, snapshot.OpponentDecksLeft)

	// no second shot before the opponent answered
	require.False(t, game.Attack(ships[1].Row, ships[1].Col))

	require.Eventually(t, game.PlayerTurn, time.Second, 5*time.Millisecond)
	require.Equal(t, EventOpponentMoved, <-events)
	require.False(t, game.OpponentMovePending())

	snapshot = game.Snapshot()
	require.Contains(t, []string{MessageOpponentHit, MessageOpponentMissed}, snapshot.Message)
	require.Len(t, snapshot.PlayerBoard.Unresolved(), BoardSize*BoardSize-1)
}

func TestAttackMissMessage(t *testing.T) {
	game := newTestGame(t, WithBotDelay(time.Hour))
	placeFleet(t, game, testLayout)

	_, water := opponentCells(game)
	require.True(t, game.Attack(water[0].Row, water[0].Col))
	require.Equal(t, MessageMiss, game.Message())
	require.True(t, game.OpponentMovePending())
}

func TestAttackResolvedCellIsNoOp(t *testing.T) {
	game := newTestGame(t, WithBotDelay(10*time.Millisecond))
	placeFleet(t, game, testLayout)

	_, water := opponentCells(game)
	require.True(t, game.Attack(water[0].Row, water[0].Col))
	require.Eventually(t, game.PlayerTurn, time.Second, 5*time.Millisecond)

	before := game.Snapshot()
	require.False(t, game.Attack(water[0].Row, water[0].Col))
	require.False(t, game.Attack(BoardSize, 0))
	after := game.Snapshot()

	require.Equal(t, before.OpponentBoard, after.OpponentBoard)
	require.Equal(t, before.PlayerTurn, after.PlayerTurn)
	require.Equal(t, before.Message, after.Message)
}

func TestPlayerLosesWhenFleetIsSunk(t *testing.T) {
	strategy := &scriptedStrategy{targets: playerShipCells(testLayout)}
	game := newTestGame(t, WithBotDelay(0), WithStrategy(strategy))
	placeFleet(t, game, testLayout)
	events := game.Events().Subscribe()

	var last Event
	drain := func() {
		for len(events) > 0 {
			last = <-events
		}
	}

	_, water := opponentCells(game)
	for _, target := range water {
		if game.Phase() == PhaseGameOver {
			break
		}
		require.True(t, game.Attack(target.Row, target.Col))
		require.Eventually(t, func() bool {
			return game.PlayerTurn() || game.Phase() == PhaseGameOver
		}, time.Second, time.Millisecond)
		drain()
	}

	require.Equal(t, PhaseGameOver, game.Phase())
	require.Equal(t, MessageLoss, game.Message())
	require.Zero(t, game.RemainingDecks(SidePlayer))
	require.Equal(t, 24, game.RemainingDecks(SideOpponent))
	require.False(t, game.OpponentMovePending())

	drain()
	require.Equal(t, EventGameLost, last)

	// nothing is playable after the end
	require.False(t, game.Attack(water[len(water)-1].Row, water[len(water)-1].Col))
}

func TestPlayerWins(t *testing.T) {
	occupied := make(map[Coordinates]bool)
	for _, c := range playerShipCells(testLayout) {
		occupied[c] = true
	}
	misses := make([]Coordinates, 0, BoardSize*BoardSize)
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if !occupied[NewCoordinates(r, c)] {
				misses = append(misses, NewCoordinates(r, c))
			}
		}
	}

	game := newTestGame(t, WithBotDelay(0), WithStrategy(&scriptedStrategy{targets: misses}))
	placeFleet(t, game, testLayout)

	ships, _ := opponentCells(game)
	for i, target := range ships {
		require.True(t, game.Attack(target.Row, target.Col), "shot %d", i)
		if i == len(ships)-1 {
			break
		}
		require.Eventually(t, game.PlayerTurn, time.Second, time.Millisecond)
	}

	require.Equal(t, PhaseGameOver, game.Phase())
	require.Equal(t, MessageWin, game.Message())
	require.Zero(t, game.RemainingDecks(SideOpponent))
	require.Equal(t, 24, game.RemainingDecks(SidePlayer))
	// no bot move after the winning shot
	require.False(t, game.OpponentMovePending())
	require.False(t, game.PlayerTurn())
}

func TestLossIsCheckedBeforeWin(t *testing.T) {
	game := newTestGame(t, WithFleet([]ShipSpec{{Name: ShipPatrolBoat, Size: 1}}))
	placeFleet(t, game, []layoutEntry{{name: ShipPatrolBoat, row: 5, col: 5}})

	game.mu.Lock()
	defer game.mu.Unlock()

	game.playerBoard.MarkShot(5, 5, true)
	for r := range game.opponentBoard {
		for c := range game.opponentBoard[r] {
			if game.opponentBoard[r][c].HasShip {
				game.opponentBoard.MarkShot(r, c, true)
			}
		}
	}

	require.True(t, game.checkGameOverLocked())
	require.Equal(t, MessageLoss, game.message)
	require.Equal(t, PhaseGameOver, game.phase)
}

func TestResetCancelsPendingMove(t *testing.T) {
	game := newTestGame(t, WithBotDelay(time.Hour))
	placeFleet(t, game, testLayout)

	_, water := opponentCells(game)
	require.True(t, game.Attack(water[0].Row, water[0].Col))
	require.True(t, game.OpponentMovePending())

	// a callback that fired just before the reset must not land
	game.mu.Lock()
	token := game.opponentMove.Schedule(time.Hour, game.runOpponentMove)
	game.mu.Unlock()

	require.NoError(t, game.Reset())
	require.False(t, game.OpponentMovePending())
	game.runOpponentMove(token)

	snapshot := game.Snapshot()
	require.Equal(t, PhasePlacement, snapshot.Phase)
	require.True(t, snapshot.PlayerTurn)
	require.Empty(t, snapshot.Message)
	require.Empty(t, snapshot.SelectedShip)
	require.Equal(t, OrientationHorizontal, snapshot.Orientation)
	require.Zero(t, snapshot.PlayerBoard.ShipCells())
	require.Len(t, snapshot.PlayerBoard.Unresolved(), BoardSize*BoardSize)
	require.Len(t, snapshot.OpponentBoard.Unresolved(), BoardSize*BoardSize)
	require.Equal(t, 24, snapshot.OpponentDecksLeft)
	for _, ship := range snapshot.Ships {
		require.False(t, ship.Placed)
	}
}

func TestCloseCancelsPendingMove(t *testing.T) {
	game, err := NewGame(WithSeed(2), WithBotDelay(time.Hour))
	require.NoError(t, err)
	placeFleet(t, game, testLayout)
	events := game.Events().Subscribe()

	_, water := opponentCells(game)
	require.True(t, game.Attack(water[0].Row, water[0].Col))
	game.Close()

	require.False(t, game.OpponentMovePending())
	_, open := <-events
	require.False(t, open)
}

func TestHumanModePass(t *testing.T) {
	game := newTestGame(t, WithGameMode(GameModeHuman))
	placeFleet(t, game, testLayout)

	ships, water := opponentCells(game)
	require.False(t, game.Pass())

	require.True(t, game.Attack(ships[0].Row, ships[0].Col))
	require.Equal(t, MessageHitPass, game.Message())
	require.False(t, game.PlayerTurn())
	require.True(t, game.WaitingForPass())
	require.False(t, game.OpponentMovePending())
	require.False(t, game.Attack(water[0].Row, water[0].Col))

	require.True(t, game.Pass())
	require.Equal(t, MessageYourTurn, game.Message())
	require.True(t, game.PlayerTurn())
	require.False(t, game.WaitingForPass())
	require.False(t, game.Pass())

	require.True(t, game.Attack(water[0].Row, water[0].Col))
	require.Equal(t, MessageMissPass, game.Message())
}

func TestPassIgnoredInBotMode(t *testing.T) {
	game := newTestGame(t, WithBotDelay(time.Hour))
	placeFleet(t, game, testLayout)

	_, water := opponentCells(game)
	require.True(t, game.Attack(water[0].Row, water[0].Col))
	require.False(t, game.Pass())
	require.False(t, game.PlayerTurn())
}

func TestSetModeResets(t *testing.T) {
	game := newTestGame(t)
	placeFleet(t, game, testLayout[:3])

	require.False(t, game.SetMode(GameMode(9)))
	require.Equal(t, 12, game.Snapshot().PlayerBoard.ShipCells())

	require.True(t, game.SetMode(GameModeHuman))
	snapshot := game.Snapshot()
	require.Equal(t, GameModeHuman, snapshot.Mode)
	require.Equal(t, PhasePlacement, snapshot.Phase)
	require.Zero(t, snapshot.PlayerBoard.ShipCells())
}

func TestOpponentBoardChangesOnReset(t *testing.T) {
	game := newTestGame(t)
	before := game.Snapshot().OpponentBoard

	require.NoError(t, game.Reset())
	after := game.Snapshot().OpponentBoard

	require.Equal(t, 24, after.ShipCells())
	require.NotEqual(t, before, after)
}
