package battleship

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/saeidalz13/battleship-solo/pkg/realtime"
)

type GamePhase uint8

const (
	PhasePlacement GamePhase = iota
	PhaseAttack
	PhaseGameOver
)

func (p GamePhase) String() string {
	switch p {
	case PhaseAttack:
		return "attack"
	case PhaseGameOver:
		return "gameover"
	default:
		return "placement"
	}
}

type GameMode uint8

const (
	GameModeBot GameMode = iota
	GameModeHuman
)

func (m GameMode) IsValid() bool {
	return m == GameModeBot || m == GameModeHuman
}

type Side uint8

const (
	SidePlayer Side = iota
	SideOpponent
)

const (
	MessageAttackStarted  = "Attack the enemy board!"
	MessageHit            = "Hit!"
	MessageMiss           = "Miss!"
	MessageHitPass        = "Hit! Now let your opponent play."
	MessageMissPass       = "Miss! Now let your opponent play."
	MessageOpponentHit    = "Opponent hit your ship!"
	MessageOpponentMissed = "Opponent missed!"
	MessageYourTurn       = "Your turn!"
	MessageWin            = "You win!"
	MessageLoss           = "You lost!"
)

const (
	DefaultBotMoveDelay time.Duration = time.Second

	noShipSelected int = -1
)

// Events are published for state changes the caller of an
// operation did not trigger directly, plus phase changes.
type Event uint8

const (
	EventAttackStarted Event = iota
	EventOpponentMoved
	EventGameWon
	EventGameLost
	EventReset
)

type GameOption func(*Game)

func WithGameMode(mode GameMode) GameOption {
	return func(g *Game) {
		if mode.IsValid() {
			g.mode = mode
		}
	}
}

// Delay between the player's shot and the bot's answer.
func WithBotDelay(delay time.Duration) GameOption {
	return func(g *Game) {
		if delay >= 0 {
			g.botDelay = delay
		}
	}
}

// WithSeed makes fleet generation and bot targeting reproducible.
func WithSeed(seed uint64) GameOption {
	return func(g *Game) {
		g.rnd = rand.New(rand.NewSource(seed))
	}
}

func WithStrategy(strategy Strategy) GameOption {
	return func(g *Game) {
		if strategy != nil {
			g.strategy = strategy
		}
	}
}

func WithFleet(specs []ShipSpec) GameOption {
	return func(g *Game) {
		if len(specs) > 0 {
			g.specs = specs
		}
	}
}

// Game is one player's session: their board, the opponent's
// board and everything needed to take turns on them. All
// operations are safe for concurrent use; the ones coming from
// the UI are silently ignored when they are not valid right now.
type Game struct {
	mu sync.Mutex

	uuid      string
	createdAt time.Time

	mode           GameMode
	phase          GamePhase
	playerBoard    Board
	opponentBoard  Board
	ships          []ShipPlacement
	selected       int
	orientation    Orientation
	playerTurn     bool
	waitingForPass bool
	message        string

	specs    []ShipSpec
	rnd      *rand.Rand
	fleet    *FleetGenerator
	strategy Strategy

	botDelay     time.Duration
	opponentMove realtime.DelayedTask
	events       *realtime.Broadcaster[Event]
}

func NewGame(opts ...GameOption) (*Game, error) {
	g := &Game{
		uuid:      uuid.NewString()[:6],
		createdAt: time.Now(),
		mode:      GameModeBot,
		specs:     StandardFleet(),
		botDelay:  DefaultBotMoveDelay,
		events:    realtime.NewBroadcaster[Event](),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.rnd == nil {
		g.rnd = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	g.fleet = NewFleetGenerator(g.rnd)
	if g.strategy == nil {
		g.strategy = NewRandomStrategy(g.rnd)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.resetLocked(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) Uuid() string {
	return g.uuid
}

func (g *Game) CreatedAt() time.Time {
	return g.createdAt
}

// Events returns the broadcaster game events are published on.
func (g *Game) Events() *realtime.Broadcaster[Event] {
	return g.events
}

// SelectShip makes the named ship the next one to place.
func (g *Game) SelectShip(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhasePlacement {
		return false
	}
	for i, ship := range g.ships {
		if ship.Name != name {
			continue
		}
		if ship.Placed {
			return false
		}
		g.selected = i
		return true
	}
	return false
}

func (g *Game) SetOrientation(orientation Orientation) bool {
	if !orientation.IsValid() {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.orientation = orientation
	return true
}

func (g *Game) ToggleOrientation() Orientation {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.orientation == OrientationHorizontal {
		g.orientation = OrientationVertical
	} else {
		g.orientation = OrientationHorizontal
	}
	return g.orientation
}

// PlaceShip puts the selected ship on the player board with its
// first deck at (row, col). Once the last ship is down the game
// moves on to the attack phase.
func (g *Game) PlaceShip(row, col int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhasePlacement || g.selected == noShipSelected {
		return false
	}
	ship := &g.ships[g.selected]
	if ship.Placed {
		return false
	}
	if !CanPlace(g.playerBoard, row, col, ship.Size, g.orientation) {
		return false
	}

	g.playerBoard.MarkShip(Footprint(row, col, ship.Size, g.orientation))
	ship.Placed = true
	g.selected = noShipSelected

	if allShipsPlaced(g.ships) {
		g.phase = PhaseAttack
		g.message = MessageAttackStarted
		g.events.Publish(EventAttackStarted)
	}
	return true
}

// Attack shoots at the opponent board. Against the bot, the
// answer is scheduled right away; against a human the turn
// only comes back after Pass.
func (g *Game) Attack(row, col int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseAttack || !g.playerTurn || g.waitingForPass {
		return false
	}
	if !g.opponentBoard.InBounds(row, col) || g.opponentBoard[row][col].IsResolved() {
		return false
	}

	hit := g.opponentBoard[row][col].HasShip
	g.opponentBoard.MarkShot(row, col, hit)
	g.playerTurn = false

	switch g.mode {
	case GameModeHuman:
		if hit {
			g.message = MessageHitPass
		} else {
			g.message = MessageMissPass
		}
	default:
		if hit {
			g.message = MessageHit
		} else {
			g.message = MessageMiss
		}
	}

	if g.checkGameOverLocked() {
		return true
	}

	if g.mode == GameModeHuman {
		g.waitingForPass = true
	} else {
		g.opponentMove.Schedule(g.botDelay, g.runOpponentMove)
	}
	return true
}

// Pass hands the turn back in human mode.
func (g *Game) Pass() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.mode != GameModeHuman || !g.waitingForPass || g.phase != PhaseAttack {
		return false
	}
	g.playerTurn = true
	g.waitingForPass = false
	g.message = MessageYourTurn
	return true
}

// Reset starts over with fresh boards and a new opponent fleet.
// A pending bot move is cancelled and can no longer land.
func (g *Game) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.resetLocked(); err != nil {
		return err
	}
	g.events.Publish(EventReset)
	return nil
}

// SetMode switches opponent behavior and restarts the game.
func (g *Game) SetMode(mode GameMode) bool {
	if !mode.IsValid() {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	previous := g.mode
	g.mode = mode
	if err := g.resetLocked(); err != nil {
		log.Error().Err(err).Str("game", g.uuid).Msg("failed to reset game on mode switch")
		g.mode = previous
		return false
	}
	g.events.Publish(EventReset)
	return true
}

// Close tears the game down. No bot move fires afterwards.
func (g *Game) Close() {
	g.mu.Lock()
	g.opponentMove.Cancel()
	g.mu.Unlock()

	g.events.Close()
}

// OpponentMovePending reports whether a bot move is scheduled.
func (g *Game) OpponentMovePending() bool {
	return g.opponentMove.Pending()
}

func (g *Game) runOpponentMove(token uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	// cancelled by reset/close/game over after the timer fired
	if !g.opponentMove.Valid(token) {
		return
	}
	defer g.opponentMove.Done(token)

	if g.phase != PhaseAttack || g.playerTurn || g.mode != GameModeBot {
		return
	}

	target, ok := g.strategy.ChooseTarget(g.playerBoard)
	if !ok {
		return
	}
	hit := g.playerBoard[target.Row][target.Col].HasShip
	if !g.playerBoard.MarkShot(target.Row, target.Col, hit) {
		log.Warn().Str("game", g.uuid).Msgf("opponent strategy picked a resolved cell: %+v", target)
		return
	}

	if hit {
		g.message = MessageOpponentHit
	} else {
		g.message = MessageOpponentMissed
	}
	g.playerTurn = true

	if !g.checkGameOverLocked() {
		g.events.Publish(EventOpponentMoved)
	}
}

// The player's board is checked first, so a step that sinks
// both fleets counts as a loss.
func (g *Game) checkGameOverLocked() bool {
	if g.phase != PhaseAttack {
		return false
	}

	switch {
	case g.playerBoard.RemainingDecks() == 0:
		g.message = MessageLoss
		g.finishLocked(EventGameLost)
		return true

	case g.opponentBoard.RemainingDecks() == 0:
		g.message = MessageWin
		g.finishLocked(EventGameWon)
		return true
	}
	return false
}

func (g *Game) finishLocked(event Event) {
	g.phase = PhaseGameOver
	g.waitingForPass = false
	g.opponentMove.Cancel()
	g.events.Publish(event)
}

func (g *Game) resetLocked() error {
	g.opponentMove.Cancel()

	opponentBoard, err := g.fleet.Generate(g.specs)
	if err != nil {
		return err
	}

	g.phase = PhasePlacement
	g.playerBoard = NewBoard()
	g.opponentBoard = opponentBoard
	g.ships = NewShipPlacements(g.specs)
	g.selected = noShipSelected
	g.orientation = OrientationHorizontal
	g.playerTurn = true
	g.waitingForPass = false
	g.message = ""
	return nil
}

func (g *Game) Phase() GamePhase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

func (g *Game) Mode() GameMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

func (g *Game) PlayerTurn() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerTurn
}

func (g *Game) WaitingForPass() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.waitingForPass
}

func (g *Game) Message() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.message
}

func (g *Game) RemainingDecks(side Side) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if side == SideOpponent {
		return g.opponentBoard.RemainingDecks()
	}
	return g.playerBoard.RemainingDecks()
}

// Snapshot is a consistent copy of the game state. Boards are
// unmasked; hide the opponent's ships before showing them.
type Snapshot struct {
	Uuid              string
	Mode              GameMode
	Phase             GamePhase
	PlayerTurn        bool
	WaitingForPass    bool
	Message           string
	Orientation       Orientation
	SelectedShip      string
	Ships             []ShipPlacement
	PlayerBoard       Board
	OpponentBoard     Board
	PlayerDecksLeft   int
	OpponentDecksLeft int
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	selected := ""
	if g.selected != noShipSelected {
		selected = g.ships[g.selected].Name
	}
	ships := make([]ShipPlacement, len(g.ships))
	copy(ships, g.ships)

	return Snapshot{
		Uuid:              g.uuid,
		Mode:              g.mode,
		Phase:             g.phase,
		PlayerTurn:        g.playerTurn,
		WaitingForPass:    g.waitingForPass,
		Message:           g.message,
		Orientation:       g.orientation,
		SelectedShip:      selected,
		Ships:             ships,
		PlayerBoard:       g.playerBoard.Copy(),
		OpponentBoard:     g.opponentBoard.Copy(),
		PlayerDecksLeft:   g.playerBoard.RemainingDecks(),
		OpponentDecksLeft: g.opponentBoard.RemainingDecks(),
	}
}
