package battleship

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

type GameManager interface {
	CreateGame(opts ...GameOption) (*Game, error)
	FetchGame(gameUuid string) (*Game, error)
	TerminateGame(gameUuid string)
	CountGames() int
}

type BattleshipGameManager struct {
	games       map[string]*Game
	defaultOpts []GameOption
	mu          sync.RWMutex
}

var _ GameManager = (*BattleshipGameManager)(nil)

// Options given here apply to every game created, before the
// options passed to CreateGame.
func NewBattleshipGameManager(defaultOpts ...GameOption) *BattleshipGameManager {
	return &BattleshipGameManager{
		games:       make(map[string]*Game, 10),
		defaultOpts: defaultOpts,
	}
}

func (bgm *BattleshipGameManager) CreateGame(opts ...GameOption) (*Game, error) {
	allOpts := make([]GameOption, 0, len(bgm.defaultOpts)+len(opts))
	allOpts = append(allOpts, bgm.defaultOpts...)
	allOpts = append(allOpts, opts...)

	game, err := NewGame(allOpts...)
	if err != nil {
		return nil, err
	}

	bgm.mu.Lock()
	bgm.games[game.Uuid()] = game
	bgm.mu.Unlock()

	log.Info().Msgf("game created: %s", game.Uuid())
	return game, nil
}

func (bgm *BattleshipGameManager) FetchGame(gameUuid string) (*Game, error) {
	bgm.mu.RLock()
	game, prs := bgm.games[gameUuid]
	bgm.mu.RUnlock()
	if !prs {
		return nil, cerr.ErrGameNotExists(gameUuid)
	}

	return game, nil
}

// TerminateGame closes the game, cancelling any pending bot
// move, and forgets it.
func (bgm *BattleshipGameManager) TerminateGame(gameUuid string) {
	bgm.mu.Lock()
	game, prs := bgm.games[gameUuid]
	delete(bgm.games, gameUuid)
	bgm.mu.Unlock()

	if prs {
		game.Close()
		log.Info().Msgf("game terminated: %s", gameUuid)
	}
}

func (bgm *BattleshipGameManager) CountGames() int {
	bgm.mu.RLock()
	defer bgm.mu.RUnlock()
	return len(bgm.games)
}

// Games outliving maxAge are terminated unless inUse says a
// live session still holds them. Sessions terminate their own
// game; this catches the ones that never did.
func (bgm *BattleshipGameManager) CleanupPeriodically(interval, maxAge time.Duration, inUse func(gameUuid string) bool, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		bgm.mu.RLock()
		stale := make([]string, 0, 10)
		for gameUuid, game := range bgm.games {
			if time.Since(game.CreatedAt()) > maxAge {
				stale = append(stale, gameUuid)
			}
		}
		bgm.mu.RUnlock()

		for _, gameUuid := range stale {
			if inUse != nil && inUse(gameUuid) {
				continue
			}
			bgm.TerminateGame(gameUuid)
		}
	}
}
