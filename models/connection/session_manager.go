package connection

import (
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const (
	defaultCleanupInterval time.Duration = time.Minute * 20
	defaultGracePeriod     time.Duration = time.Minute * 2
)

type SessionManager interface {
	GenerateNewSession(conn *websocket.Conn) *Session
	CleanupPeriodically(stop <-chan struct{})

	FindSession(sessionId string) (*Session, error)
	TerminateSession(sessionId string)
	ReconnectSession(sessionId string, conn *websocket.Conn) error
	HandleAbnormalClosureSession(session *Session) error
	WriteToSessionConn(session *Session, msg interface{}) error
	ReadFromSessionConn(session *Session) (int, []byte, error)
	CountSessions() int
	HoldsGame(gameUuid string) bool
}

type BattleshipSessionManager struct {
	cleanupInterval time.Duration
	gracePeriod     time.Duration
	sessions        map[string]*Session
	onTerminate     func(session *Session)
	mu              sync.RWMutex
}

type SessionManagerOption func(*BattleshipSessionManager)

func WithCleanupInterval(interval time.Duration) SessionManagerOption {
	return func(bsm *BattleshipSessionManager) {
		if interval > 0 {
			bsm.cleanupInterval = interval
		}
	}
}

// How long an abnormally closed session waits for the
// client to come back with its session id.
func WithGracePeriod(gracePeriod time.Duration) SessionManagerOption {
	return func(bsm *BattleshipSessionManager) {
		if gracePeriod > 0 {
			bsm.gracePeriod = gracePeriod
		}
	}
}

// Called for every session removed, by the request loop or
// by the periodic cleanup.
func WithOnTerminate(fn func(session *Session)) SessionManagerOption {
	return func(bsm *BattleshipSessionManager) {
		bsm.onTerminate = fn
	}
}

func NewBattleshipSessionManager(opts ...SessionManagerOption) *BattleshipSessionManager {
	initMapSize := 10

	bsm := &BattleshipSessionManager{
		sessions:        make(map[string]*Session, initMapSize),
		cleanupInterval: defaultCleanupInterval,
		gracePeriod:     defaultGracePeriod,
	}
	for _, opt := range opts {
		opt(bsm)
	}
	return bsm
}

var _ SessionManager = (*BattleshipSessionManager)(nil)

func (bsm *BattleshipSessionManager) GenerateNewSession(conn *websocket.Conn) *Session {
	sessionId := base64.RawURLEncoding.EncodeToString([]byte(uuid.New().String()))
	session := NewSession(sessionId, conn)

	bsm.mu.Lock()
	bsm.sessions[sessionId] = session
	bsm.mu.Unlock()

	return session
}

func (bsm *BattleshipSessionManager) FindSession(sessionId string) (*Session, error) {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()

	session, prs := bsm.sessions[sessionId]
	if !prs {
		return nil, cerr.ErrSessionNotFound(sessionId)
	}

	if session == nil {
		return nil, cerr.ErrSessionIsNil(sessionId)
	}

	return session, nil
}

func (bsm *BattleshipSessionManager) CountSessions() int {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()
	return len(bsm.sessions)
}

func (bsm *BattleshipSessionManager) TerminateSession(sessionId string) {
	bsm.mu.Lock()
	session, prs := bsm.sessions[sessionId]
	delete(bsm.sessions, sessionId)
	bsm.mu.Unlock()

	if prs && bsm.onTerminate != nil {
		bsm.onTerminate(session)
	}
	if prs {
		log.Info().Msgf("session terminated: %s", sessionId)
	}
}

func (bsm *BattleshipSessionManager) ReconnectSession(sessionId string, conn *websocket.Conn) error {
	session, err := bsm.FindSession(sessionId)
	if err != nil {
		return err
	}
	return session.reconnectionAfterAbnormalClosure(conn)
}

// HoldsGame reports whether a live session owns the game.
func (bsm *BattleshipSessionManager) HoldsGame(gameUuid string) bool {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()

	for _, session := range bsm.sessions {
		if game := session.Game(); game != nil && game.Uuid() == gameUuid {
			return true
		}
	}
	return false
}

// To ensure that there is no dangling connections,
// server session manager marks the sessions idle for more
// than cleanupInterval as stale and deletes them.
func (bsm *BattleshipSessionManager) CleanupPeriodically(stop <-chan struct{}) {
	ticker := time.NewTicker(bsm.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		bsm.mu.RLock()
		toDelete := make([]string, 0, 10)
		for id, session := range bsm.sessions {
			if session.idleFor() > bsm.cleanupInterval {
				toDelete = append(toDelete, id)
			}
		}
		bsm.mu.RUnlock()

		log.Info().Msgf("clean up sessions: %d stale", len(toDelete))
		for _, id := range toDelete {
			if session, err := bsm.FindSession(id); err == nil && session.Conn() != nil {
				_ = session.Conn().Close()
			}
			bsm.TerminateSession(id)
		}
	}
}

// This function takes care of abnormal closures. The client
// gets gracePeriod to reconnect with its session id before
// the session is given up.
func (bsm *BattleshipSessionManager) HandleAbnormalClosureSession(s *Session) error {
	if s.Game() == nil {
		return NewConnErr(ConnLoopBreak).AddDesc("no game in session; nothing to wait for")
	}

	reconnected := s.awaitReconnection()
	defer s.stopAwaitingReconnection()

	timer := time.NewTimer(bsm.gracePeriod)
	defer timer.Stop()

	select {
	case <-timer.C:
		log.Info().Msgf("grace period over for session: %s", s.id)
		return NewConnErr(ConnLoopBreak).AddDesc("grace period is over for session: " + s.id)

	case <-reconnected:
		log.Info().Msgf("client reconnected, session: %s", s.id)
		return nil
	}
}

func (bsm *BattleshipSessionManager) WriteToSessionConn(session *Session, msg interface{}) error {
	err := session.writeToConnWithRetry(msg)
	if err == nil {
		return nil
	}

	var connErr ConnErr
	if !errors.As(err, &connErr) {
		return err
	}

	switch connErr.Code() {
	case ConnLoopAbnormalClosureRetry:
		if err := bsm.HandleAbnormalClosureSession(session); err != nil {
			return connErr
		}
		// the message is lost with the old connection; the
		// client asks for the state after reconnecting
		return nil

	default:
		return connErr
	}
}

func (bsm *BattleshipSessionManager) ReadFromSessionConn(session *Session) (int, []byte, error) {
	var retries uint8

	for {
		messageType, payload, err := session.Conn().ReadMessage()
		if err == nil {
			session.touch()
			return messageType, payload, nil
		}

		switch session.handleReadFromConnErr(err, retries) {
		case ConnLoopContinue:
			retries++
			continue

		case ConnLoopAbnormalClosureRetry:
			if err := bsm.HandleAbnormalClosureSession(session); err != nil {
				return -1, []byte{}, err
			}
			retries = 0

		default:
			return -1, []byte{}, err
		}
	}
}
