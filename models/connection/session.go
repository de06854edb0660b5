package connection

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

const (
	maxWriteWsRetries uint8         = 2
	backOffFactor     uint8         = 2
	writeWait         time.Duration = time.Second * 10
)

// What the session loop does after a failed read or write
const (
	ConnLoopBreak uint8 = iota
	ConnLoopRetry
	ConnLoopAbnormalClosureRetry
	ConnLoopContinue
)

type ConnErr struct {
	code uint8
	desc string
}

func NewConnErr(code uint8) ConnErr {
	return ConnErr{code: code}
}

func (c ConnErr) AddDesc(desc string) ConnErr {
	c.desc = desc
	return c
}

func (c ConnErr) Error() string {
	return fmt.Sprintf("connection error - code: %d\tdesc: %s", c.code, c.desc)
}

func (c ConnErr) Code() uint8 {
	return c.code
}

// Session is one browser tab. It owns at most one game at a
// time; the game never outlives it.
type Session struct {
	id                     string
	conn                   *websocket.Conn
	game                   *mb.Game
	reconnectionSignalChan chan bool
	awaitingReconnect      bool

	// unix nanos of the last successful read or write
	lastActive atomic.Int64

	// guards conn, game and the reconnection fields; held for
	// each write so the request loop and event pushes never
	// interleave frames
	mu sync.Mutex
}

func NewSession(id string, conn *websocket.Conn) *Session {
	s := &Session{
		id:                     id,
		conn:                   conn,
		reconnectionSignalChan: make(chan bool),
	}
	s.touch()
	return s
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// How long since the client last talked to us or we to it.
func (s *Session) idleFor() time.Duration {
	return time.Since(time.Unix(0, s.lastActive.Load()))
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Conn() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *Session) Game() *mb.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game
}

func (s *Session) SetGame(game *mb.Game) {
	s.mu.Lock()
	s.game = game
	s.mu.Unlock()
}

func (s *Session) remoteAddr() string {
	conn := s.Conn()
	if conn == nil {
		return ""
	}
	return conn.RemoteAddr().String()
}

func (s *Session) onConnErr(err error) uint8 {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		log.Warn().Err(err).Msg("timeout error")
		return ConnLoopRetry
	}

	if websocket.IsCloseError(err, websocket.CloseTryAgainLater) {
		log.Warn().Err(err).Msg("high server load/traffic error")
		return ConnLoopRetry
	}

	// Happens when a mobile browser puts the tab to background
	if websocket.IsCloseError(err, websocket.CloseAbnormalClosure) {
		log.Warn().Err(err).Msg("abnormal closure error")
		return ConnLoopAbnormalClosureRetry
	}

	if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
		log.Info().Err(err).Msg("close error")
		return ConnLoopBreak
	}

	if websocket.IsCloseError(err, websocket.CloseProtocolError, websocket.CloseInternalServerErr, websocket.CloseTLSHandshake, websocket.CloseMandatoryExtension) {
		log.Error().Err(err).Msg("critical error")
		return ConnLoopBreak
	}

	/*
		The client is most likely not ours (binary frames, bad
		UTF-8, oversized messages). Break rather than keep parsing.
	*/
	if websocket.IsCloseError(err, websocket.CloseInvalidFramePayloadData, websocket.CloseUnsupportedData, websocket.CloseMessageTooBig, websocket.ClosePolicyViolation, websocket.CloseServiceRestart, websocket.CloseNoStatusReceived) {
		log.Warn().Err(err).Msg("non-critical error")
		return ConnLoopBreak
	}

	log.Error().Err(err).Msg("unexpected error")
	return ConnLoopBreak
}

// Writes to the connection of that session. It also
// handles the abnormal or other types of errors of
// writing to a websocket connection. The lock is held per
// attempt, never across the back-off.
func (s *Session) writeToConnWithRetry(msg interface{}) error {
	var retries uint8

	for {
		s.mu.Lock()
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := s.conn.WriteJSON(msg)
		s.mu.Unlock()

		if err == nil {
			s.touch()
			return nil
		}

		switch s.onConnErr(err) {
		case ConnLoopRetry:
			if retries < maxWriteWsRetries {
				retries++
				log.Warn().Msgf("writing to ws [%s] failed; retrying... (retry no. %d)", s.remoteAddr(), retries)
				time.Sleep(time.Duration(retries*backOffFactor) * time.Second)
				continue
			}
			log.Error().Err(err).Msgf("max retries reached for writing to ws [%s]", s.remoteAddr())
			return NewConnErr(ConnLoopBreak)

		case ConnLoopAbnormalClosureRetry:
			return NewConnErr(ConnLoopAbnormalClosureRetry)

		default:
			return NewConnErr(ConnLoopBreak).AddDesc("breaking writeLoop due to: " + err.Error())
		}
	}
}

// Handles the errors that occurs when reading from
// ws connection. `ConnLoopBreak` results in terminating
// the session.
func (s *Session) handleReadFromConnErr(err error, retries uint8) uint8 {
	switch s.onConnErr(err) {
	case ConnLoopAbnormalClosureRetry:
		return ConnLoopAbnormalClosureRetry

	case ConnLoopRetry:
		if retries < maxWriteWsRetries {
			log.Warn().Msgf("failed to read from ws conn [%s]; retrying... (retry no. %d)", s.remoteAddr(), retries+1)
			time.Sleep(time.Duration((retries+1)*backOffFactor) * time.Second)
			return ConnLoopContinue
		}
		return ConnLoopBreak

	default:
		log.Info().Msgf("break ws conn loop [%s] due to: %s", s.remoteAddr(), err)
		return ConnLoopBreak
	}
}

// awaitReconnection opens the window in which a client may
// come back with this session id. The returned channel is
// closed when it does.
func (s *Session) awaitReconnection() chan bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaitingReconnect = true
	return s.reconnectionSignalChan
}

func (s *Session) stopAwaitingReconnection() {
	s.mu.Lock()
	s.awaitingReconnect = false
	s.mu.Unlock()
}

// Swaps in the new connection and closes the dead one. Only a
// session waiting out its grace period takes a reconnection;
// a live session is never handed to another client.
func (s *Session) reconnectionAfterAbnormalClosure(conn *websocket.Conn) error {
	s.mu.Lock()
	if !s.awaitingReconnect {
		s.mu.Unlock()
		return cerr.ErrSessionNotAwaitingReconnect(s.id)
	}

	// Signal for reconnection
	close(s.reconnectionSignalChan)

	oldConn := s.conn
	s.conn = conn
	s.reconnectionSignalChan = make(chan bool)
	s.awaitingReconnect = false
	s.mu.Unlock()

	s.touch()
	if oldConn != nil && oldConn != conn {
		_ = oldConn.Close()
	}
	return nil
}
