package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sqlc-dev/pqtype"

	"github.com/saeidalz13/battleship-solo/db/sqlc"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

const (
	URLQuerySessionIDKeyword string = "sessionID"
)

var (
	upgrader = websocket.Upgrader{

		// good average time since this is not a high-latency operation such as video streaming
		HandshakeTimeout: time.Second * 5,

		// a full game state is a few kilobytes at most
		ReadBufferSize:  2048,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
)

type RequestProcessor struct {
	sessionManager mc.SessionManager
	gameManager    mb.GameManager
	analytics      *sqlc.AnalyticsManager
	ipnet          net.IPNet
}

func NewRequestProcessor(
	sessionManager mc.SessionManager,
	gameManager mb.GameManager,
	analytics *sqlc.AnalyticsManager,
) RequestProcessor {
	return RequestProcessor{
		sessionManager: sessionManager,
		gameManager:    gameManager,
		analytics:      analytics,
		ipnet:          getServerIpNet(),
	}
}

// The first non-loopback IPv4 address keys the analytics rows.
// Hosts without one (containers with only lo) fall back to loopback.
func getServerIpNet() net.IPNet {
	loopback := net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(32, 32)}

	ifaces, err := net.Interfaces()
	if err != nil {
		log.Warn().Err(err).Msg("failed to list network interfaces; using loopback")
		return loopback
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			log.Warn().Err(err).Str("iface", iface.Name).Msg("failed to read interface addresses")
			continue
		}

		for _, addr := range addrs {
			var ip net.IP

			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			if ip != nil && ip.To4() != nil && !ip.IsLoopback() {
				return net.IPNet{IP: ip.To4(), Mask: net.CIDRMask(32, 32)}
			}
		}
	}

	log.Warn().Msg("no non-loopback ipv4 address found; using loopback")
	return loopback
}

// GetIpNet is the address analytics rows are keyed by.
func (rp RequestProcessor) GetIpNet() net.IPNet {
	return rp.ipnet
}

func (rp RequestProcessor) serverInet() pqtype.Inet {
	return pqtype.Inet{IPNet: rp.ipnet, Valid: true}
}

func (rp RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// use Upgrade method to make a websocket connection
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("could not open websocket connection")
		return
	}

	sessionIdQuery := r.URL.Query().Get(URLQuerySessionIDKeyword)
	switch sessionIdQuery {
	case "":
		log.Info().Msgf("a new connection established\tRemote Addr: %s", conn.RemoteAddr().String())
		rp.processSessionRequests(rp.sessionManager.GenerateNewSession(conn))

	default:
		if err := rp.sessionManager.ReconnectSession(sessionIdQuery, conn); err != nil {
			log.Warn().Err(err).Msg("reconnection rejected")
			resp := mc.NewMessage[mc.NoPayload](mc.CodeReceivedInvalidSessionID)
			resp.AddError(err.Error(), "session does not exist anymore; start a new game")
			_ = conn.WriteJSON(resp)
			_ = conn.Close()
		}
	}
}

func (rp RequestProcessor) recordAnalytics(event mb.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()

	var err error
	switch event {
	case mb.EventAttackStarted:
		err = rp.analytics.IncrementGamesStartedCount(ctx, rp.serverInet())
	case mb.EventGameWon:
		err = rp.analytics.IncrementGamesWonCount(ctx, rp.serverInet())
	case mb.EventGameLost:
		err = rp.analytics.IncrementGamesLostCount(ctx, rp.serverInet())
	}
	if err != nil {
		// analytics never kill a game
		log.Error().Err(err).Msg("failed to record analytics")
	}
}

// forwardGameEvents pushes to the client what changed without
// a request of theirs: the bot's answer and the end of the game.
// The returned func stops forwarding.
func (rp RequestProcessor) forwardGameEvents(session *mc.Session, game *mb.Game) func() {
	events := game.Events().Subscribe()

	go func() {
		// closed by the returned func or by game.Close
		for event := range events {
			// the client hears first; analytics may wait on the db
			switch event {
			case mb.EventOpponentMoved:
				msg := mc.NewMessage[mc.RespGameState](mc.CodeOpponentMove)
				msg.AddPayload(mc.NewRespGameState(game.Snapshot(), true))
				if err := rp.sessionManager.WriteToSessionConn(session, msg); err != nil {
					log.Warn().Err(err).Str("session", session.Id()).Msg("failed to push opponent move")
				}

			case mb.EventGameWon, mb.EventGameLost:
				state := mc.NewRespGameState(game.Snapshot(), true)
				msg := mc.NewMessage[mc.RespEndGame](mc.CodeEndGame)
				msg.AddPayload(mc.NewRespEndGame(event == mb.EventGameWon, state))
				if err := rp.sessionManager.WriteToSessionConn(session, msg); err != nil {
					log.Warn().Err(err).Str("session", session.Id()).Msg("failed to push end of game")
				}
			}

			rp.recordAnalytics(event)
		}
	}()

	return func() { game.Events().Unsubscribe(events) }
}

func (rp RequestProcessor) processSessionRequests(session *mc.Session) {
	var (
		sessionId      = session.Id()
		stopForwarding = func() {}
		sessionGame    *mb.Game
	)

	defer func() {
		stopForwarding()
		if conn := session.Conn(); conn != nil {
			_ = conn.Close()
		}
		// terminates the session's game too
		rp.sessionManager.TerminateSession(sessionId)
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: sessionId})
	if err := rp.sessionManager.WriteToSessionConn(session, resp); err != nil {
		return
	}

sessionLoop:
	for {
		// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
		// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
		_, payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			// This error happens after retries. If it's not nil,
			// then something was wrong with the session connection
			// and couldn't be resolved
			break sessionLoop
		}

		var signal mc.Signal
		if err := json.Unmarshal(payload, &signal); err != nil || !signal.Present() {
			msg := mc.NewMessage[mc.NoPayload](mc.CodeSignalAbsent)
			msg.AddError("incoming req payload must contain 'code' field", "")
			if err := rp.sessionManager.WriteToSessionConn(session, msg); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		req := NewRequest(payload)
		var respMsg mc.Message[mc.RespGameState]
		writeAndContinue := true

		switch *signal.Code {
		case mc.CodeCreateGame:
			game, msg := req.HandleCreateGame(rp.gameManager, session)
			respMsg = msg
			if game != nil {
				stopForwarding()
				sessionGame = game
				stopForwarding = rp.forwardGameEvents(session, sessionGame)
			}

		case mc.CodeSelectShip:
			respMsg = req.HandleSelectShip(sessionGame)

		case mc.CodeSetOrientation:
			respMsg = req.HandleSetOrientation(sessionGame)

		case mc.CodePlaceShip:
			respMsg = req.HandlePlaceShip(sessionGame)

		case mc.CodeAttack:
			respMsg = req.HandleAttack(sessionGame)

		case mc.CodePass:
			respMsg = req.HandlePass(sessionGame)

		case mc.CodeReset:
			respMsg = req.HandleReset(sessionGame)

		case mc.CodeSetMode:
			respMsg = req.HandleSetMode(sessionGame)

		case mc.CodeGameState:
			respMsg = req.HandleGameState(sessionGame)

		default:
			writeAndContinue = false
		}

		if writeAndContinue {
			if err := rp.sessionManager.WriteToSessionConn(session, respMsg); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		respInvalidSignal := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
		respInvalidSignal.AddError("", "invalid code in the incoming payload")
		if err := rp.sessionManager.WriteToSessionConn(session, respInvalidSignal); err != nil {
			break sessionLoop
		}
	}
}
