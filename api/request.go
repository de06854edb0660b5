package api

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

type RequestHandler interface {
	HandleCreateGame(gameManager mb.GameManager, session *mc.Session) (*mb.Game, mc.Message[mc.RespGameState])
	HandleSelectShip(game *mb.Game) mc.Message[mc.RespGameState]
	HandleSetOrientation(game *mb.Game) mc.Message[mc.RespGameState]
	HandlePlaceShip(game *mb.Game) mc.Message[mc.RespGameState]
	HandleAttack(game *mb.Game) mc.Message[mc.RespGameState]
	HandlePass(game *mb.Game) mc.Message[mc.RespGameState]
	HandleReset(game *mb.Game) mc.Message[mc.RespGameState]
	HandleSetMode(game *mb.Game) mc.Message[mc.RespGameState]
	HandleGameState(game *mb.Game) mc.Message[mc.RespGameState]
}

// Every incoming valid request will have this structure.
// Payload is the whole raw websocket message, code included.
type Request struct {
	payload []byte
}

var _ RequestHandler = (*Request)(nil)

func NewRequest(payload ...[]byte) Request {
	if len(payload) == 0 {
		return Request{}
	}
	return Request{payload: payload[0]}
}

func parsePayload[T any](payload []byte) (T, error) {
	var msg mc.Message[T]
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg.Payload, err
	}
	return msg.Payload, nil
}

func invalidPayloadMsg(code uint8, err error) mc.Message[mc.RespGameState] {
	log.Warn().Err(err).Uint8("code", code).Msg(cerr.ConstErrInvalidPayload)
	return mc.NewErrMessage[mc.RespGameState](code, err.Error(), cerr.ConstErrInvalidPayload)
}

func noGameMsg(code uint8) mc.Message[mc.RespGameState] {
	return mc.NewErrMessage[mc.RespGameState](code, "", cerr.ConstErrNoGameInSession)
}

func stateMsg(code uint8, game *mb.Game, applied bool) mc.Message[mc.RespGameState] {
	resp := mc.NewMessage[mc.RespGameState](code)
	resp.AddPayload(mc.NewRespGameState(game.Snapshot(), applied))
	return resp
}

// A session owns one game at a time; creating a new one
// terminates the previous.
func (r Request) HandleCreateGame(gameManager mb.GameManager, session *mc.Session) (*mb.Game, mc.Message[mc.RespGameState]) {
	req, err := parsePayload[mc.ReqCreateGame](r.payload)
	if err != nil {
		return nil, invalidPayloadMsg(mc.CodeCreateGame, err)
	}

	mode := mb.GameMode(req.GameMode)
	if !mode.IsValid() {
		return nil, invalidPayloadMsg(mc.CodeCreateGame, cerr.ErrInvalidGameMode(req.GameMode))
	}

	if previous := session.Game(); previous != nil {
		gameManager.TerminateGame(previous.Uuid())
	}

	game, err := gameManager.CreateGame(mb.WithGameMode(mode))
	if err != nil {
		log.Error().Err(err).Str("session", session.Id()).Msg("failed to create game")
		return nil, mc.NewErrMessage[mc.RespGameState](mc.CodeCreateGame, err.Error(), "failed to create game")
	}
	session.SetGame(game)

	return game, stateMsg(mc.CodeCreateGame, game, true)
}

func (r Request) HandleSelectShip(game *mb.Game) mc.Message[mc.RespGameState] {
	if game == nil {
		return noGameMsg(mc.CodeSelectShip)
	}
	req, err := parsePayload[mc.ReqSelectShip](r.payload)
	if err != nil {
		return invalidPayloadMsg(mc.CodeSelectShip, err)
	}

	return stateMsg(mc.CodeSelectShip, game, game.SelectShip(req.ShipName))
}

func (r Request) HandleSetOrientation(game *mb.Game) mc.Message[mc.RespGameState] {
	if game == nil {
		return noGameMsg(mc.CodeSetOrientation)
	}
	req, err := parsePayload[mc.ReqSetOrientation](r.payload)
	if err != nil {
		return invalidPayloadMsg(mc.CodeSetOrientation, err)
	}

	orientation := mb.Orientation(req.Orientation)
	if !orientation.IsValid() {
		return invalidPayloadMsg(mc.CodeSetOrientation, cerr.ErrInvalidOrientation(req.Orientation))
	}

	return stateMsg(mc.CodeSetOrientation, game, game.SetOrientation(orientation))
}

func (r Request) HandlePlaceShip(game *mb.Game) mc.Message[mc.RespGameState] {
	if game == nil {
		return noGameMsg(mc.CodePlaceShip)
	}
	req, err := parsePayload[mc.ReqCell](r.payload)
	if err != nil {
		return invalidPayloadMsg(mc.CodePlaceShip, err)
	}

	return stateMsg(mc.CodePlaceShip, game, game.PlaceShip(req.Row, req.Col))
}

func (r Request) HandleAttack(game *mb.Game) mc.Message[mc.RespGameState] {
	if game == nil {
		return noGameMsg(mc.CodeAttack)
	}
	req, err := parsePayload[mc.ReqCell](r.payload)
	if err != nil {
		return invalidPayloadMsg(mc.CodeAttack, err)
	}

	return stateMsg(mc.CodeAttack, game, game.Attack(req.Row, req.Col))
}

func (r Request) HandlePass(game *mb.Game) mc.Message[mc.RespGameState] {
	if game == nil {
		return noGameMsg(mc.CodePass)
	}
	return stateMsg(mc.CodePass, game, game.Pass())
}

func (r Request) HandleReset(game *mb.Game) mc.Message[mc.RespGameState] {
	if game == nil {
		return noGameMsg(mc.CodeReset)
	}
	if err := game.Reset(); err != nil {
		log.Error().Err(err).Str("game", game.Uuid()).Msg("failed to reset game")
		resp := stateMsg(mc.CodeReset, game, false)
		resp.AddError(err.Error(), "failed to reset game")
		return resp
	}
	return stateMsg(mc.CodeReset, game, true)
}

func (r Request) HandleSetMode(game *mb.Game) mc.Message[mc.RespGameState] {
	if game == nil {
		return noGameMsg(mc.CodeSetMode)
	}
	req, err := parsePayload[mc.ReqSetMode](r.payload)
	if err != nil {
		return invalidPayloadMsg(mc.CodeSetMode, err)
	}

	mode := mb.GameMode(req.GameMode)
	if !mode.IsValid() {
		return invalidPayloadMsg(mc.CodeSetMode, cerr.ErrInvalidGameMode(req.GameMode))
	}

	return stateMsg(mc.CodeSetMode, game, game.SetMode(mode))
}

func (r Request) HandleGameState(game *mb.Game) mc.Message[mc.RespGameState] {
	if game == nil {
		return noGameMsg(mc.CodeGameState)
	}
	return stateMsg(mc.CodeGameState, game, true)
}
