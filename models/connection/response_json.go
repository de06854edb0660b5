package connection

import (
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

const (
	GameResultWon  = "won"
	GameResultLost = "lost"
)

type RespSessionId struct {
	SessionID string `json:"session_id"`
}

type RespGameState struct {
	Applied           bool               `json:"applied"`
	GameUuid          string             `json:"game_uuid"`
	GameMode          uint8              `json:"game_mode"`
	Phase             string             `json:"phase"`
	PlayerTurn        bool               `json:"player_turn"`
	WaitingForPass    bool               `json:"waiting_for_pass"`
	Message           string             `json:"message"`
	Orientation       string             `json:"orientation"`
	SelectedShip      string             `json:"selected_ship,omitempty"`
	Ships             []mb.ShipPlacement `json:"ships"`
	PlayerBoard       mb.Board           `json:"player_board"`
	OpponentBoard     mb.Board           `json:"opponent_board"`
	PlayerDecksLeft   int                `json:"player_decks_left"`
	OpponentDecksLeft int                `json:"opponent_decks_left"`
}

// NewRespGameState builds the client view of a snapshot. The
// opponent's ships stay hidden until the game is over.
func NewRespGameState(snapshot mb.Snapshot, applied bool) RespGameState {
	opponentBoard := snapshot.OpponentBoard.Masked()
	if snapshot.Phase == mb.PhaseGameOver {
		opponentBoard = snapshot.OpponentBoard
	}

	return RespGameState{
		Applied:           applied,
		GameUuid:          snapshot.Uuid,
		GameMode:          uint8(snapshot.Mode),
		Phase:             snapshot.Phase.String(),
		PlayerTurn:        snapshot.PlayerTurn,
		WaitingForPass:    snapshot.WaitingForPass,
		Message:           snapshot.Message,
		Orientation:       snapshot.Orientation.String(),
		SelectedShip:      snapshot.SelectedShip,
		Ships:             snapshot.Ships,
		PlayerBoard:       snapshot.PlayerBoard,
		OpponentBoard:     opponentBoard,
		PlayerDecksLeft:   snapshot.PlayerDecksLeft,
		OpponentDecksLeft: snapshot.OpponentDecksLeft,
	}
}

type RespEndGame struct {
	Result  string        `json:"result"`
	Message string        `json:"message"`
	State   RespGameState `json:"state"`
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}

func NewRespEndGame(won bool, state RespGameState) RespEndGame {
	result := GameResultLost
	if won {
		result = GameResultWon
	}
	return RespEndGame{
		Result:  result,
		Message: state.Message,
		State:   state,
	}
}
