package views

import (
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

type BoardPage struct {
	GameUuid          string
	Phase             string
	Message           string
	PlayerBoard       mb.Board
	OpponentBoard     mb.Board
	PlayerDecksLeft   int
	OpponentDecksLeft int
}

// Pass the opponent board already masked; the page shows
// whatever it is given.
func NewBoardPage(snapshot mb.Snapshot, opponentBoard mb.Board) BoardPage {
	return BoardPage{
		GameUuid:          snapshot.Uuid,
		Phase:             snapshot.Phase.String(),
		Message:           snapshot.Message,
		PlayerBoard:       snapshot.PlayerBoard,
		OpponentBoard:     opponentBoard,
		PlayerDecksLeft:   snapshot.PlayerDecksLeft,
		OpponentDecksLeft: snapshot.OpponentDecksLeft,
	}
}

func cellState(cell mb.Cell) string {
	switch {
	case cell.IsHit:
		return "hit"
	case cell.IsMiss:
		return "miss"
	case cell.HasShip:
		return "ship"
	default:
		return "water"
	}
}

func cellMark(cell mb.Cell) string {
	switch {
	case cell.IsHit:
		return "X"
	case cell.IsMiss:
		return "•"
	default:
		return ""
	}
}
