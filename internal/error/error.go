package error

import "fmt"

const (
	ConstErrNoGameInSession = "no game in session"
	ConstErrInvalidPayload  = "failed to parse the incoming payload"
)

func ErrGameNotExists(gameUuid string) error {
	return fmt.Errorf("game with this uuid does not exist, uuid: %s", gameUuid)
}

func ErrSessionNotFound(sessionId string) error {
	return fmt.Errorf("session with this id does not exist, id: %s", sessionId)
}

func ErrSessionIsNil(sessionId string) error {
	return fmt.Errorf("session is nil, id: %s", sessionId)
}

func ErrInvalidGameMode(mode uint8) error {
	return fmt.Errorf("invalid game mode:\t%d", mode)
}

func ErrInvalidOrientation(orientation uint8) error {
	return fmt.Errorf("invalid orientation:\t%d", orientation)
}

func ErrInvalidStage(stage string) error {
	return fmt.Errorf("stage must be either dev or prod, got: %s", stage)
}

func ErrInvalidPort(port string) error {
	return fmt.Errorf("port must be a number between 1 and 65535, got: %s", port)
}

func ErrInvalidBotDelay(raw string) error {
	return fmt.Errorf("bot move delay must be a non-negative number of milliseconds, got: %s", raw)
}

func ErrShipTooLarge(name string, size, boardSize int) error {
	return fmt.Errorf("ship %s of size %d does not fit a board of size %d", name, size, boardSize)
}

func ErrFleetGenerationExhausted(shipName string, retries int) error {
	return fmt.Errorf("could not place ship %s after %d full board retries", shipName, retries)
}

func ErrInvalidShipSize(name string, size int) error {
	return fmt.Errorf("ship %s must have a positive size, got: %d", name, size)
}

func ErrSessionNotAwaitingReconnect(sessionId string) error {
	return fmt.Errorf("session is not waiting for a reconnection, id: %s", sessionId)
}
