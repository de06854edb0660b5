package connection

const (
	CodeSessionID uint8 = iota
	CodeReceivedInvalidSessionID
	CodeCreateGame
	CodeSelectShip
	CodeSetOrientation
	CodePlaceShip
	CodeAttack

	// Hands the turn back in human mode
	CodePass
	CodeReset
	CodeSetMode

	// Client asks for the current state, server answers with it
	CodeGameState

	// Pushed by the server when the bot has answered an attack
	CodeOpponentMove
	CodeEndGame
	CodeInvalidSignal

	// if the req msg does not contain "code" field
	CodeSignalAbsent
)

// Signal is the first thing read off an incoming message. A
// pointer tells a missing code apart from code 0.
type Signal struct {
	Code *uint8 `json:"code"`
}

func (s Signal) Present() bool {
	return s.Code != nil
}

type NoPayload bool

// Message is the envelope of everything on the wire, both ways.
type Message[T any] struct {
	Code    uint8    `json:"code"`
	Payload T        `json:"payload,omitempty"`
	Error   *RespErr `json:"error,omitempty"`
}

func NewMessage[T any](code uint8) Message[T] {
	return Message[T]{Code: code}
}

func NewErrMessage[T any](code uint8, errorDetails, message string) Message[T] {
	return Message[T]{Code: code, Error: NewRespErr(errorDetails, message)}
}

func (m *Message[T]) AddPayload(payload T) {
	m.Payload = payload
}

func (m *Message[T]) AddError(errorDetails, message string) {
	m.Error = NewRespErr(errorDetails, message)
}
