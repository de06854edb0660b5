package api_test

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/saeidalz13/battleship-solo/api"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

var (
	testServer     *api.Server
	testHttpServer *httptest.Server
	testWsUrl      string

	// messages read off a connection while waiting for another code
	pendingMsgs = make(map[*websocket.Conn][][]byte)

	dialer = websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
)

type placement struct {
	name        string
	row, col    int
	orientation mb.Orientation
}

var testLayout = []placement{
	{name: mb.ShipPatrolBoat, row: 0, col: 0},
	{name: mb.ShipSuperCarrier, row: 2, col: 0},
	{name: mb.ShipCarrier, row: 4, col: 0},
	{name: mb.ShipBattleship, row: 6, col: 0},
	{name: mb.ShipCruiser, row: 8, col: 0},
	{name: mb.ShipSubmarine, row: 8, col: 4},
	{name: mb.ShipDestroyer, row: 0, col: 3},
}

func TestMain(m *testing.M) {
	server, err := api.NewServer(
		api.WithStage("dev"),
		api.WithBotDelay(10*time.Millisecond),
		api.WithGracePeriod(time.Second),
	)
	if err != nil {
		panic(err)
	}
	testServer = server

	testHttpServer = httptest.NewServer(server.Router())
	testWsUrl = "ws" + strings.TrimPrefix(testHttpServer.URL, "http") + "/battleship"

	code := m.Run()
	testHttpServer.Close()
	os.Exit(code)
}

// dial opens a new session and returns its connection and id.
func dial(t *testing.T, url string) (*websocket.Conn, string) {
	t.Helper()

	conn, _, err := dialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var resp mc.Message[mc.RespSessionId]
	require.NoError(t, conn.ReadJSON(&resp))
	require.Equal(t, mc.CodeSessionID, resp.Code)
	require.NotEmpty(t, resp.Payload.SessionID)
	return conn, resp.Payload.SessionID
}

func send[T any](t *testing.T, conn *websocket.Conn, code uint8, payload T) {
	t.Helper()
	msg := mc.NewMessage[T](code)
	msg.AddPayload(payload)
	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil returns the first message with code, whether it
// arrived already or not. Pushes and responses may interleave.
func readUntil[T any](t *testing.T, conn *websocket.Conn, code uint8) mc.Message[T] {
	t.Helper()

	decode := func(raw []byte) mc.Message[T] {
		var msg mc.Message[T]
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	}

	pending := pendingMsgs[conn]
	for i, raw := range pending {
		var signal mc.Signal
		require.NoError(t, json.Unmarshal(raw, &signal))
		if signal.Present() && *signal.Code == code {
			pendingMsgs[conn] = append(pending[:i:i], pending[i+1:]...)
			return decode(raw)
		}
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var signal mc.Signal
		require.NoError(t, json.Unmarshal(raw, &signal))
		if signal.Present() && *signal.Code == code {
			return decode(raw)
		}
		pendingMsgs[conn] = append(pendingMsgs[conn], raw)
	}
}

func request(t *testing.T, conn *websocket.Conn, code uint8, payload interface{}) mc.Message[mc.RespGameState] {
	t.Helper()
	send(t, conn, code, payload)
	return readUntil[mc.RespGameState](t, conn, code)
}

func createGame(t *testing.T, conn *websocket.Conn, mode mb.GameMode) mc.RespGameState {
	t.Helper()
	resp := request(t, conn, mc.CodeCreateGame, mc.ReqCreateGame{GameMode: uint8(mode)})
	require.Nil(t, resp.Error)
	require.True(t, resp.Payload.Applied)
	return resp.Payload
}

func placeFleet(t *testing.T, conn *websocket.Conn, layout []placement) mc.RespGameState {
	t.Helper()

	var last mc.RespGameState
	for _, p := range layout {
		resp := request(t, conn, mc.CodeSelectShip, mc.ReqSelectShip{ShipName: p.name})
		require.True(t, resp.Payload.Applied, p.name)

		resp = request(t, conn, mc.CodeSetOrientation, mc.ReqSetOrientation{Orientation: uint8(p.orientation)})
		require.True(t, resp.Payload.Applied, p.name)

		resp = request(t, conn, mc.CodePlaceShip, mc.ReqCell{Row: p.row, Col: p.col})
		require.True(t, resp.Payload.Applied, p.name)
		last = resp.Payload
	}
	return last
}

// opponentShips reads the unmasked opponent board straight
// from the game manager.
func opponentShips(t *testing.T, gameUuid string) (ships, water []mb.Coordinates) {
	t.Helper()
	return opponentShipsOf(t, testServer.GameManager, gameUuid)
}

func opponentShipsOf(t *testing.T, gameManager mb.GameManager, gameUuid string) (ships, water []mb.Coordinates) {
	t.Helper()

	game, err := gameManager.FetchGame(gameUuid)
	require.NoError(t, err)

	board := game.Snapshot().OpponentBoard
	for r := range board {
		for c, cell := range board[r] {
			if cell.HasShip {
				ships = append(ships, mb.NewCoordinates(r, c))
			} else {
				water = append(water, mb.NewCoordinates(r, c))
			}
		}
	}
	return ships, water
}
