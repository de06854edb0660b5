package connection

type ReqCreateGame struct {
	GameMode uint8 `json:"game_mode"`
}

type ReqSetMode struct {
	GameMode uint8 `json:"game_mode"`
}

type ReqSelectShip struct {
	ShipName string `json:"ship_name"`
}

type ReqSetOrientation struct {
	Orientation uint8 `json:"orientation"`
}

// Used for both placing a ship and attacking
type ReqCell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}
