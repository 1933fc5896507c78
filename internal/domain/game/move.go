package game

// @name Move
type Move struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// @name MoveResult
type MoveResult struct {
	P int `json:"p"`
}

// @name TurnInfo
type TurnInfo struct {
	Player string `json:"player"`
	P      int    `json:"p"`
}

// @name WinnerInfo
type WinnerInfo struct {
	Winner string `json:"winner"`
}

// @name BoardResponse
type BoardResponse struct {
	Size  int      `json:"size"`
	Cells [][]*int `json:"cells"`
}

// @name StatusResponse
type StatusResponse struct {
	Status string `json:"status"`
	Winner string `json:"winner"`
}

// @name GameCreateResponse
type GameCreateResponse struct {
	GameID string `json:"game_id"`
}

func (g *Game) TurnInfo() TurnInfo {
	return TurnInfo{
		Player: g.turn.String(),
		P:      g.NextResolvePercent(),
	}
}

func (g *Game) BoardResponse() BoardResponse {
	return BoardResponse{Size: BoardSize, Cells: g.board.Percents()}
}

func ObservedResponse(b ObservedBoard) BoardResponse {
	return BoardResponse{Size: BoardSize, Cells: b.Values()}
}
