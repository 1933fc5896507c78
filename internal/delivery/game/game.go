package game

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quantum_gomoku/internal/domain/game"
	errs "quantum_gomoku/internal/errors"
	"quantum_gomoku/internal/httpresponse"
	gameuc "quantum_gomoku/internal/usecase/game"
	"quantum_gomoku/internal/utils"
)

type GameHandler struct {
	log    *zap.SugaredLogger
	gameUC *gameuc.GameUseCase
	hub    *Hub
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewGameHandler(log *zap.SugaredLogger, gameUC *gameuc.GameUseCase, hub *Hub) *GameHandler {
	return &GameHandler{
		log:    log,
		gameUC: gameUC,
		hub:    hub,
	}
}

func (g *GameHandler) Router(r chi.Router) {
	r.Get("/board-size", g.HandleBoardSize)
	r.Post("/games", g.HandleNewGame)
	r.Route("/games/{gameID}", func(r chi.Router) {
		r.Delete("/", g.HandleCloseGame)
		r.Get("/board", g.HandleGetBoard)
		r.Get("/turn", g.HandleGetTurn)
		r.Get("/status", g.HandleGetStatus)
		r.Post("/stones", g.HandlePlaceStone)
		r.Post("/observe", g.HandleObserve)
		r.Post("/reset", g.HandleReset)
		r.Get("/ws", g.HandleSubscribe)
	})
}

// writeGameError maps use case errors onto HTTP statuses.
func (g *GameHandler) writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidPosition):
		httpresponse.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrGameAlreadyOver):
		httpresponse.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrGameNotFound):
		httpresponse.WriteError(w, http.StatusNotFound, err.Error())
	default:
		g.log.Error(err)
		httpresponse.WriteError(w, http.StatusInternalServerError, errs.ErrInternal.Error())
	}
}

// HandleBoardSize godoc
// @Summary Board dimension
// @Tags game
// @Produce json
// @Router /board-size [get]
func (g *GameHandler) HandleBoardSize(w http.ResponseWriter, r *http.Request) {
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, map[string]int{"size": game.BoardSize})
}

// HandleNewGame godoc
// @Summary Start a new game
// @Tags game
// @Produce json
// @Success 200 {object} game.GameCreateResponse
// @Router /games [post]
func (g *GameHandler) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := g.gameUC.CreateGame(r.Context())
	if err != nil {
		g.writeGameError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.GameCreateResponse{GameID: gameID})
}

func (g *GameHandler) HandleCloseGame(w http.ResponseWriter, r *http.Request) {
	if err := g.gameUC.CloseGame(r.Context(), chi.URLParam(r, "gameID")); err != nil {
		g.writeGameError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, nil)
}

// HandleGetBoard godoc
// @Summary Probability board
// @Tags game
// @Produce json
// @Param gameID path string true "Game id"
// @Success 200 {object} game.BoardResponse
// @Failure 404 {object} httpresponse.ErrorResponse
// @Router /games/{gameID}/board [get]
func (g *GameHandler) HandleGetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := g.gameUC.GetBoard(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		g.writeGameError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, board)
}

func (g *GameHandler) HandleGetTurn(w http.ResponseWriter, r *http.Request) {
	turn, err := g.gameUC.GetTurn(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		g.writeGameError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, turn)
}

func (g *GameHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := g.gameUC.GetStatus(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		g.writeGameError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, status)
}

// HandlePlaceStone godoc
// @Summary Place a stone for the side to move
// @Tags game
// @Accept json
// @Produce json
// @Param gameID path string true "Game id"
// @Param move body game.Move true "Position"
// @Success 200 {object} game.MoveResult
// @Failure 400 {object} httpresponse.ErrorResponse
// @Failure 409 {object} httpresponse.ErrorResponse
// @Router /games/{gameID}/stones [post]
func (g *GameHandler) HandlePlaceStone(w http.ResponseWriter, r *http.Request) {
	var move game.Move
	if err := utils.DecodeJSONRequest(r, &move); err != nil {
		g.log.Error("PlaceStone: ", err)
		httpresponse.WriteError(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return
	}

	p, err := g.gameUC.PlaceStone(r.Context(), chi.URLParam(r, "gameID"), move.X, move.Y)
	if err != nil {
		g.writeGameError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.MoveResult{P: p})
}

// HandleObserve godoc
// @Summary Collapse the board
// @Tags game
// @Produce json
// @Param gameID path string true "Game id"
// @Success 200 {object} game.BoardResponse
// @Router /games/{gameID}/observe [post]
func (g *GameHandler) HandleObserve(w http.ResponseWriter, r *http.Request) {
	observed, err := g.gameUC.Observe(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		g.writeGameError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, observed)
}

func (g *GameHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	turn, err := g.gameUC.Reset(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		g.writeGameError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, turn)
}

// HandleSubscribe upgrades to a websocket that receives the game's turn and
// winner events. The current turn is sent right after the upgrade, and the
// socket is closed with CloseGoingAway when the game is closed.
func (g *GameHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	turn, err := g.gameUC.GetTurn(r.Context(), gameID)
	if err != nil {
		g.writeGameError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error("upgrade error: ", err)
		return
	}

	client := g.hub.Subscribe(gameID, conn, Event{Type: EventTurn, Payload: turn})
	defer g.hub.Unsubscribe(client)

	// clients only listen; reading keeps control frames flowing until close
	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			return
		}
	}
}
