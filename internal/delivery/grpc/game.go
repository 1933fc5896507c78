package grpc

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"quantum_gomoku/internal/domain/game"
	errs "quantum_gomoku/internal/errors"
	gameuc "quantum_gomoku/internal/usecase/game"
)

const ServiceName = "qgomoku.GameService"

// GameServer exposes the game use case over gRPC. Messages are protobuf
// well-known types: game ids travel as StringValue, everything else as Struct.
type GameServer struct {
	log    *zap.SugaredLogger
	gameUC *gameuc.GameUseCase
}

func NewGameServer(log *zap.SugaredLogger, gameUC *gameuc.GameUseCase) *GameServer {
	return &GameServer{log: log, gameUC: gameUC}
}

func Register(server *grpc.Server, gs *GameServer) {
	server.RegisterService(&serviceDesc, gs)
}

func (s *GameServer) CreateGame(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	gameID, err := s.gameUC.CreateGame(ctx)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return wrapperspb.String(gameID), nil
}

func (s *GameServer) GetBoard(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	board, err := s.gameUC.GetBoard(ctx, in.GetValue())
	if err != nil {
		return nil, s.toStatus(err)
	}
	return boardStruct(board)
}

func (s *GameServer) GetTurn(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	turn, err := s.gameUC.GetTurn(ctx, in.GetValue())
	if err != nil {
		return nil, s.toStatus(err)
	}
	return turnStruct(turn)
}

// PlaceStone expects {"game_id": string, "x": number, "y": number} and answers {"p": number}.
func (s *GameServer) PlaceStone(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()
	gameID := fields["game_id"].GetStringValue()
	x, okX := coordinate(fields["x"])
	y, okY := coordinate(fields["y"])
	if gameID == "" || !okX || !okY {
		return nil, status.Error(codes.InvalidArgument, "game_id and integer x, y are required")
	}

	p, err := s.gameUC.PlaceStone(ctx, gameID, x, y)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return structpb.NewStruct(map[string]any{"p": p})
}

func (s *GameServer) Observe(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	observed, err := s.gameUC.Observe(ctx, in.GetValue())
	if err != nil {
		return nil, s.toStatus(err)
	}
	return boardStruct(observed)
}

func (s *GameServer) Reset(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	turn, err := s.gameUC.Reset(ctx, in.GetValue())
	if err != nil {
		return nil, s.toStatus(err)
	}
	return turnStruct(turn)
}

func (s *GameServer) toStatus(err error) error {
	switch {
	case errors.Is(err, errs.ErrInvalidPosition):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, errs.ErrGameAlreadyOver):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, errs.ErrGameNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		s.log.Error(err)
		return status.Error(codes.Internal, errs.ErrInternal.Error())
	}
}

// coordinate accepts only whole finite numbers within int32 range.
func coordinate(v *structpb.Value) (int, bool) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false
	}
	f := n.NumberValue
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func boardStruct(board game.BoardResponse) (*structpb.Struct, error) {
	rows := make([]any, len(board.Cells))
	for y, row := range board.Cells {
		cells := make([]any, len(row))
		for x, cell := range row {
			if cell != nil {
				cells[x] = *cell
			}
		}
		rows[y] = cells
	}
	return structpb.NewStruct(map[string]any{
		"size":  board.Size,
		"cells": rows,
	})
}

func turnStruct(turn game.TurnInfo) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"player": turn.Player,
		"p":      turn.P,
	})
}
