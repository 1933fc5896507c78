package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type GameServiceServer interface {
	CreateGame(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	GetBoard(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetTurn(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	PlaceStone(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Observe(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Reset(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateGame", Handler: unary("CreateGame", newEmpty, GameServiceServer.CreateGame)},
		{MethodName: "GetBoard", Handler: unary("GetBoard", newString, GameServiceServer.GetBoard)},
		{MethodName: "GetTurn", Handler: unary("GetTurn", newString, GameServiceServer.GetTurn)},
		{MethodName: "PlaceStone", Handler: unary("PlaceStone", newStruct, GameServiceServer.PlaceStone)},
		{MethodName: "Observe", Handler: unary("Observe", newString, GameServiceServer.Observe)},
		{MethodName: "Reset", Handler: unary("Reset", newString, GameServiceServer.Reset)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "qgomoku/game.proto",
}

func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }
func newString() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }
func newStruct() *structpb.Struct { return new(structpb.Struct) }

// unary builds a grpc.MethodHandler the same way protoc-gen-go-grpc does for
// each method.
func unary[In, Out any](method string, newIn func() In, call func(GameServiceServer, context.Context, In) (Out, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newIn()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(GameServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(GameServiceServer), ctx, req.(In))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// GameClient calls GameService on a connection.
type GameClient struct {
	cc grpc.ClientConnInterface
}

func NewGameClient(cc grpc.ClientConnInterface) *GameClient {
	return &GameClient{cc: cc}
}

func (c *GameClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *GameClient) CreateGame(ctx context.Context, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.invoke(ctx, "CreateGame", new(emptypb.Empty), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

func (c *GameClient) GetBoard(ctx context.Context, gameID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "GetBoard", wrapperspb.String(gameID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GameClient) GetTurn(ctx context.Context, gameID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "GetTurn", wrapperspb.String(gameID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GameClient) PlaceStone(ctx context.Context, gameID string, x, y int, opts ...grpc.CallOption) (int, error) {
	in, err := structpb.NewStruct(map[string]any{"game_id": gameID, "x": x, "y": y})
	if err != nil {
		return 0, err
	}
	out := new(structpb.Struct)
	if err = c.invoke(ctx, "PlaceStone", in, out, opts...); err != nil {
		return 0, err
	}
	return int(out.GetFields()["p"].GetNumberValue()), nil
}

func (c *GameClient) Observe(ctx context.Context, gameID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "Observe", wrapperspb.String(gameID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GameClient) Reset(ctx context.Context, gameID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "Reset", wrapperspb.String(gameID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
