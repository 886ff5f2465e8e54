package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/landlord/landlord-server/internal/game"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const gameServiceName = "landlord.v1.GameService"

// GameServiceServer is the gRPC surface of the game manager. Bodies are
// google.protobuf.Struct documents carrying the same JSON the HTTP and
// WebSocket transports use.
type GameServiceServer interface {
	CreateGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitAction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetState(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSnapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// gameServer implements GameServiceServer on top of a game.Manager.
type gameServer struct {
	manager *game.Manager
	auth    *TokenIssuer
	logger  *zap.Logger
}

// NewGameServer creates the gRPC game service.
func NewGameServer(manager *game.Manager, auth *TokenIssuer, logger *zap.Logger) GameServiceServer {
	return &gameServer{manager: manager, auth: auth, logger: logger}
}

// RegisterGameServiceServer registers srv on s.
func RegisterGameServiceServer(s grpc.ServiceRegistrar, srv GameServiceServer) {
	s.RegisterService(&gameServiceDesc, srv)
}

type createGameRequest struct {
	Name string `json:"name"`
	Seed int64  `json:"seed"`
}

type gameRequest struct {
	GameID string      `json:"game_id"`
	Action game.Action `json:"action"`
}

// actionResponse is the reply to an action on every transport.
type actionResponse struct {
	game.Result
	Token string     `json:"token,omitempty"`
	View  *game.View `json:"view,omitempty"`
}

// CreateGame opens a new game in the lobby.
func (s *gameServer) CreateGame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in createGameRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	view, err := s.manager.CreateGame(ctx, in.Name, in.Seed)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(view)
}

// SubmitAction applies one player action. Rule violations are successful
// calls with success=false.
func (s *gameServer) SubmitAction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in gameRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if in.GameID == "" {
		return nil, status.Error(codes.InvalidArgument, "game_id is required")
	}
	if in.Action.Type == "" {
		return nil, status.Error(codes.InvalidArgument, "action.type is required")
	}

	playerID, err := resolveActor(s.auth, tokenFromContext(ctx), in.GameID, in.Action)
	if err != nil {
		return nil, toStatus(err)
	}
	in.Action.PlayerID = playerID

	res, view, err := s.manager.Execute(ctx, in.GameID, in.Action)
	if err != nil {
		s.logger.Warn("action failed",
			zap.String("game_id", in.GameID),
			zap.String("player_id", playerID),
			zap.String("action", string(in.Action.Type)),
			zap.Error(err),
		)
		return nil, toStatus(err)
	}

	out := actionResponse{Result: res, View: view}
	if in.Action.Type == game.ActionJoin && res.Success {
		if out.Token, err = s.auth.Issue(in.GameID, playerID); err != nil {
			return nil, toStatus(err)
		}
	}
	return toStruct(out)
}

// GetState returns the public view of a game.
func (s *gameServer) GetState(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	gameID := req.GetFields()["game_id"].GetStringValue()
	if gameID == "" {
		return nil, status.Error(codes.InvalidArgument, "game_id is required")
	}
	view, err := s.manager.View(ctx, gameID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(view)
}

// GetSnapshot returns the full snapshot as a JSON string with its checksum.
// The snapshot travels as a string because its seed does not fit a float.
func (s *gameServer) GetSnapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	gameID := req.GetFields()["game_id"].GetStringValue()
	if gameID == "" {
		return nil, status.Error(codes.InvalidArgument, "game_id is required")
	}
	snap, err := s.manager.Snapshot(ctx, gameID)
	if err != nil {
		return nil, toStatus(err)
	}
	data, err := game.MarshalSnapshot(snap)
	if err != nil {
		return nil, toStatus(err)
	}
	sum, err := snap.ComputeChecksum()
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := structpb.NewStruct(map[string]interface{}{
		"game_id":  gameID,
		"snapshot": string(data),
		"checksum": sum.Hash,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode snapshot: %v", err)
	}
	return out, nil
}

func tokenFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, value := range md.Get("authorization") {
		if token := bearerToken(value); token != "" {
			return token
		}
	}
	return ""
}

// resolveActor decides who performs action. Joining needs no token since
// it is what hands one out.
func resolveActor(auth *TokenIssuer, token, gameID string, action game.Action) (string, error) {
	if action.Type == game.ActionJoin {
		if action.PlayerID == "" {
			return "", fmt.Errorf("%w: player id is required", ErrUnauthenticated)
		}
		return action.PlayerID, nil
	}
	return auth.Resolve(token, gameID, action.PlayerID)
}

// toStatus maps manager errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, game.ErrGameNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func fromStruct(in *structpb.Struct, v interface{}) error {
	if in == nil {
		return fmt.Errorf("empty request")
	}
	data, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func unaryHandler(method string, call func(GameServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	fullMethod := "/" + gameServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GameServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(GameServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var gameServiceDesc = grpc.ServiceDesc{
	ServiceName: gameServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("CreateGame", GameServiceServer.CreateGame),
		unaryHandler("SubmitAction", GameServiceServer.SubmitAction),
		unaryHandler("GetState", GameServiceServer.GetState),
		unaryHandler("GetSnapshot", GameServiceServer.GetSnapshot),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "landlord/v1/game.proto",
}

// GameServiceClient calls a remote GameService.
type GameServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewGameServiceClient(cc grpc.ClientConnInterface) *GameServiceClient {
	return &GameServiceClient{cc: cc}
}

func (c *GameServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+gameServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GameServiceClient) CreateGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CreateGame", in, opts...)
}

func (c *GameServiceClient) SubmitAction(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "SubmitAction", in, opts...)
}

func (c *GameServiceClient) GetState(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetState", in, opts...)
}

func (c *GameServiceClient) GetSnapshot(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetSnapshot", in, opts...)
}
