package server

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alfredjeanlab/adcl/internal/changelog"
	"github.com/alfredjeanlab/adcl/internal/model"
	"github.com/alfredjeanlab/adcl/internal/rpc"
)

// NewGRPCServer creates a gRPC server with standard interceptors and
// registers the ChangelogService. The service has no .proto descriptor, so
// server reflection is not offered.
func NewGRPCServer(cs *ChangelogServer, authToken string) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor,
			AuthInterceptor(authToken),
		),
	)

	rpc.RegisterChangelogServiceServer(srv, &grpcService{cs: cs})
	return srv
}

// grpcService adapts ChangelogServer to rpc.ChangelogServiceServer.
type grpcService struct {
	cs *ChangelogServer
}

var _ rpc.ChangelogServiceServer = (*grpcService)(nil)

func (g *grpcService) Health(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return reply(map[string]string{"status": "ok"})
}

func (g *grpcService) LoadChangelog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var sel model.Selection
	if err := rpc.FromStruct(req, &sel); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	summary, err := g.cs.loadChangelog(ctx, sel)
	if err != nil {
		return nil, grpcError(err)
	}
	return reply(summary)
}

type viewRequest struct {
	Display string `json:"display"`
	Filter  string `json:"filter"`
}

func (g *grpcService) GetTree(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in viewRequest
	if err := rpc.FromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	resp, err := g.cs.tree(in.Display, in.Filter)
	if err != nil {
		return nil, grpcError(err)
	}
	return reply(resp)
}

func (g *grpcService) GetGraph(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in viewRequest
	if err := rpc.FromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	resp, err := g.cs.graph(in.Filter)
	if err != nil {
		return nil, grpcError(err)
	}
	return reply(resp)
}

func reply(v any) (*structpb.Struct, error) {
	out, err := rpc.ToStruct(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// grpcError maps an error returned by the shared server methods to a gRPC
// status.
func grpcError(err error) error {
	var ie inputError
	var nf notFoundError
	switch {
	case errors.As(err, &ie):
		return status.Error(codes.InvalidArgument, ie.Error())
	case errors.As(err, &nf):
		return status.Error(codes.NotFound, nf.Error())
	case errors.Is(err, changelog.ErrSuperseded):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Errorf(codes.Internal, "%v", err)
	}
}
