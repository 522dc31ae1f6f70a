// Package rpc describes the adcl.v1.ChangelogService gRPC service. Requests
// and responses are google.protobuf.Struct messages carrying the same JSON
// documents as the HTTP API, so the service needs no generated code.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "adcl.v1.ChangelogService"

// Full method names.
const (
	MethodHealth        = "/" + ServiceName + "/Health"
	MethodLoadChangelog = "/" + ServiceName + "/LoadChangelog"
	MethodGetTree       = "/" + ServiceName + "/GetTree"
	MethodGetGraph      = "/" + ServiceName + "/GetGraph"
)

// ChangelogServiceServer is the server API for ChangelogService.
type ChangelogServiceServer interface {
	Health(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LoadChangelog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTree(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetGraph(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(ChangelogServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ChangelogServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ChangelogServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc is the grpc.ServiceDesc for ChangelogService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChangelogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Health",
			Handler: unaryHandler(MethodHealth, func(s ChangelogServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.Health(ctx, in)
			}),
		},
		{
			MethodName: "LoadChangelog",
			Handler: unaryHandler(MethodLoadChangelog, func(s ChangelogServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.LoadChangelog(ctx, in)
			}),
		},
		{
			MethodName: "GetTree",
			Handler: unaryHandler(MethodGetTree, func(s ChangelogServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.GetTree(ctx, in)
			}),
		},
		{
			MethodName: "GetGraph",
			Handler: unaryHandler(MethodGetGraph, func(s ChangelogServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.GetGraph(ctx, in)
			}),
		},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterChangelogServiceServer registers srv on s.
func RegisterChangelogServiceServer(s grpc.ServiceRegistrar, srv ChangelogServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ToStruct converts v to a Struct through its JSON encoding. v must encode
// as a JSON object.
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("convert %T to struct: %w", v, err)
	}
	return out, nil
}

// FromStruct decodes s into v through its JSON encoding. A nil s leaves v
// untouched.
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return nil
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode struct into %T: %w", v, err)
	}
	return nil
}
