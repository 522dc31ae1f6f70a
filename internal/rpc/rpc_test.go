package rpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

type summary struct {
	Project string   `json:"project"`
	Records int      `json:"records"`
	Codes   []string `json:"codes,omitempty"`
}

func TestStructConversion(t *testing.T) {
	in := summary{Project: "shop", Records: 12, Codes: []string{"root.a", "root.a.B"}}
	s, err := ToStruct(in)
	require.NoError(t, err)
	assert.Equal(t, "shop", s.Fields["project"].GetStringValue())
	assert.Equal(t, float64(12), s.Fields["records"].GetNumberValue())

	var out summary
	require.NoError(t, FromStruct(s, &out))
	assert.Equal(t, in, out)
}

func TestToStructRejectsNonObject(t *testing.T) {
	_, err := ToStruct([]string{"a"})
	assert.Error(t, err)
}

func TestFromStructNil(t *testing.T) {
	out := summary{Project: "keep"}
	require.NoError(t, FromStruct(nil, &out))
	assert.Equal(t, "keep", out.Project)
}

type echoServer struct{ calls []string }

func (e *echoServer) reply(method string, in *structpb.Struct) (*structpb.Struct, error) {
	e.calls = append(e.calls, method)
	return in, nil
}

func (e *echoServer) Health(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return e.reply("Health", in)
}

func (e *echoServer) LoadChangelog(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return e.reply("LoadChangelog", in)
}

func (e *echoServer) GetTree(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return e.reply("GetTree", in)
}

func (e *echoServer) GetGraph(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return e.reply("GetGraph", in)
}

func TestServiceDescHandlers(t *testing.T) {
	srv := &echoServer{}
	in, err := structpb.NewStruct(map[string]any{"filter": "c:b"})
	require.NoError(t, err)

	var seen []string
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		seen = append(seen, info.FullMethod)
		return handler(ctx, req)
	}
	dec := func(v any) error {
		v.(*structpb.Struct).Fields = in.Fields
		return nil
	}

	for _, m := range ServiceDesc.Methods {
		out, err := m.Handler(srv, context.Background(), dec, interceptor)
		require.NoError(t, err)
		assert.Equal(t, "c:b", out.(*structpb.Struct).Fields["filter"].GetStringValue())
	}
	assert.Equal(t, []string{"Health", "LoadChangelog", "GetTree", "GetGraph"}, srv.calls)
	assert.Equal(t, []string{MethodHealth, MethodLoadChangelog, MethodGetTree, MethodGetGraph}, seen)

	// Without an interceptor the call goes straight through.
	_, err = ServiceDesc.Methods[0].Handler(srv, context.Background(), dec, nil)
	require.NoError(t, err)
	assert.Len(t, srv.calls, 5)
}
