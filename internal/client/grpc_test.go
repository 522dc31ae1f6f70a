package client

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alfredjeanlab/adcl/internal/model"
	"github.com/alfredjeanlab/adcl/internal/rpc"
)

// fakeService records the last request and answers with canned documents.
type fakeService struct {
	lastMethod string
	lastReq    map[string]any
	lastAuth   string
	fail       error
}

func (f *fakeService) handle(ctx context.Context, method string, in *structpb.Struct, out any) (*structpb.Struct, error) {
	f.lastMethod = method
	f.lastReq = in.AsMap()
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("authorization"); len(v) > 0 {
			f.lastAuth = v[0]
		}
	}
	if f.fail != nil {
		return nil, f.fail
	}
	return rpc.ToStruct(out)
}

func (f *fakeService) Health(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return f.handle(ctx, "Health", in, map[string]string{"status": "ok"})
}

func (f *fakeService) LoadChangelog(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return f.handle(ctx, "LoadChangelog", in, &model.ChangelogSummary{LoadID: "ld-g", Project: "shop", Version: "1.1", Records: 9})
}

func (f *fakeService) GetTree(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return f.handle(ctx, "GetTree", in, &model.TreeResponse{
		Display: model.DisplayStandard,
		Nodes:   []*model.TreeItemNode{{Name: "cart", Code: "root.cart", Children: []*model.TreeItemNode{}}},
	})
}

func (f *fakeService) GetGraph(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return f.handle(ctx, "GetGraph", in, &model.GraphResponse{
		Nodes: []*model.GraphNode{{ID: 0, Label: "shop"}},
		Stats: &model.GraphStats{TotalNodes: 1},
	})
}

func newTestGRPCClient(t *testing.T, svc *fakeService, token string) *GRPCClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	rpc.RegisterChangelogServiceServer(srv, svc)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := NewGRPCClient("passthrough:///bufnet", token,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	if err != nil {
		t.Fatalf("NewGRPCClient: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGRPCClient_Health(t *testing.T) {
	svc := &fakeService{}
	c := newTestGRPCClient(t, svc, "")

	s, err := c.Health(context.Background())
	if err != nil || s != "ok" {
		t.Fatalf("Health = %q, %v", s, err)
	}
	if svc.lastAuth != "" {
		t.Errorf("unexpected auth %q", svc.lastAuth)
	}
}

func TestGRPCClient_LoadChangelog(t *testing.T) {
	svc := &fakeService{}
	c := newTestGRPCClient(t, svc, "secret")

	summary, err := c.LoadChangelog(context.Background(), model.Selection{Project: "shop", Version: "1.1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.lastMethod != "LoadChangelog" || svc.lastReq["project"] != "shop" || svc.lastReq["version"] != "1.1" {
		t.Errorf("request = %s %v", svc.lastMethod, svc.lastReq)
	}
	if svc.lastAuth != "Bearer secret" {
		t.Errorf("auth = %q", svc.lastAuth)
	}
	if summary.LoadID != "ld-g" || summary.Records != 9 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestGRPCClient_Views(t *testing.T) {
	svc := &fakeService{}
	c := newTestGRPCClient(t, svc, "")

	tree, err := c.GetTree(context.Background(), &ViewRequest{Display: "standard", Filter: "p:cart"})
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if svc.lastReq["filter"] != "p:cart" || svc.lastReq["display"] != "standard" {
		t.Errorf("tree request = %v", svc.lastReq)
	}
	if len(tree.Nodes) != 1 || tree.Nodes[0].Code != "root.cart" {
		t.Errorf("tree = %+v", tree.Nodes)
	}

	graph, err := c.GetGraph(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetGraph: %v", err)
	}
	if len(svc.lastReq) != 0 {
		t.Errorf("expected empty graph request, got %v", svc.lastReq)
	}
	if graph.Stats.TotalNodes != 1 || graph.Nodes[0].Label != "shop" {
		t.Errorf("graph = %+v", graph)
	}
}

func TestGRPCClient_StatusError(t *testing.T) {
	svc := &fakeService{fail: status.Error(codes.NotFound, "changelog not found")}
	c := newTestGRPCClient(t, svc, "")

	_, err := c.GetTree(context.Background(), nil)
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
