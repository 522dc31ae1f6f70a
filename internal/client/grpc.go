package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alfredjeanlab/adcl/internal/model"
	"github.com/alfredjeanlab/adcl/internal/rpc"
)

// GRPCClient implements ViewClient using the gRPC transport.
type GRPCClient struct {
	conn  *grpc.ClientConn
	token string
}

var _ ViewClient = (*GRPCClient)(nil)

// NewGRPCClient connects to the given gRPC address and returns a client.
// When token is non-empty it is sent as a Bearer authorization header.
func NewGRPCClient(addr, token string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &GRPCClient{conn: conn, token: token}, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) LoadChangelog(ctx context.Context, sel model.Selection) (*model.ChangelogSummary, error) {
	var summary model.ChangelogSummary
	if err := c.invoke(ctx, rpc.MethodLoadChangelog, sel, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *GRPCClient) GetTree(ctx context.Context, req *ViewRequest) (*model.TreeResponse, error) {
	if req == nil {
		req = &ViewRequest{}
	}
	var resp model.TreeResponse
	if err := c.invoke(ctx, rpc.MethodGetTree, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *GRPCClient) GetGraph(ctx context.Context, req *ViewRequest) (*model.GraphResponse, error) {
	if req == nil {
		req = &ViewRequest{}
	}
	var resp model.GraphResponse
	if err := c.invoke(ctx, rpc.MethodGetGraph, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *GRPCClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.invoke(ctx, rpc.MethodHealth, struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// invoke sends req as a Struct and decodes the Struct reply into result.
func (c *GRPCClient) invoke(ctx context.Context, method string, req, result any) error {
	in, err := rpc.ToStruct(req)
	if err != nil {
		return err
	}
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return err
	}
	return rpc.FromStruct(out, result)
}
