package kit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testImpl = &mcp.Implementation{Name: "kit-test", Version: "0.1.0"}

func session(t *testing.T, register func(*mcp.Server)) *mcp.ClientSession {
	t.Helper()
	srv := mcp.NewServer(testImpl, nil)
	register(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testImpl, nil)
	s, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func echoTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "echo",
		Description: "Returns its input.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"msg": map[string]any{"type": "string"},
			},
		},
	}
}

func TestRegisterMCPToolRoundTrip(t *testing.T) {
	endpoint := func(_ context.Context, req any) (any, error) {
		return map[string]string{"echo": req.(string)}, nil
	}
	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return r.Msg, nil
	}

	s := session(t, func(srv *mcp.Server) {
		RegisterMCPTool(srv, echoTool(), endpoint, decode)
	})

	result, err := s.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "echo",
		Arguments: map[string]any{"msg": "szia"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if err := result.GetError(); err != nil {
		t.Fatalf("tool error: %v", err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatal("expected TextContent")
	}
	var resp struct {
		Echo string `json:"echo"`
	}
	if err := json.Unmarshal([]byte(tc.Text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Echo != "szia" {
		t.Fatalf("echo = %q", resp.Echo)
	}
}

func TestRegisterMCPToolEndpointErrorInBand(t *testing.T) {
	endpoint := func(context.Context, any) (any, error) {
		return nil, errors.New("boom")
	}
	decode := func(*mcp.CallToolRequest) (any, error) { return nil, nil }

	s := session(t, func(srv *mcp.Server) {
		RegisterMCPTool(srv, echoTool(), endpoint, decode)
	})

	result, err := s.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "echo",
		Arguments: map[string]any{},
	})
	if err != nil {
		t.Fatalf("CallTool must not fail at protocol level: %v", err)
	}
	if result.GetError() == nil {
		t.Fatal("expected in-band tool error")
	}
}
