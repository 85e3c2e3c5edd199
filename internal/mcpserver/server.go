// Package mcpserver exposes the org resolver and capability registries over
// the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zerkz/dxmcp/internal/application"
	"github.com/zerkz/dxmcp/internal/domain"
	"github.com/zerkz/dxmcp/internal/ports"
)

type Config struct {
	Name    string
	Version string
	Logger  *slog.Logger
}

type Server struct {
	mcp      *mcp.Server
	logger   *slog.Logger
	resolver *application.OrgResolver
	tools    *application.ToolRegistry
	toolsets *application.ToolsetRegistry
}

var _ ports.Notifier = (*Server)(nil)

func New(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, errors.New("server name is required")
	}
	if cfg.Version == "" {
		return nil, errors.New("server version is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		logger: logger,
	}, nil
}

// Run serves the MCP protocol on transport until ctx is done. Blocking.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcp.Run(ctx, transport)
}

// NotifyCapabilityListChanged records that the visible tool list changed.
// The SDK broadcasts tools/list_changed itself when tools are added or
// removed on a running server, so this only logs.
func (s *Server) NotifyCapabilityListChanged() {
	s.logger.Debug("capability list changed")
}

// serverTool ties one catalog tool to the protocol server. Enable registers
// the tool, Disable withdraws it. The registries call both inside their
// atomic update step, so registration state always follows enabled state.
type serverTool struct {
	server *Server
	name   string
	desc   string
	add    func()
}

var _ ports.ToolHandle = (*serverTool)(nil)

func (t *serverTool) Name() string        { return t.name }
func (t *serverTool) Description() string { return t.desc }

func (t *serverTool) Enable() error {
	t.add()
	return nil
}

func (t *serverTool) Disable() error {
	t.server.mcp.RemoveTools(t.name)
	return nil
}

func newServerTool[In any](
	s *Server,
	name, description string,
	handler func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error),
) (*serverTool, error) {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return nil, fmt.Errorf("input schema for %s: %w", name, err)
	}

	tool := &mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: schema,
	}

	st := &serverTool{server: s, name: name, desc: description}
	st.add = func() {
		mcp.AddTool(s.mcp, tool, handler)
	}
	return st, nil
}

func registerTool[In any](
	s *Server,
	name, description string,
	handler func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error),
) error {
	st, err := newServerTool(s, name, description, handler)
	if err != nil {
		return err
	}
	st.add()
	return nil
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

func declinedResult(err error) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}, nil, nil
}

// declined reports whether err describes a request the caller got wrong
// rather than a server fault. Declines go back as error results so the
// session keeps going.
func declined(err error) bool {
	for _, sentinel := range []error{
		domain.ErrOrgNotFound,
		domain.ErrNoAllowedOrgs,
		domain.ErrOrgExpired,
		domain.ErrNoDefaultOrg,
		domain.ErrToolNotFound,
		domain.ErrToolExists,
		domain.ErrToolsetNotFound,
		domain.ErrAlreadyEnabled,
		domain.ErrAlreadyDisabled,
		domain.ErrMemberExists,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
