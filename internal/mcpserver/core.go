package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zerkz/dxmcp/internal/domain"
)

type emptyInput struct{}

type resolveOrgInput struct {
	UsernameOrAlias string `json:"usernameOrAlias" jsonschema:"Username or alias to resolve against the allowed orgs"`
}

type enableToolInput struct {
	Tools []string `json:"tools" jsonschema:"Names of the tools to enable"`
}

type disableToolInput struct {
	Tool string `json:"tool" jsonschema:"Name of the tool to disable"`
}

type toolsetInput struct {
	Toolset string `json:"toolset" jsonschema:"Name of the toolset"`
}

// registerCoreTools installs the always-on management tools. These bypass
// the registries on purpose: they must stay callable no matter what the
// dynamic catalog looks like.
func (s *Server) registerCoreTools() error {
	core := []func() error{
		func() error {
			return registerTool(s, "list-all-orgs",
				"List every org the server is allowed to operate on, with aliases and connection details.",
				s.handleListAllOrgs)
		},
		func() error {
			return registerTool(s, "resolve-org",
				"Resolve a username or alias to a single allowed org.",
				s.handleResolveOrg)
		},
		func() error {
			return registerTool(s, "list-tools",
				"List every registered tool and whether it is currently enabled.",
				s.handleListTools)
		},
		func() error {
			return registerTool(s, "enable-tool",
				"Enable one or more registered tools by name. Reports per-tool outcomes.",
				s.handleEnableTool)
		},
		func() error {
			return registerTool(s, "disable-tool",
				"Disable a registered tool by name.",
				s.handleDisableTool)
		},
		func() error {
			return registerTool(s, "enable-toolset",
				"Enable a toolset and every tool it contains.",
				s.handleEnableToolset)
		},
		func() error {
			return registerTool(s, "disable-toolset",
				"Disable a toolset and every tool it contains.",
				s.handleDisableToolset)
		},
		func() error {
			return registerTool(s, "list-toolsets",
				"List every toolset with its member tools and enabled state.",
				s.handleListToolsets)
		},
	}

	for _, register := range core {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleListAllOrgs(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	orgList, err := s.resolver.AllowedOrgs(ctx)
	if err != nil {
		if declined(err) {
			return declinedResult(err)
		}
		return nil, nil, err
	}
	return jsonResult(orgList)
}

func (s *Server) handleResolveOrg(ctx context.Context, _ *mcp.CallToolRequest, in resolveOrgInput) (*mcp.CallToolResult, any, error) {
	org, err := s.resolver.ResolveOrg(ctx, in.UsernameOrAlias)
	if err != nil {
		if declined(err) {
			return declinedResult(err)
		}
		return nil, nil, err
	}
	return jsonResult(org)
}

func (s *Server) handleListTools(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	return jsonResult(s.tools.List())
}

func (s *Server) handleEnableTool(_ context.Context, _ *mcp.CallToolRequest, in enableToolInput) (*mcp.CallToolResult, any, error) {
	if len(in.Tools) == 0 {
		return declinedResult(fmt.Errorf("%w: no tool names given", domain.ErrToolNotFound))
	}
	return jsonResult(s.tools.EnableMany(in.Tools))
}

func (s *Server) handleDisableTool(_ context.Context, _ *mcp.CallToolRequest, in disableToolInput) (*mcp.CallToolResult, any, error) {
	if err := s.tools.Disable(in.Tool); err != nil {
		if declined(err) {
			return declinedResult(err)
		}
		return nil, nil, err
	}
	return textResult(fmt.Sprintf("disabled %s", in.Tool))
}

func (s *Server) handleEnableToolset(_ context.Context, _ *mcp.CallToolRequest, in toolsetInput) (*mcp.CallToolResult, any, error) {
	if err := s.toolsets.Enable(domain.ToolsetName(in.Toolset)); err != nil {
		if declined(err) {
			return declinedResult(err)
		}
		return nil, nil, err
	}
	return textResult(fmt.Sprintf("enabled toolset %s", in.Toolset))
}

func (s *Server) handleDisableToolset(_ context.Context, _ *mcp.CallToolRequest, in toolsetInput) (*mcp.CallToolResult, any, error) {
	if err := s.toolsets.Disable(domain.ToolsetName(in.Toolset)); err != nil {
		if declined(err) {
			return declinedResult(err)
		}
		return nil, nil, err
	}
	return textResult(fmt.Sprintf("disabled toolset %s", in.Toolset))
}

func (s *Server) handleListToolsets(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	return jsonResult(s.toolsets.List())
}
