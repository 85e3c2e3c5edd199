package mcpserver

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zerkz/dxmcp/internal/application"
	"github.com/zerkz/dxmcp/internal/domain"
)

const apiVersion = "v64.0"

type Deps struct {
	Resolver *application.OrgResolver
	Tools    *application.ToolRegistry
	Toolsets *application.ToolsetRegistry
}

// Selection is the startup toolset choice. Exactly one of All, Dynamic, or
// a non-empty Names is set.
type Selection struct {
	All     bool
	Dynamic bool
	Names   []domain.ToolsetName
}

// ParseSelection parses the --toolsets argument: "all" (default), "dynamic"
// (register the catalog but enable nothing), or comma-separated toolset
// names.
func ParseSelection(arg string) (Selection, error) {
	switch strings.TrimSpace(arg) {
	case "", "all":
		return Selection{All: true}, nil
	case "dynamic":
		return Selection{Dynamic: true}, nil
	}

	known := domain.KnownToolsets()
	var names []domain.ToolsetName
	for _, raw := range strings.Split(arg, ",") {
		name := domain.ToolsetName(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		found := false
		for _, k := range known {
			if k == name {
				found = true
				break
			}
		}
		if !found {
			return Selection{}, fmt.Errorf("unknown toolset %q (known: %s)", name, joinToolsets(known))
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return Selection{}, fmt.Errorf("empty toolset selection %q", arg)
	}
	return Selection{Names: names}, nil
}

func joinToolsets(names []domain.ToolsetName) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// Install wires the registries to the server, registers the core tools,
// populates the toolset catalog, and applies the startup selection.
func (s *Server) Install(deps Deps, sel Selection) error {
	s.resolver = deps.Resolver
	s.tools = deps.Tools
	s.toolsets = deps.Toolsets

	if err := s.registerCoreTools(); err != nil {
		return fmt.Errorf("register core tools: %w", err)
	}

	for _, entry := range s.catalog() {
		handle, err := entry.build(s)
		if err != nil {
			return fmt.Errorf("build tool for toolset %s: %w", entry.toolset, err)
		}
		tool, err := deps.Tools.Add(handle, false)
		if err != nil {
			return fmt.Errorf("register %s: %w", handle.Name(), err)
		}
		if err := deps.Toolsets.AddTool(entry.toolset, tool); err != nil {
			return fmt.Errorf("add %s to toolset %s: %w", handle.Name(), entry.toolset, err)
		}
	}

	var startup []domain.ToolsetName
	switch {
	case sel.All:
		startup = domain.KnownToolsets()
	case sel.Dynamic:
		startup = nil
	default:
		startup = sel.Names
	}
	for _, name := range startup {
		if err := deps.Toolsets.Enable(name); err != nil {
			return fmt.Errorf("enable toolset %s: %w", name, err)
		}
	}

	return nil
}

type catalogEntry struct {
	toolset domain.ToolsetName
	build   func(s *Server) (*serverTool, error)
}

func (s *Server) catalog() []catalogEntry {
	return []catalogEntry{
		{domain.ToolsetOrgs, func(s *Server) (*serverTool, error) {
			return newServerTool(s, "org-details",
				"Show the full sanitized detail record for one allowed org.",
				s.handleOrgDetails)
		}},
		{domain.ToolsetOrgs, func(s *Server) (*serverTool, error) {
			return newServerTool(s, "default-org",
				"Show which org the local configuration designates as the default target org or dev hub.",
				s.handleDefaultOrg)
		}},
		{domain.ToolsetData, func(s *Server) (*serverTool, error) {
			return newServerTool(s, "build-query-request",
				"Build an authenticated SOQL query request against an allowed org.",
				s.handleBuildQueryRequest)
		}},
		{domain.ToolsetMetadata, func(s *Server) (*serverTool, error) {
			return newServerTool(s, "build-deploy-request",
				"Build a metadata deploy request against an allowed org.",
				s.handleBuildDeployRequest)
		}},
		{domain.ToolsetTesting, func(s *Server) (*serverTool, error) {
			return newServerTool(s, "build-test-run-request",
				"Build an asynchronous Apex test run request against an allowed org.",
				s.handleBuildTestRunRequest)
		}},
		{domain.ToolsetUsers, func(s *Server) (*serverTool, error) {
			return newServerTool(s, "build-user-query-request",
				"Build a user lookup request against an allowed org.",
				s.handleBuildUserQueryRequest)
		}},
	}
}

type defaultOrgInput struct {
	DevHub bool `json:"devHub,omitempty" jsonschema:"Resolve the default dev hub instead of the default target org"`
}

type queryRequestInput struct {
	UsernameOrAlias string `json:"usernameOrAlias" jsonschema:"Username or alias of the org to query"`
	Query           string `json:"query" jsonschema:"The SOQL query to run"`
}

type deployRequestInput struct {
	UsernameOrAlias string `json:"usernameOrAlias" jsonschema:"Username or alias of the org to deploy to"`
	SourceDir       string `json:"sourceDir,omitempty" jsonschema:"Local source directory to deploy"`
}

type testRunRequestInput struct {
	UsernameOrAlias string   `json:"usernameOrAlias" jsonschema:"Username or alias of the org to run tests in"`
	ClassNames      []string `json:"classNames,omitempty" jsonschema:"Apex test classes to run; empty runs all local tests"`
}

type userQueryRequestInput struct {
	UsernameOrAlias string `json:"usernameOrAlias" jsonschema:"Username or alias of the org to look users up in"`
	Username        string `json:"username,omitempty" jsonschema:"Filter on the user's username"`
}

// apiRequest is the prepared request handed back to the caller. The server
// never performs these itself.
type apiRequest struct {
	Org    string `json:"org"`
	Method string `json:"method"`
	URL    string `json:"url"`
	Body   any    `json:"body,omitempty"`
}

func (s *Server) handleOrgDetails(ctx context.Context, _ *mcp.CallToolRequest, in resolveOrgInput) (*mcp.CallToolResult, any, error) {
	org, err := s.resolver.ResolveOrg(ctx, in.UsernameOrAlias)
	if err != nil {
		if declined(err) {
			return declinedResult(err)
		}
		return nil, nil, err
	}
	return jsonResult(org)
}

func (s *Server) handleDefaultOrg(ctx context.Context, _ *mcp.CallToolRequest, in defaultOrgInput) (*mcp.CallToolResult, any, error) {
	key := domain.KeyTargetOrg
	if in.DevHub {
		key = domain.KeyTargetDevHub
	}
	ref, err := s.resolver.ResolveDefault(ctx, key)
	if err != nil {
		if declined(err) {
			return declinedResult(err)
		}
		return nil, nil, err
	}
	return jsonResult(ref)
}

func (s *Server) handleBuildQueryRequest(ctx context.Context, _ *mcp.CallToolRequest, in queryRequestInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(in.Query) == "" {
		return declinedResult(fmt.Errorf("query must not be empty"))
	}
	conn, err := s.resolver.ResolveConnection(ctx, in.UsernameOrAlias)
	if err != nil {
		if declined(err) {
			return declinedResult(err)
		}
		return nil, nil, err
	}
	return jsonResult(apiRequest{
		Org:    string(conn.Username()),
		Method: "GET",
		URL:    fmt.Sprintf("%s/services/data/%s/query?q=%s", conn.InstanceURL(), apiVersion, url.QueryEscape(in.Query)),
	})
}

func (s *Server) handleBuildDeployRequest(ctx context.Context, _ *mcp.CallToolRequest, in deployRequestInput) (*mcp.CallToolResult, any, error) {
	conn, err := s.resolver.ResolveConnection(ctx, in.UsernameOrAlias)
	if err != nil {
		if declined(err) {
			return declinedResult(err)
		}
		return nil, nil, err
	}
	body := map[string]any{}
	if in.SourceDir != "" {
		body["sourceDir"] = in.SourceDir
	}
	return jsonResult(apiRequest{
		Org:    string(conn.Username()),
		Method: "POST",
		URL:    fmt.Sprintf("%s/services/data/%s/metadata/deployRequest", conn.InstanceURL(), apiVersion),
		Body:   body,
	})
}

func (s *Server) handleBuildTestRunRequest(ctx context.Context, _ *mcp.CallToolRequest, in testRunRequestInput) (*mcp.CallToolResult, any, error) {
	conn, err := s.resolver.ResolveConnection(ctx, in.UsernameOrAlias)
	if err != nil {
		if declined(err) {
			return declinedResult(err)
		}
		return nil, nil, err
	}
	body := map[string]any{"testLevel": "RunLocalTests"}
	if len(in.ClassNames) > 0 {
		body["testLevel"] = "RunSpecifiedTests"
		body["classNames"] = strings.Join(in.ClassNames, ",")
	}
	return jsonResult(apiRequest{
		Org:    string(conn.Username()),
		Method: "POST",
		URL:    fmt.Sprintf("%s/services/data/%s/tooling/runTestsAsynchronous", conn.InstanceURL(), apiVersion),
		Body:   body,
	})
}

func (s *Server) handleBuildUserQueryRequest(ctx context.Context, _ *mcp.CallToolRequest, in userQueryRequestInput) (*mcp.CallToolResult, any, error) {
	conn, err := s.resolver.ResolveConnection(ctx, in.UsernameOrAlias)
	if err != nil {
		if declined(err) {
			return declinedResult(err)
		}
		return nil, nil, err
	}
	query := "SELECT Id, Username, Name, IsActive FROM User"
	if in.Username != "" {
		query += fmt.Sprintf(" WHERE Username = '%s'", strings.ReplaceAll(in.Username, "'", "\\'"))
	}
	return jsonResult(apiRequest{
		Org:    string(conn.Username()),
		Method: "GET",
		URL:    fmt.Sprintf("%s/services/data/%s/query?q=%s", conn.InstanceURL(), apiVersion, url.QueryEscape(query)),
	})
}
