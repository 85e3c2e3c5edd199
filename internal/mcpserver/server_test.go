package mcpserver

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerkz/dxmcp/internal/application"
	"github.com/zerkz/dxmcp/internal/cache"
	"github.com/zerkz/dxmcp/internal/domain"
	"github.com/zerkz/dxmcp/internal/ports"
)

type fakeStore struct {
	auths []domain.OrgAuthorization
}

func (s *fakeStore) ListAllAuthorizations(_ context.Context) ([]domain.OrgAuthorization, error) {
	return s.auths, nil
}

type fakeAggregator struct {
	refs map[domain.ConfigKey]domain.DefaultRef
}

func (a *fakeAggregator) Reload() {}

func (a *fakeAggregator) ResolveDefault(_ context.Context, key domain.ConfigKey) (domain.DefaultRef, error) {
	ref, ok := a.refs[key]
	if !ok {
		return domain.DefaultRef{}, domain.ErrNoDefaultOrg
	}
	return ref, nil
}

type fakeConnection struct {
	username    domain.OrgUsername
	instanceURL string
}

func (c *fakeConnection) Username() domain.OrgUsername { return c.username }
func (c *fakeConnection) InstanceURL() string          { return c.instanceURL }

type fakeConnProvider struct{}

func (p *fakeConnProvider) Create(_ context.Context, username domain.OrgUsername) (ports.Connection, error) {
	return &fakeConnection{username: username, instanceURL: "https://test.my.host"}, nil
}

func newTestServer(t *testing.T, sel Selection) *Server {
	t.Helper()

	srv, err := New(Config{Name: "dxmcp-test", Version: "0.0.0-test"})
	require.NoError(t, err)

	c := cache.New()
	store := &fakeStore{auths: []domain.OrgAuthorization{
		{Username: "dev@example.com", Aliases: []string{"my-alias"}, InstanceURL: "https://dev.my.host"},
	}}
	resolver := application.NewOrgResolver(c, store, &fakeAggregator{}, &fakeConnProvider{}, nil)
	resolver.SetAllowList(domain.NewAllowList([]string{domain.AllowAllOrgs}))

	deps := Deps{
		Resolver: resolver,
		Tools:    application.NewToolRegistry(c, srv, nil),
		Toolsets: application.NewToolsetRegistry(c, srv, nil),
	}
	require.NoError(t, srv.Install(deps, sel))
	return srv
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    Selection
		wantErr bool
	}{
		{name: "default is all", arg: "", want: Selection{All: true}},
		{name: "all", arg: "all", want: Selection{All: true}},
		{name: "dynamic", arg: "dynamic", want: Selection{Dynamic: true}},
		{name: "explicit names", arg: "orgs, data", want: Selection{Names: []domain.ToolsetName{domain.ToolsetOrgs, domain.ToolsetData}}},
		{name: "unknown name", arg: "orgs,bogus", wantErr: true},
		{name: "only separators", arg: ",", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSelection(tc.arg)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInstallAllEnablesEveryToolset(t *testing.T) {
	srv := newTestServer(t, Selection{All: true})

	for _, ts := range srv.toolsets.List() {
		assert.True(t, ts.Enabled, "toolset %s", ts.Name)
	}
	for _, tool := range srv.tools.List() {
		assert.True(t, tool.Enabled, "tool %s", tool.Name)
	}
}

func TestInstallDynamicEnablesNothing(t *testing.T) {
	srv := newTestServer(t, Selection{Dynamic: true})

	assert.NotEmpty(t, srv.tools.List())
	for _, tool := range srv.tools.List() {
		assert.False(t, tool.Enabled, "tool %s", tool.Name)
	}
}

func TestInstallExplicitNames(t *testing.T) {
	srv := newTestServer(t, Selection{Names: []domain.ToolsetName{domain.ToolsetData}})

	for _, ts := range srv.toolsets.List() {
		if ts.Name == domain.ToolsetData {
			assert.True(t, ts.Enabled)
			continue
		}
		assert.False(t, ts.Enabled, "toolset %s", ts.Name)
	}
}

func TestResolveOrgHandler(t *testing.T) {
	srv := newTestServer(t, Selection{All: true})

	result, _, err := srv.handleResolveOrg(context.Background(), &mcp.CallToolRequest{}, resolveOrgInput{UsernameOrAlias: "my-alias"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, textOf(t, result), "dev@example.com")
}

func TestResolveOrgHandlerUnknownIsDeclined(t *testing.T) {
	srv := newTestServer(t, Selection{All: true})

	result, _, err := srv.handleResolveOrg(context.Background(), &mcp.CallToolRequest{}, resolveOrgInput{UsernameOrAlias: "nobody@example.com"})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestDisableToolHandlerUnknownIsDeclined(t *testing.T) {
	srv := newTestServer(t, Selection{All: true})

	result, _, err := srv.handleDisableTool(context.Background(), &mcp.CallToolRequest{}, disableToolInput{Tool: "no-such-tool"})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestEnableToolHandlerReportsPerTool(t *testing.T) {
	srv := newTestServer(t, Selection{Dynamic: true})

	result, _, err := srv.handleEnableTool(context.Background(), &mcp.CallToolRequest{}, enableToolInput{Tools: []string{"org-details", "missing"}})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	text := textOf(t, result)
	assert.Contains(t, text, "org-details")
	assert.Contains(t, text, "not found")
}

func TestToolsetHandlersRoundTrip(t *testing.T) {
	srv := newTestServer(t, Selection{Dynamic: true})

	result, _, err := srv.handleEnableToolset(context.Background(), &mcp.CallToolRequest{}, toolsetInput{Toolset: "data"})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	status, err := srv.toolsets.Status(domain.ToolsetData)
	require.NoError(t, err)
	assert.True(t, status.Enabled)

	// A second enable is a decline, not a fault.
	result, _, err = srv.handleEnableToolset(context.Background(), &mcp.CallToolRequest{}, toolsetInput{Toolset: "data"})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, _, err = srv.handleDisableToolset(context.Background(), &mcp.CallToolRequest{}, toolsetInput{Toolset: "data"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
}

func TestBuildQueryRequestHandler(t *testing.T) {
	srv := newTestServer(t, Selection{All: true})

	result, _, err := srv.handleBuildQueryRequest(context.Background(), &mcp.CallToolRequest{}, queryRequestInput{
		UsernameOrAlias: "dev@example.com",
		Query:           "SELECT Id FROM Account",
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	text := textOf(t, result)
	assert.Contains(t, text, "https://test.my.host/services/data/"+apiVersion+"/query")
	assert.Contains(t, text, "SELECT+Id+FROM+Account")
}

func TestBuildQueryRequestHandlerEmptyQuery(t *testing.T) {
	srv := newTestServer(t, Selection{All: true})

	result, _, err := srv.handleBuildQueryRequest(context.Background(), &mcp.CallToolRequest{}, queryRequestInput{
		UsernameOrAlias: "dev@example.com",
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestListHandlers(t *testing.T) {
	srv := newTestServer(t, Selection{All: true})

	result, _, err := srv.handleListTools(context.Background(), &mcp.CallToolRequest{}, emptyInput{})
	require.NoError(t, err)
	assert.Contains(t, textOf(t, result), "build-query-request")

	result, _, err = srv.handleListToolsets(context.Background(), &mcp.CallToolRequest{}, emptyInput{})
	require.NoError(t, err)
	text := textOf(t, result)
	for _, name := range domain.KnownToolsets() {
		assert.Contains(t, text, string(name))
	}

	result, _, err = srv.handleListAllOrgs(context.Background(), &mcp.CallToolRequest{}, emptyInput{})
	require.NoError(t, err)
	assert.Contains(t, textOf(t, result), "dev@example.com")
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}
