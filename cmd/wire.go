package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/zerkz/dxmcp/internal/adapters/aggregator"
	"github.com/zerkz/dxmcp/internal/adapters/conn"
	tomlstore "github.com/zerkz/dxmcp/internal/adapters/orgstore/toml"
	"github.com/zerkz/dxmcp/internal/application"
	"github.com/zerkz/dxmcp/internal/cache"
	"github.com/zerkz/dxmcp/internal/domain"
	"github.com/zerkz/dxmcp/internal/log"
	"github.com/zerkz/dxmcp/internal/mcpserver"
	"github.com/zerkz/dxmcp/internal/version"
)

type app struct {
	logger   *slog.Logger
	cache    *cache.Cache
	resolver *application.OrgResolver
}

func wireApp(opts *options) (*app, error) {
	level, err := log.ParseLevel(opts.logLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger := log.New(log.Config{Level: level, JSON: opts.jsonLogs})

	var store *tomlstore.Store
	if opts.authDir != "" {
		store, err = tomlstore.NewStoreAt(opts.authDir)
	} else {
		store, err = tomlstore.NewStore(viper.New())
	}
	if err != nil {
		return nil, fmt.Errorf("wire org store: %w", err)
	}

	c := cache.Instance()
	resolver := application.NewOrgResolver(c, store, aggregator.New(), conn.NewProvider(store), logger)
	resolver.SetAllowList(domain.NewAllowList(opts.orgs))

	return &app{logger: logger, cache: c, resolver: resolver}, nil
}

// wireServer builds the MCP server with its registries on top of an already
// wired app. Only serve calls this; the registries are process-wide.
func wireServer(a *app, opts *options) (*mcpserver.Server, error) {
	sel, err := mcpserver.ParseSelection(opts.toolsets)
	if err != nil {
		return nil, err
	}

	srv, err := mcpserver.New(mcpserver.Config{
		Name:    "dxmcp",
		Version: version.Version,
		Logger:  a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire mcp server: %w", err)
	}

	deps := mcpserver.Deps{
		Resolver: a.resolver,
		Tools:    application.NewToolRegistry(a.cache, srv, a.logger),
		Toolsets: application.NewToolsetRegistry(a.cache, srv, a.logger),
	}
	if err := srv.Install(deps, sel); err != nil {
		return nil, fmt.Errorf("install tool catalog: %w", err)
	}

	return srv, nil
}
