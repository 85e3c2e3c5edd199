package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zerkz/dxmcp/internal/domain"
)

func Execute() error {
	return newRootCmd().Execute()
}

type options struct {
	orgs     []string
	toolsets string
	authDir  string
	logLevel string
	jsonLogs bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "dxmcp",
		Short:         "dxmcp: MCP server with a runtime-mutable tool catalog over allowed orgs",
		Long:          "dxmcp serves a dynamic capability registry over the Model Context Protocol: a catalog of tools and toolsets that can be enabled and disabled at runtime, scoped to an allow-list of locally authorized orgs.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringSliceVar(&opts.orgs, "orgs",
		splitList(envOrDefault("DXMCP_ORGS", domain.AllowAllOrgs)),
		"allowed org usernames, aliases, or sentinels (ALLOW_ALL_ORGS, DEFAULT_TARGET_ORG, DEFAULT_TARGET_DEV_HUB)")
	rootCmd.PersistentFlags().StringVar(&opts.toolsets, "toolsets",
		envOrDefault("DXMCP_TOOLSETS", "all"),
		"toolsets enabled at startup: all, dynamic, or comma-separated names")
	rootCmd.PersistentFlags().StringVar(&opts.authDir, "auth-dir",
		os.Getenv("DXMCP_AUTH_DIR"),
		"directory holding org authorization files (default ~/.dxmcp/auth)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level",
		envOrDefault("DXMCP_LOG_LEVEL", "info"),
		"log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonLogs, "log-json", false, "emit logs as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(opts),
		newOrgsCmd(opts),
	)

	return rootCmd
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
