package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	orgsrender "github.com/zerkz/dxmcp/internal/adapters/render/orgs"
)

func newOrgsCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "orgs",
		Short: "List the orgs the server is allowed to operate on",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(opts)
			if err != nil {
				return err
			}

			orgList, err := a.resolver.AllowedOrgs(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(orgList, "", "  ")
				if err != nil {
					return fmt.Errorf("encode orgs: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), orgsrender.Render(orgList))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
