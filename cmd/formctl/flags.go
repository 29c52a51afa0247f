package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faciam-dev/gforms/pkg/cliconfig"
	"github.com/faciam-dev/gforms/sdk/client"
)

// apiClient builds a REST client from flags, falling back to the active
// profile in ~/.formctl/config.json.
func apiClient(cmd *cobra.Command) (client.Client, error) {
	url, _ := cmd.Root().PersistentFlags().GetString("api-url")
	tok, _ := cmd.Root().PersistentFlags().GetString("token")
	tid, _ := cmd.Root().PersistentFlags().GetString("tenant")

	if url == "" || tok == "" {
		cfg, err := cliconfig.Load()
		if err != nil {
			return nil, err
		}
		prof, _ := cmd.Root().PersistentFlags().GetString("profile")
		if prof == "" {
			prof = cfg.Active
		}
		p, ok := cfg.Profiles[prof]
		if !ok {
			return nil, fmt.Errorf("profile %q not found; run formctl login", prof)
		}
		if url == "" {
			url = p.APIURL
		}
		if tok == "" {
			tok = p.Token
		}
		if tid == "" {
			tid = p.Tenant
		}
	}
	if url == "" {
		return nil, fmt.Errorf("api-url is required")
	}
	opts := []client.Option{client.WithToken(tok)}
	if tid != "" {
		opts = append(opts, client.WithTenant(tid))
	}
	return client.NewHTTP(url, opts...), nil
}
