package main

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/faciam-dev/gforms/pkg/cliconfig"
	"github.com/faciam-dev/gforms/sdk/client"
)

var loginNonInteractive bool

func newLoginCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save API endpoint and token into ~/.formctl/config.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cliconfig.Load()
			if err != nil {
				return err
			}
			prof, _ := cmd.Root().PersistentFlags().GetString("profile")
			if prof == "" {
				prof = "default"
			}

			url, _ := cmd.Root().PersistentFlags().GetString("api-url")
			tok, _ := cmd.Root().PersistentFlags().GetString("token")
			tid, _ := cmd.Root().PersistentFlags().GetString("tenant")
			if !loginNonInteractive {
				if url == "" {
					url = prompt("API URL", cfg.Profiles[prof].APIURL)
				}
				if tok == "" && username != "" {
					pass := promptSecret("Password")
					cli := client.NewHTTP(url, client.WithTenant(tid))
					tok, err = cli.Login(cmd.Context(), username, pass)
					if err != nil {
						return fmt.Errorf("login failed: %w", err)
					}
				}
				if tok == "" {
					tok = promptSecret("Token (Bearer)")
				}
			}
			if url == "" || tok == "" {
				return fmt.Errorf("api-url and token are required (provide flags or use interactive mode)")
			}

			cp := cfg.Profiles[prof]
			cp.Name = prof
			cp.APIURL = url
			cp.Token = tok
			if tid != "" {
				cp.Tenant = tid
			}
			cfg.Profiles[prof] = cp
			cfg.Active = prof

			if err := cliconfig.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in. Active profile: %s\n", prof)
			return nil
		},
	}
	cmd.Flags().BoolVar(&loginNonInteractive, "non-interactive", false, "Fail instead of prompting")
	cmd.Flags().StringVar(&username, "username", "", "Exchange username/password for a token")
	return cmd
}

func prompt(label, def string) string {
	fmt.Printf("%s [%s]: ", label, def)
	var s string
	if _, err := fmt.Scanln(&s); err != nil {
		return def
	}
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func promptSecret(label string) string {
	fmt.Printf("%s: ", label)
	b, _ := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return strings.TrimSpace(string(b))
}
