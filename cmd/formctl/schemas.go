package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSchemasCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "schemas", Short: "Manage form schemas"}
	cmd.AddCommand(newSchemasListCmd())
	cmd.AddCommand(newSchemasGetCmd())
	cmd.AddCommand(newSchemasApplyCmd())
	cmd.AddCommand(newSchemasDeleteCmd())
	cmd.AddCommand(newSchemasRenderCmd())
	return cmd
}

func newSchemasListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List form schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := apiClient(cmd)
			if err != nil {
				return err
			}
			ss, err := cli.ListSchemas(cmd.Context())
			if err != nil {
				return err
			}
			return printOutput(ss)
		},
	}
}

func newSchemasGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one form schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := apiClient(cmd)
			if err != nil {
				return err
			}
			s, err := cli.GetSchema(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printOutput(s)
		},
	}
}

func newSchemasApplyCmd() *cobra.Command {
	var name, description, id string
	cmd := &cobra.Command{
		Use:   "apply <schema.json>",
		Short: "Create a schema from a JSON document, or replace it when --id is set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			cli, err := apiClient(cmd)
			if err != nil {
				return err
			}
			if id != "" {
				s, err := cli.UpdateSchema(cmd.Context(), id, name, description, string(raw))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", s.ID)
				return nil
			}
			s, err := cli.CreateSchema(cmd.Context(), name, description, string(raw))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", s.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "schema name")
	cmd.Flags().StringVar(&description, "description", "", "schema description")
	cmd.Flags().StringVar(&id, "id", "", "replace this schema instead of creating one")
	return cmd
}

func newSchemasDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a form schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := apiClient(cmd)
			if err != nil {
				return err
			}
			if err := cli.DeleteSchema(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newSchemasRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <id>",
		Short: "Print the render plan of a form schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := apiClient(cmd)
			if err != nil {
				return err
			}
			plan, err := cli.Render(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printOutput(plan)
		},
	}
}
