package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSubmissionsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "submissions", Short: "Manage form submissions"}
	cmd.AddCommand(newSubmissionsListCmd())
	cmd.AddCommand(newSubmissionsCreateCmd())
	cmd.AddCommand(newSubmissionsDeleteCmd())
	return cmd
}

func newSubmissionsListCmd() *cobra.Command {
	var schemaID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a schema's submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if schemaID == "" {
				return fmt.Errorf("--schema is required")
			}
			cli, err := apiClient(cmd)
			if err != nil {
				return err
			}
			subs, err := cli.ListSubmissions(cmd.Context(), schemaID)
			if err != nil {
				return err
			}
			return printOutput(subs)
		},
	}
	cmd.Flags().StringVar(&schemaID, "schema", "", "owning schema id")
	return cmd
}

func newSubmissionsCreateCmd() *cobra.Command {
	var schemaID string
	cmd := &cobra.Command{
		Use:   "create <data.json>",
		Short: "Submit data against a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if schemaID == "" {
				return fmt.Errorf("--schema is required")
			}
			data, err := readDataFile(args[0])
			if err != nil {
				return err
			}
			cli, err := apiClient(cmd)
			if err != nil {
				return err
			}
			sub, err := cli.Submit(cmd.Context(), schemaID, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (revision %d)\n", sub.ID, sub.Revision)
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaID, "schema", "", "owning schema id")
	return cmd
}

func newSubmissionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := apiClient(cmd)
			if err != nil {
				return err
			}
			if err := cli.DeleteSubmission(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func readDataFile(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return data, nil
}
