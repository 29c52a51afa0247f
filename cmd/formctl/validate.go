package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/faciam-dev/gforms/pkg/formschema"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <schema.json>",
		Short: "Parse and compile a schema document locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			def, err := formschema.ParseDefinition(raw)
			if err != nil {
				return err
			}
			if _, err := formschema.Compile(def); err != nil {
				var ce *formschema.CompileError
				if errors.As(err, &ce) {
					return fmt.Errorf("field %q: %w", ce.Field, err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d fields\n", len(def.Fields))
			return nil
		},
	}
}
