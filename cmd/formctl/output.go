package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/faciam-dev/gforms/pkg/formschema"
)

// printOutput prints data in either JSON or table format based on the
// --output flag.
func printOutput(v any) error {
	format, err := rootCmd.PersistentFlags().GetString("output")
	if err != nil {
		return err
	}
	if format == "json" {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}
	switch x := v.(type) {
	case []formschema.Schema:
		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetHeader([]string{"ID", "Name", "Table", "Fields", "Updated"})
		for _, s := range x {
			tw.Append([]string{s.ID, s.Name, s.TableName, strconv.Itoa(len(s.Definition.Fields)), s.UpdatedAt.Format("2006-01-02 15:04")})
		}
		tw.Render()
	case []formschema.Submission:
		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetHeader([]string{"ID", "Schema", "Revision", "Created"})
		for _, s := range x {
			tw.Append([]string{s.ID, s.SchemaID, strconv.FormatInt(s.Revision, 10), s.CreatedAt.Format("2006-01-02 15:04")})
		}
		tw.Render()
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
	}
	return nil
}
