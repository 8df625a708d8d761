package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ghostlock/console/internal/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <case-id>",
	Short: "Export a case with its entities and relationships",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid case id %q", args[0])
		}

		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		client, err := requireSession()
		if err != nil {
			return err
		}

		snap, err := loadSnapshot(cmd.Context(), client)
		if err != nil {
			return err
		}

		doc, err := export.Collect(snap, caseID)
		if err != nil {
			return err
		}

		out := os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		if err := export.Write(out, doc, format); err != nil {
			return err
		}
		if exportOut != "" {
			fmt.Fprintf(os.Stderr, "Exported case #%d (%d entities, %d relationships) to %s\n",
				caseID, len(doc.Entities), len(doc.Relationships), exportOut)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: json or csv")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
