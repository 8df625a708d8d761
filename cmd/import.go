package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ghostlock/console/internal/ingest"
)

var importWatchDir string

var importCmd = &cobra.Command{
	Use:   "import <case-id> [file]",
	Short: "Bulk-import entities into a case from CSV or JSON",
	Long: `Imports entities into a case. One-shot mode reads a single .csv or
.json file; with --watch-dir the command keeps running and imports any
matching file dropped into the directory until interrupted.

CSV files need a header row with "name" and "kind" (or "type") columns;
JSON files are an array of {name, kind, description} objects.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid case id %q", args[0])
		}

		client, err := requireSession()
		if err != nil {
			return err
		}

		importer := ingest.NewImporter(client, newLogger("[import] "))

		if importWatchDir != "" {
			watcher := ingest.NewWatcher(importer, ingest.WatchOptions{
				Dir:    importWatchDir,
				CaseID: caseID,
				Logger: newLogger("[import-watch] "),
			})
			fmt.Printf("Watching %s for entity files (Ctrl-C to stop)\n", importWatchDir)
			return watcher.Run(cmd.Context())
		}

		if len(args) < 2 {
			return fmt.Errorf("a file argument is required unless --watch-dir is set")
		}

		result, err := importer.ImportFile(cmd.Context(), caseID, args[1])
		if err != nil {
			return err
		}

		fmt.Println(result.Message())
		for _, e := range result.Errors {
			fmt.Printf("  %s\n", e)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importWatchDir, "watch-dir", "", "Watch a drop folder instead of importing one file")
	rootCmd.AddCommand(importCmd)
}
