package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ghostlock/console/internal/archive"
	"github.com/ghostlock/console/internal/model"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <case-id>",
	Short: "Snapshot a case into the local SQLite archive",
	Long: `Freezes one case (entities, relationships and their comments) into the
local archive database for offline evidence retention. Snapshots are
immutable; run again to capture a newer state.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid case id %q", args[0])
		}

		client, err := requireSession()
		if err != nil {
			return err
		}

		snap, err := loadSnapshot(cmd.Context(), client)
		if err != nil {
			return err
		}

		c, ok := snap.CaseByID(caseID)
		if !ok {
			return fmt.Errorf("case %d not found", caseID)
		}

		var entities []model.Entity
		ids := make(map[int64]bool)
		for _, e := range snap.Entities() {
			if e.CaseID != caseID {
				continue
			}
			ids[e.ID] = true
			entities = append(entities, e)
		}

		var rels []model.Relationship
		for _, r := range snap.Relationships() {
			if ids[r.SourceEntityID] && ids[r.TargetEntityID] {
				rels = append(rels, r)
			}
		}

		var comments []model.Comment
		for _, e := range entities {
			entityComments, err := client.ListComments(cmd.Context(), e.ID)
			if err != nil {
				return err
			}
			comments = append(comments, entityComments...)
		}

		store, err := archive.NewStore(viper.GetString("archive.path"))
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.SaveSnapshot(cmd.Context(), c, entities, rels, comments)
		if err != nil {
			return err
		}

		fmt.Printf("Archived case #%d %q as snapshot %s (%d entities, %d relationships, %d comments)\n",
			c.ID, c.Name, id, len(entities), len(rels), len(comments))
		return nil
	},
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := archive.NewStore(viper.GetString("archive.path"))
		if err != nil {
			return err
		}
		defer store.Close()

		snapshots, err := store.ListSnapshots(cmd.Context())
		if err != nil {
			return err
		}
		if len(snapshots) == 0 {
			fmt.Println("No snapshots.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SNAPSHOT\tCASE\tENTITIES\tRELATIONSHIPS\tCOMMENTS\tCREATED")
		for _, s := range snapshots {
			fmt.Fprintf(w, "%s\t#%d %s\t%d\t%d\t%d\t%s\n",
				s.ID, s.CaseID, s.CaseName, s.Entities, s.Relationships, s.Comments,
				s.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	archiveCmd.AddCommand(archiveListCmd)
	rootCmd.AddCommand(archiveCmd)
}
