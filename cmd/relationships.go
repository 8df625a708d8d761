package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ghostlock/console/internal/filter"
)

var relQuery string

var relationshipsCmd = &cobra.Command{
	Use:     "relationships",
	Aliases: []string{"rels"},
	Short:   "Manage directed relationships between entities",
}

var relationshipsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List relationships with resolved endpoint names",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireSession()
		if err != nil {
			return err
		}

		snap, err := loadSnapshot(cmd.Context(), client)
		if err != nil {
			return err
		}

		rels := filter.Relationships(snap.Relationships(), filter.RelationshipCriteria{TextQuery: relQuery}, snap)
		if len(rels) == 0 {
			fmt.Println("No relationships.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSOURCE\tRELATION\tTARGET")
		for _, r := range rels {
			source := snap.EntityName(r.SourceEntityID)
			if source == "" {
				source = fmt.Sprintf("entity #%d", r.SourceEntityID)
			}
			target := snap.EntityName(r.TargetEntityID)
			if target == "" {
				target = fmt.Sprintf("entity #%d", r.TargetEntityID)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, source, r.Relation, target)
		}
		return w.Flush()
	},
}

var relationshipsCreateCmd = &cobra.Command{
	Use:   "create <source-id> <relation> <target-id>",
	Short: "Create a directed source -> relation -> target edge",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid source entity id %q", args[0])
		}
		targetID, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid target entity id %q", args[2])
		}

		client, err := requireSession()
		if err != nil {
			return err
		}

		created, err := client.CreateRelationship(cmd.Context(), sourceID, targetID, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Created relationship #%d: %d -[%s]-> %d\n",
			created.ID, created.SourceEntityID, created.Relation, created.TargetEntityID)
		publishActivity(cmd.Context(), "created", "relationship", created.ID, created.Relation,
			fmt.Sprintf("%d -> %d", created.SourceEntityID, created.TargetEntityID))
		return nil
	},
}

var relationshipsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a relationship",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid relationship id %q", args[0])
		}

		client, err := requireSession()
		if err != nil {
			return err
		}

		if err := client.DeleteRelationship(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted relationship #%d\n", id)
		publishActivity(cmd.Context(), "deleted", "relationship", id, "", "")
		return nil
	},
}

func init() {
	relationshipsListCmd.Flags().StringVarP(&relQuery, "query", "q", "", "Filter on relation label or endpoint names")

	relationshipsCmd.AddCommand(relationshipsListCmd)
	relationshipsCmd.AddCommand(relationshipsCreateCmd)
	relationshipsCmd.AddCommand(relationshipsDeleteCmd)
	rootCmd.AddCommand(relationshipsCmd)
}
