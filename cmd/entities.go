package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ghostlock/console/internal/filter"
	"github.com/ghostlock/console/internal/model"
)

var (
	entityQuery       string
	entityCaseID      int64
	entityKind        string
	entityDescription string
)

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "Manage typed investigative entities",
}

var entitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entities, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireSession()
		if err != nil {
			return err
		}

		snap, err := loadSnapshot(cmd.Context(), client)
		if err != nil {
			return err
		}

		criteria := filter.EntityCriteria{TextQuery: entityQuery, Kind: entityKind}
		if cmd.Flags().Changed("case") {
			criteria.CaseID = &entityCaseID
		}
		entities := filter.Entities(snap.Entities(), criteria)

		if len(entities) == 0 {
			fmt.Println("No entities.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tKIND\tCASE\tTRANSFORMS\tDESCRIPTION")
		for _, e := range entities {
			transforms := "-"
			if model.Transformable(e.Kind) {
				transforms = "yes"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				e.ID, e.Name, e.Kind, snap.CaseName(e.CaseID), transforms, e.Description)
		}
		return w.Flush()
	},
}

var entitiesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an entity inside a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("case") {
			return fmt.Errorf("--case is required")
		}
		if entityKind == "" {
			return fmt.Errorf("--kind is required")
		}

		client, err := requireSession()
		if err != nil {
			return err
		}

		created, err := client.CreateEntity(cmd.Context(), entityCaseID, args[0], entityKind, entityDescription)
		if err != nil {
			return err
		}
		fmt.Printf("Created entity #%d %s (%s) in case #%d\n", created.ID, created.Name, created.Kind, created.CaseID)
		publishActivity(cmd.Context(), "created", "entity", created.ID, created.Name, created.Kind)
		return nil
	},
}

var entitiesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entity and its relationships",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entity id %q", args[0])
		}

		client, err := requireSession()
		if err != nil {
			return err
		}

		if err := client.DeleteEntity(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted entity #%d\n", id)
		publishActivity(cmd.Context(), "deleted", "entity", id, "", "")
		return nil
	},
}

func init() {
	entitiesListCmd.Flags().StringVarP(&entityQuery, "query", "q", "", "Case-insensitive substring filter on name/description")
	entitiesListCmd.Flags().Int64Var(&entityCaseID, "case", 0, "Restrict to one case id")
	entitiesListCmd.Flags().StringVarP(&entityKind, "kind", "k", "", "Exact kind filter (case-insensitive)")

	entitiesCreateCmd.Flags().Int64Var(&entityCaseID, "case", 0, "Owning case id (required)")
	entitiesCreateCmd.Flags().StringVarP(&entityKind, "kind", "k", "", "Entity kind, e.g. ip, domain, person (required)")
	entitiesCreateCmd.Flags().StringVarP(&entityDescription, "description", "d", "", "Entity description")

	entitiesCmd.AddCommand(entitiesListCmd)
	entitiesCmd.AddCommand(entitiesCreateCmd)
	entitiesCmd.AddCommand(entitiesDeleteCmd)
	rootCmd.AddCommand(entitiesCmd)
}
