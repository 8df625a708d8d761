package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ghostlock/console/internal/filter"
)

var (
	caseQuery       string
	caseDescription string
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Manage investigative cases",
}

var casesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireSession()
		if err != nil {
			return err
		}

		cases, err := client.ListCases(cmd.Context())
		if err != nil {
			return err
		}
		cases = filter.Cases(cases, filter.CaseCriteria{TextQuery: caseQuery})

		if len(cases) == 0 {
			fmt.Println("No cases.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
		for _, c := range cases {
			fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, c.Description)
		}
		return w.Flush()
	},
}

var casesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireSession()
		if err != nil {
			return err
		}

		created, err := client.CreateCase(cmd.Context(), args[0], caseDescription)
		if err != nil {
			return err
		}
		fmt.Printf("Created case #%d %s\n", created.ID, created.Name)
		publishActivity(cmd.Context(), "created", "case", created.ID, created.Name, "")
		return nil
	},
}

var casesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a case and everything it owns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid case id %q", args[0])
		}

		client, err := requireSession()
		if err != nil {
			return err
		}

		if err := client.DeleteCase(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted case #%d (entities and relationships cascade)\n", id)
		publishActivity(cmd.Context(), "deleted", "case", id, "", "entities and relationships cascade")
		return nil
	},
}

func init() {
	casesListCmd.Flags().StringVarP(&caseQuery, "query", "q", "", "Case-insensitive substring filter on name/description")
	casesCreateCmd.Flags().StringVarP(&caseDescription, "description", "d", "", "Case description")

	casesCmd.AddCommand(casesListCmd)
	casesCmd.AddCommand(casesCreateCmd)
	casesCmd.AddCommand(casesDeleteCmd)
	rootCmd.AddCommand(casesCmd)
}
