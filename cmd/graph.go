package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ghostlock/console/internal/graph"
)

var (
	graphCaseID int64
	graphJSON   bool
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build and print the entity/relationship view-model",
	Long: `Builds the node/edge view-model from the current snapshot. With --case
only that case's entities become nodes, and only relationships with
both endpoints inside the scope become edges. --json emits the raw
view-model for external rendering surfaces.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireSession()
		if err != nil {
			return err
		}

		snap, err := loadSnapshot(cmd.Context(), client)
		if err != nil {
			return err
		}

		var scope *int64
		if cmd.Flags().Changed("case") {
			scope = &graphCaseID
		}
		g := graph.Build(snap.Entities(), snap.Relationships(), scope)

		if graphJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(g)
		}

		if len(g.Nodes) == 0 {
			fmt.Println("No entities in scope.")
			return nil
		}

		fmt.Printf("Nodes (%d):\n", len(g.Nodes))
		for _, n := range g.Nodes {
			fmt.Printf("  #%d %s [%s %s/%s]\n", n.ID, n.Label, n.Detail.Kind, n.Style.Color, n.Style.Shape)
		}
		fmt.Printf("Edges (%d):\n", len(g.Edges))
		for _, e := range g.Edges {
			from, _ := g.NodeByID(e.From)
			to, _ := g.NodeByID(e.To)
			fmt.Printf("  #%d %s -[%s]-> %s\n", e.ID, from.Label, e.Label, to.Label)
		}
		return nil
	},
}

func init() {
	graphCmd.Flags().Int64Var(&graphCaseID, "case", 0, "Restrict the graph to one case id")
	graphCmd.Flags().BoolVar(&graphJSON, "json", false, "Emit the view-model as JSON")
	rootCmd.AddCommand(graphCmd)
}
