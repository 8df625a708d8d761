package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ghostlock/console/internal/bus"
	"github.com/ghostlock/console/internal/transform"
)

var transformCmd = &cobra.Command{
	Use:   "transform <entity-id>",
	Short: "Run the server-side enrichment for one entity",
	Long: `Runs the server-side transform for one entity. Only entities of kind
ip, domain or url have transform providers; anything else is rejected
before any network call. The entity and relationship collections are
re-fetched after a successful run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entityID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entity id %q", args[0])
		}

		client, err := requireSession()
		if err != nil {
			return err
		}

		snap, err := loadSnapshot(cmd.Context(), client)
		if err != nil {
			return err
		}

		entity, ok := snap.EntityByID(entityID)
		if !ok {
			return fmt.Errorf("entity %d not found", entityID)
		}

		orch := transform.New(client, snap, newLogger("[transform] "))
		summary, err := orch.Run(cmd.Context(), entityID)
		if err != nil {
			return err
		}

		fmt.Printf("Transform complete: %d new entities, %d new relationships\n",
			summary.NewEntities, summary.NewEdges)
		if summary.Message != "" {
			fmt.Printf("Note: %s\n", summary.Message)
		}

		b := bus.NewBus(viper.GetString("redis.url"), newLogger("[bus] "))
		defer b.Close()
		if err := b.PublishTransform(cmd.Context(), bus.TransformMessage{
			EntityID:    entityID,
			EntityName:  entity.Name,
			NewEntities: summary.NewEntities,
			NewEdges:    summary.NewEdges,
			Message:     summary.Message,
		}); err != nil {
			newLogger("[bus] ").Printf("failed to publish transform result: %v", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transformCmd)
}
