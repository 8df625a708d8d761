package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ghostlock/console/internal/bus"
	"github.com/ghostlock/console/internal/cache"
	"github.com/ghostlock/console/internal/transform"
	"github.com/ghostlock/console/internal/ui"
)

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Open the interactive dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireSession()
		if err != nil {
			return err
		}

		b := bus.NewBus(viper.GetString("redis.url"), newLogger("[bus] "))
		defer b.Close()

		snap := cache.New()
		orch := transform.New(client, snap, newLogger("[transform] "))
		app := ui.NewApp(client, snap, orch, b, newLogger("[ui] "))
		return app.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(dashCmd)
}
