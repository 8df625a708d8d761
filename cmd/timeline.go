package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ghostlock/console/internal/timeline"
)

var timelineLimit int

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show the activity timeline, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireSession()
		if err != nil {
			return err
		}

		events, err := client.ListTimeline(cmd.Context(), timelineLimit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No activity yet.")
			return nil
		}

		for _, item := range timeline.Render(events) {
			fmt.Printf("%s %-12s %s\n", item.Icon, item.TimeLabel, item.Label)
		}
		return nil
	},
}

func init() {
	timelineCmd.Flags().IntVarP(&timelineLimit, "limit", "n", 50, "Maximum events to fetch")
	rootCmd.AddCommand(timelineCmd)
}
