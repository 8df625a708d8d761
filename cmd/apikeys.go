package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var apikeyDescription string

var apikeysCmd = &cobra.Command{
	Use:   "apikeys",
	Short: "Manage transform provider API keys stored on the server",
}

var apikeysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored API keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireSession()
		if err != nil {
			return err
		}

		keys, err := client.ListAPIKeys(cmd.Context())
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Println("No API keys.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tACTIVE\tKEY\tDESCRIPTION")
		for _, k := range keys {
			fmt.Fprintf(w, "%d\t%s\t%t\t%s\t%s\n", k.ID, k.Name, k.Active, k.Key, k.Description)
		}
		return w.Flush()
	},
}

var apikeysCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an API key slot (e.g. SHODAN_API_KEY)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireSession()
		if err != nil {
			return err
		}

		created, err := client.CreateAPIKey(cmd.Context(), args[0], apikeyDescription)
		if err != nil {
			return err
		}
		fmt.Printf("Created API key #%d %s = %s\n", created.ID, created.Name, created.Key)
		publishActivity(cmd.Context(), "created", "apikey", created.ID, created.Name, "")
		return nil
	},
}

var apikeysDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid API key id %q", args[0])
		}

		client, err := requireSession()
		if err != nil {
			return err
		}

		if err := client.DeleteAPIKey(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted API key #%d\n", id)
		publishActivity(cmd.Context(), "deleted", "apikey", id, "", "")
		return nil
	},
}

func init() {
	apikeysCreateCmd.Flags().StringVarP(&apikeyDescription, "description", "d", "", "Key description")

	apikeysCmd.AddCommand(apikeysListCmd)
	apikeysCmd.AddCommand(apikeysCreateCmd)
	apikeysCmd.AddCommand(apikeysDeleteCmd)
	rootCmd.AddCommand(apikeysCmd)
}
