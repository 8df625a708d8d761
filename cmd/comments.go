package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Manage entity comments",
}

var commentsListCmd = &cobra.Command{
	Use:   "list <entity-id>",
	Short: "List comments on an entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entityID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entity id %q", args[0])
		}

		client, err := requireSession()
		if err != nil {
			return err
		}

		comments, err := client.ListComments(cmd.Context(), entityID)
		if err != nil {
			return err
		}
		if len(comments) == 0 {
			fmt.Println("No comments.")
			return nil
		}

		for _, c := range comments {
			fmt.Printf("#%d [%s]\n%s\n\n", c.ID, c.CreatedAt.Format("2006-01-02 15:04"), c.Text)
		}
		return nil
	},
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <entity-id> <text...>",
	Short: "Attach a comment to an entity",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entityID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entity id %q", args[0])
		}

		client, err := requireSession()
		if err != nil {
			return err
		}

		created, err := client.CreateComment(cmd.Context(), entityID, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("Added comment #%d to entity #%d\n", created.ID, entityID)
		publishActivity(cmd.Context(), "created", "comment", created.ID, "",
			fmt.Sprintf("on entity %d", entityID))
		return nil
	},
}

var commentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid comment id %q", args[0])
		}

		client, err := requireSession()
		if err != nil {
			return err
		}

		if err := client.DeleteComment(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted comment #%d\n", id)
		publishActivity(cmd.Context(), "deleted", "comment", id, "", "")
		return nil
	},
}

func init() {
	commentsCmd.AddCommand(commentsListCmd)
	commentsCmd.AddCommand(commentsAddCmd)
	commentsCmd.AddCommand(commentsDeleteCmd)
	rootCmd.AddCommand(commentsCmd)
}
