package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/ghostlock/console/internal/remote"
	"github.com/ghostlock/console/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Authenticate against the GhostLock server and save the session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, password, err := promptCredentials(args)
		if err != nil {
			return err
		}

		serverURL := viper.GetString("server.url")
		client, err := remote.NewClient(remote.Options{
			BaseURL: serverURL,
			Logger:  newLogger("[remote] "),
		})
		if err != nil {
			return err
		}

		token, err := client.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}

		store, err := newSessionStore()
		if err != nil {
			return err
		}
		if err := store.Save(session.State{
			ServerURL: serverURL,
			Username:  username,
			Token:     token,
			CreatedAt: time.Now(),
		}); err != nil {
			return err
		}

		fmt.Printf("Logged in as %s (%s)\n", username, serverURL)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register [username]",
	Short: "Create a new account on the GhostLock server",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, password, err := promptCredentials(args)
		if err != nil {
			return err
		}

		client, err := remote.NewClient(remote.Options{
			BaseURL: viper.GetString("server.url"),
			Logger:  newLogger("[remote] "),
		})
		if err != nil {
			return err
		}

		if err := client.Register(cmd.Context(), username, password); err != nil {
			return err
		}

		fmt.Println("Registration successful. You can now login.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newSessionStore()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func promptCredentials(args []string) (string, string, error) {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		fmt.Print("Username: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return "", "", fmt.Errorf("username is required")
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}

	return username, string(raw), nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
}
