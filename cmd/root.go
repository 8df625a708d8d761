package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ghostlock/console/internal/cache"
	"github.com/ghostlock/console/internal/remote"
	"github.com/ghostlock/console/internal/session"
)

var (
	cfgFile     string
	serverURL   string
	redisURL    string
	archivePath string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ghostlock",
	Short: "Terminal client for the GhostLock case-management API",
	Long: `GhostLock console is a terminal client for investigative case management:
cases, typed entities (IPs, domains, people, ...), directed relationships
between them, comments and an activity timeline.

Features:
- Cached snapshot views with text/kind/case filtering
- Graph view-model with kind-based styling
- Server-side entity transforms with single-flight orchestration
- Bulk entity import from CSV/JSON, case export, offline SQLite archives
- Optional Redis Streams activity publishing for downstream tooling`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ghostlock.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "GhostLock server base URL")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis", "", "Redis URL for activity publishing (empty disables)")
	rootCmd.PersistentFlags().StringVar(&archivePath, "archive-db", "./data/ghostlock-archive.db", "SQLite archive database path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose operational logging")

	// Bind flags to viper
	viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("redis.url", rootCmd.PersistentFlags().Lookup("redis"))
	viper.BindPFlag("archive.path", rootCmd.PersistentFlags().Lookup("archive-db"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".ghostlock" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ghostlock")
	}

	viper.SetEnvPrefix("GHOSTLOCK")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Set defaults
	viper.SetDefault("server.url", "http://localhost:8000")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("archive.path", "./data/ghostlock-archive.db")
	viper.SetDefault("session.path", "")
}

// newLogger returns the operational logger; silent unless --verbose.
func newLogger(prefix string) *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, prefix, log.LstdFlags)
}

// newSessionStore opens the session file store.
func newSessionStore() (*session.Store, error) {
	return session.NewStore(viper.GetString("session.path"))
}

// newClient builds an API client carrying the saved session credential.
// 401 responses tear the session down before the error surfaces.
func newClient() (*remote.Client, error) {
	store, err := newSessionStore()
	if err != nil {
		return nil, err
	}

	state, _, err := store.Load()
	if err != nil {
		return nil, err
	}

	baseURL := state.ServerURL
	if baseURL == "" {
		baseURL = viper.GetString("server.url")
	}

	logger := newLogger("[remote] ")
	return remote.NewClient(remote.Options{
		BaseURL: baseURL,
		Token:   state.Token,
		Logger:  logger,
		OnUnauthorized: func() {
			if clearErr := store.Clear(); clearErr != nil {
				logger.Printf("failed to clear session: %v", clearErr)
			}
		},
	})
}

// requireSession builds a client and fails fast when nobody is logged in.
func requireSession() (*remote.Client, error) {
	store, err := newSessionStore()
	if err != nil {
		return nil, err
	}
	_, ok, err := store.Load()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("not logged in (run: ghostlock login)")
	}
	return newClient()
}

// loadSnapshot fetches all collections into a fresh cache. Consumers
// that join collections (graph, export) read only after every fetch
// has resolved.
func loadSnapshot(ctx context.Context, client *remote.Client) (*cache.Snapshot, error) {
	snap := cache.New()

	cases, err := client.ListCases(ctx)
	if err != nil {
		return nil, err
	}
	entities, err := client.ListEntities(ctx)
	if err != nil {
		return nil, err
	}
	rels, err := client.ListRelationships(ctx)
	if err != nil {
		return nil, err
	}

	snap.SetCases(cases)
	snap.SetEntities(entities)
	snap.SetRelationships(rels)
	return snap, nil
}
