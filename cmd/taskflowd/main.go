// Package main implements the taskflowd server daemon.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/taskflow/internal/api"
	"github.com/nhle/taskflow/internal/auth"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/store"
)

var (
	flagConfig string
	flagAddr   string
	flagDBPath string
)

var rootCmd = &cobra.Command{
	Use:   "taskflowd",
	Short: "Taskflow - multi-user task assignment server",
	RunE:  runServe,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", model.DefaultConfigPath(), "path to config file")
	rootCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides config)")
	rootCmd.Flags().StringVar(&flagDBPath, "db", "", "database path (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := model.LoadConfig(flagConfig)
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Server.Addr = flagAddr
	}
	if flagDBPath != "" {
		cfg.Server.DBPath = flagDBPath
	}

	secret := cfg.Server.TokenSecret
	if secret == "" {
		secret = os.Getenv("TASKFLOW_TOKEN_SECRET")
	}
	if secret == "" {
		return fmt.Errorf("no token secret configured: set server.token_secret in %s or TASKFLOW_TOKEN_SECRET", flagConfig)
	}

	logger := log.New(os.Stderr, "taskflowd: ", log.LstdFlags)

	// The store is opened here and closed on the way out; nothing else
	// holds a connection.
	st, err := store.NewSQLiteStore(cfg.Server.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Printf("closing store: %v", err)
		}
	}()

	server := api.NewServer(api.Options{
		Store:    st,
		Tokens:   auth.NewTokenIssuer(secret, time.Duration(cfg.Server.TokenTTLHours)*time.Hour),
		PageSize: cfg.Server.PageSize,
		Logger:   logger,
	})

	return server.Serve(cfg.Server.Addr)
}
