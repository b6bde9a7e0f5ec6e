// Package main implements the taskflow CLI client.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/taskflow/internal/model"
)

var (
	flagConfig string
	flagServer string
)

var rootCmd = &cobra.Command{
	Use:   "taskflow",
	Short: "Taskflow - create, assign, and track tasks",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", model.DefaultConfigPath(), "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "server URL (overrides config)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(userCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
