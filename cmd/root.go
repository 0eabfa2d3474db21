package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paper-trail/papertrail/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "papertrail",
	Short: "Political finance and voting-record pipeline",
	Long:  "Ingests FEC bulk files, Voteview roll calls, and Congress.gov data into Postgres, and serves the query API over the result.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
