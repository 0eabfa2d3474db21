package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paper-trail/papertrail/internal/ingest"
)

var ingestRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run pipeline stages",
	Long: `Run ingestion stages in dependency order.

By default all stages run: politicians, bills, fecmap, votes, donations.
Use --stages to run a subset; dependency order is preserved regardless of
the order given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		// Ensure migrations are current.
		if err := ingest.Migrate(ctx, pool); err != nil {
			return eris.Wrap(err, "ingest run: migrate")
		}

		env, err := buildEnv(pool)
		if err != nil {
			return err
		}

		stagesStr, _ := cmd.Flags().GetString("stages")
		var names []string
		if stagesStr != "" {
			names = strings.Split(stagesStr, ",")
			for i := range names {
				names[i] = strings.TrimSpace(names[i])
			}
		}

		zap.L().Info("starting ingest", zap.Strings("stages", names))

		engine := ingest.NewEngine(env, ingest.NewRunLog(pool), ingest.DefaultStages())
		if err := engine.Run(ctx, names); err != nil {
			return eris.Wrap(err, "ingest run")
		}

		fmt.Println("Ingest complete")
		return nil
	},
}

func init() {
	ingestRunCmd.Flags().String("stages", "", "comma-separated stage names (e.g., politicians,votes)")
	ingestCmd.AddCommand(ingestRunCmd)
}
