package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/paper-trail/papertrail/internal/congress"
	"github.com/paper-trail/papertrail/internal/fetcher"
	"github.com/paper-trail/papertrail/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Batch ingestion pipeline",
	Long:  "Full-refresh pipeline over FEC bulk files, Voteview roll calls, and Congress.gov member and bill data.",
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

// dbPool creates a pgxpool.Pool from the configured database URL.
func dbPool(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := cfg.Store.DatabaseURL
	if dsn == "" {
		return nil, eris.New("no database_url configured (set store.database_url or PAPERTRAIL_STORE_DATABASE_URL)")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "ping database")
	}

	fmt.Println("Connected to database")
	return pool, nil
}

// buildEnv assembles the shared stage environment.
func buildEnv(pool *pgxpool.Pool) (*ingest.Env, error) {
	roster, err := ingest.LoadRoster(cfg.Officeholders)
	if err != nil {
		return nil, eris.Wrapf(err, "load officeholders from %s", cfg.Officeholders)
	}

	return &ingest.Env{
		Pool: pool,
		HTTP: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:    "papertrail/1.0",
			MaxRetries:   3,
			RateLimiters: fetcher.DefaultRateLimiters(),
		}),
		FTP:      fetcher.NewFTPFetcher(fetcher.FTPOptions{}),
		Congress: congress.New(cfg.Congress),
		Roster:   roster,
		Config:   cfg,
	}, nil
}
