package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// ResetTable deletes all rows from a table and restarts its ID sequence at 1.
// Full-refresh stages call this before reloading so surrogate IDs stay dense
// across runs. DELETE is used instead of TRUNCATE so dependent tables with
// ON DELETE CASCADE foreign keys are emptied in the same statement chain.
func ResetTable(ctx context.Context, pool Pool, table, sequence string) error {
	deleteSQL := fmt.Sprintf("DELETE FROM %s", sanitizeTable(table))
	if _, err := pool.Exec(ctx, deleteSQL); err != nil {
		return eris.Wrapf(err, "db: reset: delete from %s", table)
	}

	if sequence != "" {
		restartSQL := fmt.Sprintf("ALTER SEQUENCE %s RESTART WITH 1", pgx.Identifier{sequence}.Sanitize())
		if _, err := pool.Exec(ctx, restartSQL); err != nil {
			return eris.Wrapf(err, "db: reset: restart sequence %s", sequence)
		}
	}

	return nil
}
