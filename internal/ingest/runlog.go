package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/paper-trail/papertrail/internal/db"
)

// LogEntry represents a row in ingest_log.
type LogEntry struct {
	RunID        uuid.UUID      `json:"run_id"`
	Stage        string         `json:"stage"`
	Status       string         `json:"status"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	RowsInserted int64          `json:"rows_inserted"`
	Error        string         `json:"error,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// RunLog provides read/write access to the ingest_log table.
type RunLog struct {
	pool db.Pool
}

// NewRunLog creates a RunLog backed by the given connection pool.
func NewRunLog(pool db.Pool) *RunLog {
	return &RunLog{pool: pool}
}

// Start records the beginning of a stage run and returns its run ID.
func (l *RunLog) Start(ctx context.Context, stage string) (uuid.UUID, error) {
	runID := uuid.New()
	_, err := l.pool.Exec(ctx,
		`INSERT INTO ingest_log (run_id, stage, status, started_at)
		 VALUES ($1, $2, 'running', now())`,
		runID, stage,
	)
	if err != nil {
		return uuid.Nil, eris.Wrapf(err, "runlog: start stage %s", stage)
	}
	return runID, nil
}

// Complete marks a stage run as successfully completed.
func (l *RunLog) Complete(ctx context.Context, runID uuid.UUID, result *Result) error {
	var metaJSON []byte
	if result != nil && result.Metadata != nil {
		var err error
		metaJSON, err = json.Marshal(result.Metadata)
		if err != nil {
			return eris.Wrap(err, "runlog: marshal metadata")
		}
	}

	rowsInserted := int64(0)
	if result != nil {
		rowsInserted = result.RowsInserted
	}

	_, err := l.pool.Exec(ctx,
		`UPDATE ingest_log
		 SET status = 'complete', completed_at = now(), rows_inserted = $1, metadata = $2
		 WHERE run_id = $3`,
		rowsInserted, metaJSON, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: complete run %s", runID)
	}
	return nil
}

// Fail marks a stage run as failed with an error message.
func (l *RunLog) Fail(ctx context.Context, runID uuid.UUID, errMsg string) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE ingest_log
		 SET status = 'failed', completed_at = now(), error = $1
		 WHERE run_id = $2`,
		errMsg, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: fail run %s", runID)
	}
	return nil
}

// ListAll returns all ingest log entries, most recent first.
func (l *RunLog) ListAll(ctx context.Context) ([]LogEntry, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT run_id, stage, status, started_at, completed_at, rows_inserted, error, metadata
		 FROM ingest_log ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list all")
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		var completedAt *time.Time
		var errStr *string
		var metaJSON []byte
		if err := rows.Scan(&e.RunID, &e.Stage, &e.Status, &e.StartedAt, &completedAt, &e.RowsInserted, &errStr, &metaJSON); err != nil {
			return nil, eris.Wrap(err, "runlog: scan entry")
		}
		e.CompletedAt = completedAt
		if errStr != nil {
			e.Error = *errStr
		}
		if metaJSON != nil {
			_ = json.Unmarshal(metaJSON, &e.Metadata)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
