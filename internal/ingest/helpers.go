package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/paper-trail/papertrail/internal/db"
	"github.com/paper-trail/papertrail/internal/resolve"
)

// batchStats accumulates flush outcomes for a stage. A failed batch rolls
// back alone and streaming resumes; the count surfaces in the stage summary.
type batchStats struct {
	inserted      int64
	failedBatches int
}

// flushBatch inserts one accumulated batch and returns the slice reset for
// reuse. Database errors are contained to the batch.
func flushBatch(ctx context.Context, pool db.Pool, cfg db.InsertConfig, rows [][]any, log *zap.Logger, stats *batchStats) [][]any {
	if len(rows) == 0 {
		return rows
	}
	n, err := db.BulkInsert(ctx, pool, cfg, rows)
	if err != nil {
		log.Warn("batch flush failed, resuming with next batch",
			zap.String("table", cfg.Table),
			zap.Int("rows", len(rows)),
			zap.Error(err),
		)
		stats.failedBatches++
	} else {
		stats.inserted += n
	}
	return rows[:0]
}

// textOrNil maps empty strings to SQL NULL.
func textOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// loadPoliticianIndex builds the identity index from the politicians table.
func loadPoliticianIndex(ctx context.Context, pool db.Pool) (*resolve.PoliticianIndex, error) {
	rows, err := pool.Query(ctx,
		`SELECT politician_id, first_name, last_name, state FROM politicians`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := resolve.NewPoliticianIndex()
	for rows.Next() {
		var id int64
		var first, last, state string
		if err := rows.Scan(&id, &first, &last, &state); err != nil {
			return nil, err
		}
		index.Add(id, first, last, state)
	}
	return index, rows.Err()
}

// loadBillIndex builds the bill-number index from bills at or after the
// given congress.
func loadBillIndex(ctx context.Context, pool db.Pool, minCongress int) (*resolve.BillIndex, error) {
	rows, err := pool.Query(ctx,
		`SELECT bill_id, bill_number FROM bills WHERE congress >= $1`, minCongress,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := resolve.NewBillIndex()
	for rows.Next() {
		var id int64
		var number string
		if err := rows.Scan(&id, &number); err != nil {
			return nil, err
		}
		index.Add(number, id)
	}
	return index, rows.Err()
}

// loadFECMap reads the persisted FEC candidate map.
func loadFECMap(ctx context.Context, pool db.Pool) (map[string]int64, error) {
	rows, err := pool.Query(ctx,
		`SELECT fec_candidate_id, politician_id FROM fec_politician_map`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[string]int64)
	for rows.Next() {
		var candID string
		var polID int64
		if err := rows.Scan(&candID, &polID); err != nil {
			return nil, err
		}
		m[candID] = polID
	}
	return m, rows.Err()
}
