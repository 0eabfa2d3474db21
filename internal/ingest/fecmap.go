package ingest

import (
	"context"
	"io"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/paper-trail/papertrail/internal/db"
	"github.com/paper-trail/papertrail/internal/fetcher"
)

// FECMapStage rebuilds fec_politician_map by matching FEC candidate master
// records against the politician identity index. The map is the durable
// cache later donation runs resolve candidate IDs through.
type FECMapStage struct{}

// Name implements Stage.
func (s *FECMapStage) Name() string { return "fecmap" }

// Tables implements Stage.
func (s *FECMapStage) Tables() []string { return []string{"fec_politician_map"} }

var fecMapInsert = db.InsertConfig{
	Table:        "fec_politician_map",
	Columns:      []string{"fec_candidate_id", "politician_id"},
	ConflictKeys: []string{"fec_candidate_id"},
}

// matchableOffices are FEC office codes with a politician counterpart:
// House, Senate, President.
var matchableOffices = map[string]bool{"H": true, "S": true, "P": true}

// Run implements Stage.
func (s *FECMapStage) Run(ctx context.Context, env *Env) (*Result, error) {
	log := zap.L().With(zap.String("stage", s.Name()))

	index, err := loadPoliticianIndex(ctx, env.Pool)
	if err != nil {
		return nil, eris.Wrap(err, "fecmap: load politician index")
	}
	log.Info("politician index built", zap.Int("keys", index.Len()))

	archives, err := filepath.Glob(filepath.Join(env.Config.FEC.DataDir, "cn*.zip"))
	if err != nil {
		return nil, eris.Wrap(err, "fecmap: glob candidate archives")
	}
	if len(archives) == 0 {
		return nil, eris.Errorf("fecmap: no candidate archives under %s", env.Config.FEC.DataDir)
	}

	// Cycles are processed in filename order, so for a candidate appearing
	// in several cycles the most recent match wins.
	mapping := make(map[string]int64)
	var skipped int

	for _, zipPath := range archives {
		err := fetcher.EachZIPMember(zipPath, func(name string, r io.Reader) error {
			rowCh, errCh := fetcher.StreamPipeFile(ctx, r)
			for fields := range rowCh {
				rec, skipReason := ParseCandidate(fields)
				if skipReason != "" {
					skipped++
					continue
				}
				if !matchableOffices[rec.Office] {
					continue
				}
				if id, ok := index.Match(rec.Name, rec.OfficeState); ok {
					mapping[rec.CandidateID] = id
				}
			}
			for err := range errCh {
				if err != nil {
					return eris.Wrapf(err, "fecmap: stream %s", zipPath)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if err := db.ResetTable(ctx, env.Pool, "fec_politician_map", ""); err != nil {
		return nil, err
	}

	var stats batchStats
	batch := make([][]any, 0, fecMapBatchSize)
	for candID, polID := range mapping {
		batch = append(batch, []any{candID, polID})
		if len(batch) >= fecMapBatchSize {
			batch = flushBatch(ctx, env.Pool, fecMapInsert, batch, log, &stats)
		}
	}
	flushBatch(ctx, env.Pool, fecMapInsert, batch, log, &stats)

	matchStats := index.Stats()
	log.Info("fec map built",
		zap.Int("matched", matchStats.Matched),
		zap.Int("unmatched", matchStats.Unmatched),
		zap.Int("ambiguous", matchStats.Ambiguous),
		zap.Int64("inserted", stats.inserted),
	)
	for _, sample := range index.UnmatchedSample() {
		log.Debug("unmatched candidate", zap.String("key", sample))
	}

	return &Result{
		RowsInserted: stats.inserted,
		Metadata: map[string]any{
			"matched":        matchStats.Matched,
			"unmatched":      matchStats.Unmatched,
			"ambiguous":      matchStats.Ambiguous,
			"skipped":        skipped,
			"failed_batches": stats.failedBatches,
		},
	}, nil
}
