// Package ingest drives the batch pipeline that rebuilds the papertrail
// schema from FEC bulk files, Voteview JSON, and Congress.gov data.
package ingest

import (
	"context"

	"github.com/paper-trail/papertrail/internal/config"
	"github.com/paper-trail/papertrail/internal/congress"
	"github.com/paper-trail/papertrail/internal/db"
	"github.com/paper-trail/papertrail/internal/fetcher"
)

// Batch flush thresholds, tuned to source volume per stage.
const (
	politicianBatchSize = 1000
	billBatchSize       = 1000
	fecMapBatchSize     = 500
	voteBatchSize       = 5000
	donationBatchSize   = 5000
)

// Env carries the shared resources a stage runs against. It is constructed
// once per pipeline run; stages hold no state of their own.
type Env struct {
	Pool     db.Pool
	HTTP     *fetcher.HTTPFetcher
	FTP      *fetcher.FTPFetcher
	Congress *congress.Client
	Roster   *Roster
	Config   *config.Config
}

// Result holds the outcome of a stage run.
type Result struct {
	RowsInserted int64          `json:"rows_inserted"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Stage is one pipeline stage. Stages fully rebuild the tables they own
// (clear, stream, match, batch insert); they run strictly sequentially
// because later stages depend on surrogate IDs assigned by earlier ones.
type Stage interface {
	// Name returns the unique stage identifier (e.g., "politicians").
	Name() string

	// Tables returns the tables this stage owns and rebuilds.
	Tables() []string

	// Run performs the full-refresh load for this stage.
	Run(ctx context.Context, env *Env) (*Result, error)
}

// DefaultStages returns all stages in dependency order: votes need
// politicians and bills, donations need politicians and the FEC map.
func DefaultStages() []Stage {
	return []Stage{
		&PoliticiansStage{},
		&BillsStage{},
		&FECMapStage{},
		&VotesStage{},
		&DonationsStage{},
	}
}
