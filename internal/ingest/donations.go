package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/paper-trail/papertrail/internal/db"
	"github.com/paper-trail/papertrail/internal/fetcher"
	"github.com/paper-trail/papertrail/internal/model"
)

// DonationsStage rebuilds donors and donations from FEC contribution files:
// PAC/Party contributions (pas2, resolved by direct candidate ID) and
// individual contributions (itcont, resolved through the committee linkage).
// Individual files are hundreds of MB per cycle, so each is downloaded,
// processed, and deleted before the next starts.
type DonationsStage struct{}

// Name implements Stage.
func (s *DonationsStage) Name() string { return "donations" }

// Tables implements Stage.
func (s *DonationsStage) Tables() []string { return []string{"donations", "donors"} }

var donationInsert = db.InsertConfig{
	Table:   "donations",
	Columns: []string{"donor_id", "politician_id", "amount", "date", "contribution_type"},
}

// pendingDonation holds a matched contribution until its donor has an ID.
type pendingDonation struct {
	donor  model.Donor
	polID  int64
	amount float64
	date   *time.Time
	ctype  string
}

// donationCounters aggregates per-record skip reasons for the summary.
type donationCounters struct {
	malformed      int
	belowThreshold int
	filtered       int
	unresolved     int
	droppedDonors  int
}

// Run implements Stage.
func (s *DonationsStage) Run(ctx context.Context, env *Env) (*Result, error) {
	log := zap.L().With(zap.String("stage", s.Name()))

	fecMap, err := loadFECMap(ctx, env.Pool)
	if err != nil {
		return nil, eris.Wrap(err, "donations: load fec map")
	}
	committees, err := s.loadCommitteeNames(ctx, env.Config.FEC.DataDir)
	if err != nil {
		return nil, err
	}
	linkages, err := s.loadLinkages(ctx, env.Config.FEC.DataDir)
	if err != nil {
		return nil, err
	}
	log.Info("lookups built",
		zap.Int("fec_map", len(fecMap)),
		zap.Int("committees", len(committees)),
		zap.Int("linkages", len(linkages)),
	)

	// donations holds FKs into donors, so it is cleared first.
	if err := db.ResetTable(ctx, env.Pool, "donations", "donations_donation_id_seq"); err != nil {
		return nil, err
	}
	if err := db.ResetTable(ctx, env.Pool, "donors", "donors_donor_id_seq"); err != nil {
		return nil, err
	}

	cache := NewDonorCache()
	var stats batchStats
	var counters donationCounters
	pending := make([]pendingDonation, 0, donationBatchSize)

	flush := func() {
		pending = s.flushDonations(ctx, env, cache, pending, log, &stats, &counters)
	}

	// PAC and party committee contributions carry the recipient candidate
	// ID directly.
	pacArchives, err := filepath.Glob(filepath.Join(env.Config.FEC.DataDir, "pas2*.zip"))
	if err != nil {
		return nil, eris.Wrap(err, "donations: glob pas2 archives")
	}
	for _, zipPath := range pacArchives {
		err := fetcher.EachZIPMember(zipPath, func(name string, r io.Reader) error {
			rowCh, errCh := fetcher.StreamPipeFile(ctx, r)
			for fields := range rowCh {
				rec, skipReason := ParseContribution(fields)
				if skipReason != "" {
					counters.malformed++
					continue
				}
				if rec.Amount <= env.Config.FEC.MinAmount {
					counters.belowThreshold++
					continue
				}
				if !s.keepPAC(rec) {
					counters.filtered++
					continue
				}
				polID, ok := fecMap[rec.CandidateID]
				if !ok {
					counters.unresolved++
					continue
				}

				pending = append(pending, s.pacDonation(rec, committees, polID))
				if len(pending) >= donationBatchSize {
					flush()
				}
			}
			for err := range errCh {
				if err != nil {
					return eris.Wrapf(err, "donations: stream %s", zipPath)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	// Individual contributions, one cycle file at a time.
	for _, rawURL := range env.Config.FEC.IndivURLs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err := s.processIndivFile(ctx, env, rawURL, fecMap, linkages, cache, &pending, flush, log, &counters); err != nil {
			return nil, err
		}
	}
	flush()

	log.Info("donations loaded",
		zap.Int64("inserted", stats.inserted),
		zap.Int("below_threshold", counters.belowThreshold),
		zap.Int("filtered", counters.filtered),
		zap.Int("unresolved", counters.unresolved),
	)

	return &Result{
		RowsInserted: stats.inserted,
		Metadata: map[string]any{
			"malformed":       counters.malformed,
			"below_threshold": counters.belowThreshold,
			"filtered":        counters.filtered,
			"unresolved":      counters.unresolved,
			"dropped_donors":  counters.droppedDonors,
			"failed_batches":  stats.failedBatches,
		},
	}, nil
}

// processIndivFile downloads one itcont cycle archive if needed, streams it,
// and deletes it afterwards when this run fetched it. A failed download
// skips the cycle rather than aborting the stage.
func (s *DonationsStage) processIndivFile(
	ctx context.Context,
	env *Env,
	rawURL string,
	fecMap map[string]int64,
	linkages map[string]string,
	cache *DonorCache,
	pending *[]pendingDonation,
	flush func(),
	log *zap.Logger,
	counters *donationCounters,
) error {
	path := filepath.Join(env.Config.FEC.DataDir, filepath.Base(rawURL))

	downloaded := false
	if _, err := os.Stat(path); err != nil {
		log.Info("downloading individual contributions", zap.String("url", rawURL))
		f := fetcher.ForURL(rawURL, env.HTTP, env.FTP)
		if _, err := f.DownloadToFile(ctx, rawURL, path); err != nil {
			log.Warn("download failed, skipping cycle", zap.String("url", rawURL), zap.Error(err))
			return nil
		}
		downloaded = true
	}

	err := fetcher.EachZIPMember(path, func(name string, r io.Reader) error {
		rowCh, errCh := fetcher.StreamPipeFile(ctx, r)
		for fields := range rowCh {
			rec, skipReason := ParseContribution(fields)
			if skipReason != "" {
				counters.malformed++
				continue
			}
			if !s.keepIndividual(rec) {
				counters.filtered++
				continue
			}
			if rec.Amount <= env.Config.FEC.MinAmount {
				counters.belowThreshold++
				continue
			}
			candID, ok := linkages[rec.FilerID]
			if !ok {
				counters.unresolved++
				continue
			}
			polID, ok := fecMap[candID]
			if !ok {
				counters.unresolved++
				continue
			}

			*pending = append(*pending, s.indivDonation(rec, polID))
			if len(*pending) >= donationBatchSize {
				flush()
			}
		}
		for err := range errCh {
			if err != nil {
				return eris.Wrapf(err, "donations: stream %s", path)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if downloaded {
		if err := os.Remove(path); err != nil {
			log.Warn("failed to remove processed file", zap.String("path", path), zap.Error(err))
		}
	}
	return nil
}

// keepPAC applies the pas2 row filters: a direct candidate ID and a
// parseable transaction date are both required.
func (s *DonationsStage) keepPAC(rec *ContributionRecord) bool {
	return rec.CandidateID != "" && rec.Date != nil
}

// pacDonation builds the pending donation for a pas2 row. The donor is the
// filing committee: its master name when the cm files cover it, the row's
// own NAME field otherwise.
func (s *DonationsStage) pacDonation(rec *ContributionRecord, committees map[string]string, polID int64) pendingDonation {
	name, ok := committees[rec.FilerID]
	if !ok {
		name = rec.Name
	}
	return pendingDonation{
		donor:  model.Donor{Name: name, DonorType: model.DonorPACParty},
		polID:  polID,
		amount: rec.Amount,
		date:   rec.Date,
		ctype:  model.DonorPACParty,
	}
}

// indivDonation builds the pending donation for an itcont row.
func (s *DonationsStage) indivDonation(rec *ContributionRecord, polID int64) pendingDonation {
	return pendingDonation{
		donor: model.Donor{
			Name:      rec.Name,
			DonorType: model.DonorIndividual,
			Employer:  strPtr(rec.Employer),
			State:     strPtr(rec.State),
		},
		polID:  polID,
		amount: rec.Amount,
		date:   rec.Date,
		ctype:  model.DonorIndividual,
	}
}

// keepIndividual applies the itcont row filters: 15-family transaction
// types only, earmarked pass-throughs (non-empty OTHER_ID) kept only for
// 15E/15Z, and name, state, and date required.
func (s *DonationsStage) keepIndividual(rec *ContributionRecord) bool {
	if !strings.HasPrefix(rec.TransactionType, "15") {
		return false
	}
	if rec.OtherID != "" && rec.TransactionType != "15E" && rec.TransactionType != "15Z" {
		return false
	}
	if rec.Name == "" || rec.State == "" || rec.Date == nil {
		return false
	}
	return true
}

// flushDonations resolves the chunk's donors through the cache, then
// inserts the donation rows. A donor flush failure drops only this chunk.
func (s *DonationsStage) flushDonations(
	ctx context.Context,
	env *Env,
	cache *DonorCache,
	pending []pendingDonation,
	log *zap.Logger,
	stats *batchStats,
	counters *donationCounters,
) []pendingDonation {
	if len(pending) == 0 {
		return pending
	}

	for _, p := range pending {
		cache.Observe(p.donor)
	}
	if err := cache.Flush(ctx, env.Pool); err != nil {
		log.Warn("donor flush failed, dropping chunk", zap.Int("rows", len(pending)), zap.Error(err))
		stats.failedBatches++
		return pending[:0]
	}

	rows := make([][]any, 0, len(pending))
	for _, p := range pending {
		donorID, ok := cache.Resolve(p.donor)
		if !ok {
			counters.droppedDonors++
			continue
		}
		var date any
		if p.date != nil {
			date = *p.date
		}
		rows = append(rows, []any{donorID, p.polID, p.amount, date, p.ctype})
	}
	flushBatch(ctx, env.Pool, donationInsert, rows, log, stats)
	return pending[:0]
}

// loadCommitteeNames maps committee IDs to names from the cm archives.
func (s *DonationsStage) loadCommitteeNames(ctx context.Context, dataDir string) (map[string]string, error) {
	archives, err := filepath.Glob(filepath.Join(dataDir, "cm*.zip"))
	if err != nil {
		return nil, eris.Wrap(err, "donations: glob cm archives")
	}

	names := make(map[string]string)
	for _, zipPath := range archives {
		err := fetcher.EachZIPMember(zipPath, func(_ string, r io.Reader) error {
			rowCh, errCh := fetcher.StreamPipeFile(ctx, r)
			for fields := range rowCh {
				if rec, skipReason := ParseCommittee(fields); skipReason == "" {
					names[rec.CommitteeID] = rec.Name
				}
			}
			for err := range errCh {
				if err != nil {
					return eris.Wrapf(err, "donations: stream %s", zipPath)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return names, nil
}

// loadLinkages maps committee IDs to the candidate they file for, from the
// ccl archives.
func (s *DonationsStage) loadLinkages(ctx context.Context, dataDir string) (map[string]string, error) {
	archives, err := filepath.Glob(filepath.Join(dataDir, "ccl*.zip"))
	if err != nil {
		return nil, eris.Wrap(err, "donations: glob ccl archives")
	}

	links := make(map[string]string)
	for _, zipPath := range archives {
		err := fetcher.EachZIPMember(zipPath, func(_ string, r io.Reader) error {
			rowCh, errCh := fetcher.StreamPipeFile(ctx, r)
			for fields := range rowCh {
				if rec, skipReason := ParseLinkage(fields); skipReason == "" {
					links[rec.CommitteeID] = rec.CandidateID
				}
			}
			for err := range errCh {
				if err != nil {
					return eris.Wrapf(err, "donations: stream %s", zipPath)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return links, nil
}

// strPtr maps empty strings to nil pointers for nullable columns.
func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
