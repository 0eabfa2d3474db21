package ingest

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/paper-trail/papertrail/internal/db"
	"github.com/paper-trail/papertrail/internal/fetcher"
	"github.com/paper-trail/papertrail/internal/model"
	"github.com/paper-trail/papertrail/internal/resolve"
)

// voteviewMember is one member roster record.
type voteviewMember struct {
	ICPSR       int    `json:"icpsr"`
	Bioname     string `json:"bioname"`
	StateAbbrev string `json:"state_abbrev"`
}

// voteviewRollCall is one roll-call metadata record.
type voteviewRollCall struct {
	Congress   int    `json:"congress"`
	RollNumber int    `json:"rollnumber"`
	Chamber    string `json:"chamber"`
	BillNumber string `json:"bill_number"`
}

// voteviewVote is one individual vote record.
type voteviewVote struct {
	Congress   int    `json:"congress"`
	RollNumber int    `json:"rollnumber"`
	Chamber    string `json:"chamber"`
	ICPSR      int    `json:"icpsr"`
	CastCode   int    `json:"cast_code"`
}

// castToVote maps Voteview cast codes to stored vote values. Codes 1-3 are
// yea variants, 4-6 nay variants, 0 and 7-9 absence/abstention.
func castToVote(code int) (string, bool) {
	switch {
	case code >= 1 && code <= 3:
		return model.VoteYea, true
	case code >= 4 && code <= 6:
		return model.VoteNay, true
	case code == 0 || (code >= 7 && code <= 9):
		return model.VoteNotVoting, true
	}
	return "", false
}

// VotesStage rebuilds the votes table from Voteview roll-call and vote
// files, resolving ICPSR numbers to politicians and roll calls to bills.
// Votes with an unresolved side are dropped silently but counted.
type VotesStage struct{}

// Name implements Stage.
func (s *VotesStage) Name() string { return "votes" }

// Tables implements Stage.
func (s *VotesStage) Tables() []string { return []string{"votes"} }

var voteInsert = db.InsertConfig{
	Table:        "votes",
	Columns:      []string{"politician_id", "bill_id", "vote"},
	ConflictKeys: []string{"politician_id", "bill_id"},
}

// Run implements Stage.
func (s *VotesStage) Run(ctx context.Context, env *Env) (*Result, error) {
	log := zap.L().With(zap.String("stage", s.Name()))
	cfg := env.Config

	billIndex, err := loadBillIndex(ctx, env.Pool, cfg.Congress.StartCongress)
	if err != nil {
		return nil, eris.Wrap(err, "votes: load bill index")
	}

	icpsrMap, matchStats, err := s.buildICPSRMap(ctx, env)
	if err != nil {
		return nil, err
	}

	rollIndex, err := s.buildRollCallIndex(ctx, cfg.Voteview.DataDir, billIndex)
	if err != nil {
		return nil, err
	}
	log.Info("indexes built",
		zap.Int("bills", billIndex.Len()),
		zap.Int("members", len(icpsrMap)),
		zap.Int("roll_calls", rollIndex.Len()),
	)

	if err := db.ResetTable(ctx, env.Pool, "votes", "votes_vote_id_seq"); err != nil {
		return nil, err
	}

	voteFiles, err := filepath.Glob(filepath.Join(cfg.Voteview.DataDir, "HS*_votes.json"))
	if err != nil {
		return nil, eris.Wrap(err, "votes: glob vote files")
	}
	if len(voteFiles) == 0 {
		return nil, eris.Errorf("votes: no vote files under %s", cfg.Voteview.DataDir)
	}

	var stats batchStats
	var unresolvedBill, unresolvedPolitician, badCast int
	batch := make([][]any, 0, voteBatchSize)

	for _, path := range voteFiles {
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "votes: open %s", path)
		}

		voteCh, errCh := fetcher.DecodeJSONArray[voteviewVote](ctx, f)
		for v := range voteCh {
			billID, ok := rollIndex.Resolve(v.Congress, v.RollNumber, v.Chamber)
			if !ok {
				unresolvedBill++
				continue
			}
			polID, ok := icpsrMap[v.ICPSR]
			if !ok {
				unresolvedPolitician++
				continue
			}
			vote, ok := castToVote(v.CastCode)
			if !ok {
				badCast++
				continue
			}

			batch = append(batch, []any{polID, billID, vote})
			if len(batch) >= voteBatchSize {
				batch = flushBatch(ctx, env.Pool, voteInsert, batch, log, &stats)
			}
		}
		streamErr := <-errCh
		f.Close()
		if streamErr != nil {
			return nil, eris.Wrapf(streamErr, "votes: decode %s", path)
		}
	}
	flushBatch(ctx, env.Pool, voteInsert, batch, log, &stats)

	log.Info("votes loaded",
		zap.Int64("inserted", stats.inserted),
		zap.Int("unresolved_bill", unresolvedBill),
		zap.Int("unresolved_politician", unresolvedPolitician),
	)

	return &Result{
		RowsInserted: stats.inserted,
		Metadata: map[string]any{
			"members_matched":       matchStats.Matched,
			"members_unmatched":     matchStats.Unmatched + matchStats.Ambiguous,
			"unresolved_bill":       unresolvedBill,
			"unresolved_politician": unresolvedPolitician,
			"bad_cast_code":         badCast,
			"failed_batches":        stats.failedBatches,
		},
	}, nil
}

// buildICPSRMap matches the Voteview member roster against the politician
// identity index, producing ICPSR -> politician ID.
func (s *VotesStage) buildICPSRMap(ctx context.Context, env *Env) (map[int]int64, resolve.MatchStats, error) {
	index, err := loadPoliticianIndex(ctx, env.Pool)
	if err != nil {
		return nil, resolve.MatchStats{}, eris.Wrap(err, "votes: load politician index")
	}

	f, err := os.Open(env.Config.Voteview.MemberFile)
	if err != nil {
		return nil, resolve.MatchStats{}, eris.Wrapf(err, "votes: open member file %s", env.Config.Voteview.MemberFile)
	}
	defer f.Close()

	icpsrMap := make(map[int]int64)
	memberCh, errCh := fetcher.DecodeJSONArray[voteviewMember](ctx, f)
	for m := range memberCh {
		if _, ok := icpsrMap[m.ICPSR]; ok {
			continue
		}
		if id, ok := index.Match(m.Bioname, m.StateAbbrev); ok {
			icpsrMap[m.ICPSR] = id
		}
	}
	if err := <-errCh; err != nil {
		return nil, resolve.MatchStats{}, eris.Wrap(err, "votes: decode member file")
	}

	for _, sample := range index.UnmatchedSample() {
		zap.L().Debug("unmatched voteview member", zap.String("key", sample))
	}
	return icpsrMap, index.Stats(), nil
}

// buildRollCallIndex maps (congress, roll, chamber) to bill IDs from the
// roll-call metadata files. Roll calls for bills outside the bill index
// (unenacted, wrong congress range) are left out.
func (s *VotesStage) buildRollCallIndex(ctx context.Context, dataDir string, billIndex *resolve.BillIndex) (*resolve.RollCallIndex, error) {
	files, err := filepath.Glob(filepath.Join(dataDir, "HS*_rollcalls.json"))
	if err != nil {
		return nil, eris.Wrap(err, "votes: glob rollcall files")
	}
	if len(files) == 0 {
		return nil, eris.Errorf("votes: no rollcall files under %s", dataDir)
	}

	index := resolve.NewRollCallIndex()
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "votes: open %s", path)
		}

		rcCh, errCh := fetcher.DecodeJSONArray[voteviewRollCall](ctx, f)
		for rc := range rcCh {
			if rc.BillNumber == "" {
				continue
			}
			if billID, ok := billIndex.Resolve(rc.BillNumber); ok {
				index.Add(rc.Congress, rc.RollNumber, rc.Chamber, billID)
			}
		}
		streamErr := <-errCh
		f.Close()
		if streamErr != nil {
			return nil, eris.Wrapf(streamErr, "votes: decode %s", path)
		}
	}
	return index, nil
}
