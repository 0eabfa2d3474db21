package ingest

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/paper-trail/papertrail/internal/congress"
	"github.com/paper-trail/papertrail/internal/db"
)

// PoliticiansStage rebuilds the politicians table from the Congress.gov
// member listing plus the officeholder roster. Everyone is inserted inactive
// first; a reconciliation pass flips is_active for currently-serving members
// and roster entries marked current.
type PoliticiansStage struct{}

// Name implements Stage.
func (s *PoliticiansStage) Name() string { return "politicians" }

// Tables implements Stage.
func (s *PoliticiansStage) Tables() []string { return []string{"politicians"} }

var politicianInsert = db.InsertConfig{
	Table:        "politicians",
	Columns:      []string{"first_name", "last_name", "party", "chamber", "state", "district", "is_active", "role"},
	ConflictKeys: []string{"first_name", "last_name", "state"},
}

// Run implements Stage.
func (s *PoliticiansStage) Run(ctx context.Context, env *Env) (*Result, error) {
	log := zap.L().With(zap.String("stage", s.Name()))
	cfg := env.Config.Congress

	if err := db.ResetTable(ctx, env.Pool, "politicians", "politicians_politician_id_seq"); err != nil {
		return nil, err
	}

	var stats batchStats
	var skipped int
	batch := make([][]any, 0, politicianBatchSize)

	for congress := cfg.StartCongress; congress <= cfg.EndCongress; congress++ {
		members, err := env.Congress.MembersByCongress(ctx, congress)
		if err != nil {
			return nil, eris.Wrapf(err, "politicians: list congress %d", congress)
		}
		log.Info("fetched members", zap.Int("congress", congress), zap.Int("count", len(members)))

		// The listing repeats members who changed chamber or district
		// mid-congress; keep the first appearance.
		seen := make(map[string]bool, len(members))
		for _, m := range members {
			row, key, ok := memberRow(m)
			if !ok {
				skipped++
				continue
			}
			if seen[key] {
				continue
			}
			seen[key] = true

			batch = append(batch, row)
			if len(batch) >= politicianBatchSize {
				batch = flushBatch(ctx, env.Pool, politicianInsert, batch, log, &stats)
			}
		}
	}

	// Presidents and governors never appear in the member listing.
	for _, o := range env.Roster.Officeholders {
		batch = append(batch, []any{
			o.FirstName, o.LastName, textOrNil(o.Party), nil,
			o.State, nil, false, textOrNil(o.Role),
		})
		if len(batch) >= politicianBatchSize {
			batch = flushBatch(ctx, env.Pool, politicianInsert, batch, log, &stats)
		}
	}
	flushBatch(ctx, env.Pool, politicianInsert, batch, log, &stats)

	active, err := s.markActive(ctx, env)
	if err != nil {
		return nil, err
	}

	log.Info("politicians loaded",
		zap.Int64("inserted", stats.inserted),
		zap.Int("skipped", skipped),
		zap.Int64("active", active),
	)

	return &Result{
		RowsInserted: stats.inserted,
		Metadata: map[string]any{
			"congresses":     cfg.EndCongress - cfg.StartCongress + 1,
			"skipped":        skipped,
			"failed_batches": stats.failedBatches,
			"active":         active,
		},
	}, nil
}

// markActive flips is_active for currently-serving members and current
// roster entries. Matching is by case-insensitive (first, last, state); both
// the member API and the roster carry full state names, so the triple aligns
// with the stored rows and keeps same-named politicians from other states
// inactive.
func (s *PoliticiansStage) markActive(ctx context.Context, env *Env) (int64, error) {
	current, err := env.Congress.CurrentMembers(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "politicians: list current members")
	}

	var names [][]any
	for _, m := range current {
		first, last, ok := splitMemberName(m.Name)
		state := strings.TrimSpace(m.State)
		if ok && state != "" {
			names = append(names, []any{first, last, state})
		}
	}
	for _, o := range env.Roster.Current() {
		names = append(names, []any{o.FirstName, o.LastName, o.State})
	}
	if len(names) == 0 {
		return 0, nil
	}

	tx, err := env.Pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "politicians: begin activity tx")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`CREATE TEMP TABLE _tmp_active (first_name TEXT, last_name TEXT, state TEXT) ON COMMIT DROP`,
	); err != nil {
		return 0, eris.Wrap(err, "politicians: create active temp table")
	}

	if _, err := db.CopyFrom(ctx, tx, "_tmp_active",
		[]string{"first_name", "last_name", "state"}, names,
	); err != nil {
		return 0, eris.Wrap(err, "politicians: copy active names")
	}

	tag, err := tx.Exec(ctx,
		`UPDATE politicians p SET is_active = TRUE
		 FROM (SELECT DISTINCT lower(first_name) AS f, lower(last_name) AS l, lower(state) AS s
		         FROM _tmp_active) a
		 WHERE lower(p.first_name) = a.f AND lower(p.last_name) = a.l AND lower(p.state) = a.s`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "politicians: update active flags")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "politicians: commit activity tx")
	}
	return tag.RowsAffected(), nil
}

// memberRow builds the politician insert row and per-congress dedup key for
// one member listing entry. Entries with an unparseable name, a blank state,
// or a chamber other than the House or Senate have no place in the table and
// are skipped.
func memberRow(m congress.Member) (row []any, key string, ok bool) {
	first, last, ok := splitMemberName(m.Name)
	state := strings.TrimSpace(m.State)
	if !ok || state == "" {
		return nil, "", false
	}
	chamber, role := chamberRole(m.Chamber())
	if chamber == "" {
		return nil, "", false
	}

	var district any
	if m.District != nil && chamber == "House" {
		district = *m.District
	}
	row = []any{
		first, last, textOrNil(m.PartyName), chamber,
		state, district, false, role,
	}
	return row, strings.ToLower(first + "|" + last + "|" + state), true
}

// splitMemberName splits the API's "Last, First Middle" display name.
func splitMemberName(name string) (first, last string, ok bool) {
	lastPart, firstPart, found := strings.Cut(name, ",")
	if !found {
		return "", "", false
	}
	first = strings.TrimSpace(firstPart)
	last = strings.TrimSpace(lastPart)
	if first == "" || last == "" {
		return "", "", false
	}
	return first, last, true
}

// chamberRole maps the API chamber string to the stored chamber and role.
func chamberRole(chamber string) (string, string) {
	switch chamber {
	case "House of Representatives":
		return "House", "Representative"
	case "Senate":
		return "Senate", "Senator"
	}
	return "", ""
}
