package ingest

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/paper-trail/papertrail/internal/db"
	"github.com/paper-trail/papertrail/internal/model"
)

// donorKey is the case-insensitive dedup key, with nil employer/state
// collapsed to empty strings.
type donorKey struct {
	name      string
	donorType string
	employer  string
	state     string
}

func keyFor(d model.Donor) donorKey {
	k := donorKey{
		name:      strings.ToLower(d.Name),
		donorType: strings.ToLower(d.DonorType),
	}
	if d.Employer != nil {
		k.employer = strings.ToLower(*d.Employer)
	}
	if d.State != nil {
		k.state = strings.ToLower(*d.State)
	}
	return k
}

// DonorCache resolves donor keys to surrogate IDs without one round-trip per
// donor. New keys accumulate in a pending set; Flush bulk-inserts them with
// conflict-skip semantics and pulls the assigned IDs back through one
// temp-table join, refreshing the cache for pre-existing and new rows alike.
type DonorCache struct {
	ids     map[donorKey]int64
	pending map[donorKey]model.Donor
}

// NewDonorCache returns an empty cache.
func NewDonorCache() *DonorCache {
	return &DonorCache{
		ids:     make(map[donorKey]int64),
		pending: make(map[donorKey]model.Donor),
	}
}

// Observe registers a donor for the next Flush if its key is not yet known.
func (c *DonorCache) Observe(d model.Donor) {
	k := keyFor(d)
	if _, ok := c.ids[k]; ok {
		return
	}
	if _, ok := c.pending[k]; ok {
		return
	}
	c.pending[k] = d
}

// Resolve returns the surrogate ID for a donor key. It only succeeds after
// a Flush has covered the key.
func (c *DonorCache) Resolve(d model.Donor) (int64, bool) {
	id, ok := c.ids[keyFor(d)]
	return id, ok
}

// PendingCount returns the number of donors awaiting a Flush.
func (c *DonorCache) PendingCount() int { return len(c.pending) }

// Flush inserts all pending donors and refreshes the cache with their IDs.
// Insert and ID readback run in one transaction so a partial failure leaves
// both the table and the cache untouched.
func (c *DonorCache) Flush(ctx context.Context, pool db.Pool) error {
	if len(c.pending) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(c.pending))
	for _, d := range c.pending {
		rows = append(rows, []any{d.Name, d.DonorType, d.Employer, d.State})
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "donors: begin tx")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`CREATE TEMP TABLE _tmp_donor_keys (name TEXT, donor_type TEXT, employer TEXT, state TEXT) ON COMMIT DROP`,
	); err != nil {
		return eris.Wrap(err, "donors: create temp table")
	}

	if _, err := db.CopyFrom(ctx, tx, "_tmp_donor_keys",
		[]string{"name", "donor_type", "employer", "state"}, rows,
	); err != nil {
		return eris.Wrap(err, "donors: copy pending keys")
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO donors (name, donor_type, employer, state)
		 SELECT DISTINCT name, donor_type, employer, state FROM _tmp_donor_keys
		 ON CONFLICT (name, donor_type, employer, state) DO NOTHING`,
	); err != nil {
		return eris.Wrap(err, "donors: insert pending")
	}

	// Read IDs back for every pending key, matching the cache's
	// case-insensitive, null-as-empty comparison.
	idRows, err := tx.Query(ctx,
		`SELECT d.donor_id, t.name, t.donor_type, t.employer, t.state
		 FROM donors d
		 JOIN _tmp_donor_keys t
		   ON lower(d.name) = lower(t.name)
		  AND lower(d.donor_type) = lower(t.donor_type)
		  AND COALESCE(lower(d.employer), '') = COALESCE(lower(t.employer), '')
		  AND COALESCE(lower(d.state), '') = COALESCE(lower(t.state), '')`,
	)
	if err != nil {
		return eris.Wrap(err, "donors: read back ids")
	}

	resolved := make(map[donorKey]int64, len(c.pending))
	for idRows.Next() {
		var id int64
		var d model.Donor
		if err := idRows.Scan(&id, &d.Name, &d.DonorType, &d.Employer, &d.State); err != nil {
			idRows.Close()
			return eris.Wrap(err, "donors: scan id row")
		}
		resolved[keyFor(d)] = id
	}
	idRows.Close()
	if err := idRows.Err(); err != nil {
		return eris.Wrap(err, "donors: id rows")
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "donors: commit tx")
	}

	for k, id := range resolved {
		c.ids[k] = id
	}
	c.pending = make(map[donorKey]model.Donor)
	return nil
}
