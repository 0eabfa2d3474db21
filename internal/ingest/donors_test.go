package ingest

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paper-trail/papertrail/internal/model"
)

func strp(s string) *string { return &s }

func TestKeyFor_NullAsEmpty(t *testing.T) {
	withNils := model.Donor{Name: "DOE, JANE", DonorType: model.DonorIndividual}
	withEmpties := model.Donor{Name: "doe, jane", DonorType: model.DonorIndividual, Employer: strp(""), State: strp("")}
	assert.Equal(t, keyFor(withNils), keyFor(withEmpties))
}

func TestKeyFor_CaseInsensitive(t *testing.T) {
	a := model.Donor{Name: "ACME PAC", DonorType: model.DonorPACParty, Employer: strp("ACME"), State: strp("NJ")}
	b := model.Donor{Name: "Acme Pac", DonorType: model.DonorPACParty, Employer: strp("acme"), State: strp("nj")}
	assert.Equal(t, keyFor(a), keyFor(b))
}

func TestDonorCache_ObserveDedups(t *testing.T) {
	cache := NewDonorCache()
	d := model.Donor{Name: "DOE, JANE", DonorType: model.DonorIndividual, State: strp("NJ")}

	cache.Observe(d)
	cache.Observe(d)
	assert.Equal(t, 1, cache.PendingCount())

	_, ok := cache.Resolve(d)
	assert.False(t, ok, "unflushed keys must not resolve")
}

func TestDonorCache_FlushEmpty(t *testing.T) {
	cache := NewDonorCache()
	require.NoError(t, cache.Flush(context.Background(), nil))
}

func TestDonorCache_FlushResolvesAcrossBatches(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	d := model.Donor{Name: "ACME PAC", DonorType: model.DonorPACParty}

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE _tmp_donor_keys").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_donor_keys"}, []string{"name", "donor_type", "employer", "state"}).WillReturnResult(1)
	mock.ExpectExec("INSERT INTO donors").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT d.donor_id").WillReturnRows(
		pgxmock.NewRows([]string{"donor_id", "name", "donor_type", "employer", "state"}).
			AddRow(int64(42), "ACME PAC", "PAC/Party", nil, nil),
	)
	mock.ExpectCommit()

	cache := NewDonorCache()
	cache.Observe(d)
	require.NoError(t, cache.Flush(context.Background(), mock))
	assert.Equal(t, 0, cache.PendingCount())

	id, ok := cache.Resolve(d)
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	// The same key in a later batch is already resolved, so nothing is
	// pending and a second flush issues no database work.
	cache.Observe(d)
	assert.Equal(t, 0, cache.PendingCount())
	require.NoError(t, cache.Flush(context.Background(), mock))

	again, ok := cache.Resolve(d)
	require.True(t, ok)
	assert.Equal(t, id, again)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonorCache_FlushErrorKeepsPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE _tmp_donor_keys").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	cache := NewDonorCache()
	cache.Observe(model.Donor{Name: "DOE, JANE", DonorType: model.DonorIndividual})
	require.Error(t, cache.Flush(context.Background(), mock))
	assert.Equal(t, 1, cache.PendingCount())
}
