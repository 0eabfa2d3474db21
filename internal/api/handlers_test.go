package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewServer(mock), mock
}

func doGet(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doGet(t, s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPoliticianSearch_NameTooShort(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, doGet(t, s, "/api/politicians/search").Code)
	assert.Equal(t, http.StatusBadRequest, doGet(t, s, "/api/politicians/search?name=k").Code)
}

func TestPoliticianSearch(t *testing.T) {
	s, mock := newTestServer(t)

	party := "Republican"
	mock.ExpectQuery("SELECT politician_id, first_name, last_name").
		WithArgs("%kemp%").
		WillReturnRows(pgxmock.NewRows(
			[]string{"politician_id", "first_name", "last_name", "party", "state", "role", "is_active"},
		).AddRow(int64(101), "Brian", "Kemp", &party, "Georgia", (*string)(nil), true))

	rec := doGet(t, s, "/api/politicians/search?name=kemp")
	require.Equal(t, http.StatusOK, rec.Code)

	var results []politicianJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, int64(101), results[0].PoliticianID)
	assert.Equal(t, "Kemp", results[0].LastName)
	assert.True(t, results[0].IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoliticianSearch_EmptyResultIsArray(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectQuery("SELECT politician_id").
		WithArgs("%zz%").
		WillReturnRows(pgxmock.NewRows(
			[]string{"politician_id", "first_name", "last_name", "party", "state", "role", "is_active"},
		))

	rec := doGet(t, s, "/api/politicians/search?name=zz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetPolitician_NotFound(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectQuery("SELECT politician_id").
		WithArgs(int64(999)).
		WillReturnError(pgx.ErrNoRows)

	rec := doGet(t, s, "/api/politician/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPolitician_BadID(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, doGet(t, s, "/api/politician/abc").Code)
}

func TestPoliticianVotes_TypeFilterAndPaging(t *testing.T) {
	s, mock := newTestServer(t)

	introduced := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT v.vote, b.bill_number").
		WithArgs(int64(7), "^s[0-9]+$", 50, 50).
		WillReturnRows(pgxmock.NewRows(
			[]string{"vote", "bill_number", "title", "congress", "date_introduced"},
		).AddRow("Yea", "s99", "A bill", 118, &introduced))

	rec := doGet(t, s, "/api/politician/7/votes?type=s&page=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var results []voteJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Yea", results[0].Vote)
	assert.Equal(t, "s99", results[0].BillNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoliticianVotes_RejectsUnknownType(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, doGet(t, s, "/api/politician/7/votes?type=hres").Code)
}

func TestPoliticianVotes_RejectsBadPage(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, doGet(t, s, "/api/politician/7/votes?page=0").Code)
}

func TestDonationSummary(t *testing.T) {
	s, mock := newTestServer(t)

	pct := 62.5
	mock.ExpectQuery("WITH politician_donations").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(
			[]string{"name", "donor_type", "employer", "state", "total_amount", "percentage"},
		).AddRow("ACME PAC", "PAC/Party", (*string)(nil), (*string)(nil), 5000.0, &pct))

	rec := doGet(t, s, "/api/politician/7/donations/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var results []donationSummaryJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "ACME PAC", results[0].DonorName)
	assert.InDelta(t, 62.5, *results[0].Percentage, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonationSummary_IndustryFilter(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectQuery("WITH politician_donations").
		WithArgs(int64(7), "%oil%").
		WillReturnRows(pgxmock.NewRows(
			[]string{"name", "donor_type", "employer", "state", "total_amount", "percentage"},
		))

	rec := doGet(t, s, "/api/politician/7/donations/summary?industry=oil")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonorSearch_NameTooShort(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, doGet(t, s, "/api/donors/search?name=ab").Code)
}

func TestDonorDonations(t *testing.T) {
	s, mock := newTestServer(t)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	party := "Democratic"
	role := "Senator"
	mock.ExpectQuery("SELECT d.amount, d.date").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows(
			[]string{"amount", "date", "politician_id", "first_name", "last_name", "party", "state", "role"},
		).AddRow(2500.0, &date, int64(7), "Cory", "Booker", &party, "New Jersey", &role))

	rec := doGet(t, s, "/api/donor/42/donations")
	require.Equal(t, http.StatusOK, rec.Code)

	var results []donorDonationJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, 2500.0, results[0].Amount)
	assert.Equal(t, "Booker", results[0].LastName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
