package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const votesPageSize = 50

// Bill types the votes endpoint may filter on. Anything else is rejected so
// the filter can never widen the regex.
var filterableBillTypes = map[string]bool{
	"hr":    true,
	"s":     true,
	"hjres": true,
	"sjres": true,
}

type politicianJSON struct {
	PoliticianID int64   `json:"politician_id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Party        *string `json:"party"`
	State        string  `json:"state"`
	Role         *string `json:"role"`
	IsActive     bool    `json:"is_active"`
}

type voteJSON struct {
	Vote           string     `json:"vote"`
	BillNumber     string     `json:"bill_number"`
	Title          string     `json:"title"`
	Congress       int        `json:"congress"`
	DateIntroduced *time.Time `json:"date_introduced"`
}

type donationSummaryJSON struct {
	DonorName   string   `json:"donor_name"`
	DonorType   string   `json:"donor_type"`
	Employer    *string  `json:"employer"`
	DonorState  *string  `json:"donor_state"`
	TotalAmount float64  `json:"total_amount"`
	Percentage  *float64 `json:"percentage"`
}

type donorJSON struct {
	DonorID   int64   `json:"donor_id"`
	Name      string  `json:"name"`
	DonorType string  `json:"donor_type"`
	Employer  *string `json:"employer"`
	State     *string `json:"state"`
}

type donorDonationJSON struct {
	Amount       float64    `json:"amount"`
	Date         *time.Time `json:"date"`
	PoliticianID int64      `json:"politician_id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Party        *string    `json:"party"`
	State        string     `json:"state"`
	Role         *string    `json:"role"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("query failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePoliticianSearch(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if len(name) < 2 {
		writeError(w, http.StatusBadRequest, "a 'name' parameter with at least 2 characters is required")
		return
	}
	pattern := "%" + name + "%"

	rows, err := s.pool.Query(r.Context(),
		`SELECT politician_id, first_name, last_name, party, state, role, is_active
		 FROM politicians
		 WHERE last_name ILIKE $1 OR first_name ILIKE $1 OR role ILIKE $1
		 LIMIT 50`,
		pattern,
	)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	defer rows.Close()

	results := []politicianJSON{}
	for rows.Next() {
		var p politicianJSON
		if err := rows.Scan(&p.PoliticianID, &p.FirstName, &p.LastName, &p.Party, &p.State, &p.Role, &p.IsActive); err != nil {
			s.serverError(w, r, err)
			return
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handlePolitician(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid politician id")
		return
	}

	var p politicianJSON
	err := s.pool.QueryRow(r.Context(),
		`SELECT politician_id, first_name, last_name, party, state, role, is_active
		 FROM politicians WHERE politician_id = $1`,
		id,
	).Scan(&p.PoliticianID, &p.FirstName, &p.LastName, &p.Party, &p.State, &p.Role, &p.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "politician not found")
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePoliticianVotes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid politician id")
		return
	}

	q := r.URL.Query()

	page := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = n
	}

	query := `SELECT v.vote, b.bill_number, b.title, b.congress, b.date_introduced
	 FROM votes v
	 JOIN bills b ON v.bill_id = b.bill_id
	 WHERE v.politician_id = $1`
	args := []any{id}

	if billType := q.Get("type"); billType != "" {
		if !filterableBillTypes[billType] {
			writeError(w, http.StatusBadRequest, "invalid bill type")
			return
		}
		// Anchored so "s" never matches "sjres" bills.
		args = append(args, "^"+billType+"[0-9]+$")
		query += fmt.Sprintf(" AND b.bill_number ~* $%d", len(args))
	}

	dir := "DESC"
	if q.Get("sort") == "asc" {
		dir = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY b.date_introduced %s, b.bill_number %s", dir, dir)

	args = append(args, votesPageSize, (page-1)*votesPageSize)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.pool.Query(r.Context(), query, args...)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	defer rows.Close()

	results := []voteJSON{}
	for rows.Next() {
		var v voteJSON
		if err := rows.Scan(&v.Vote, &v.BillNumber, &v.Title, &v.Congress, &v.DateIntroduced); err != nil {
			s.serverError(w, r, err)
			return
		}
		results = append(results, v)
	}
	if err := rows.Err(); err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleDonationSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid politician id")
		return
	}

	query := `WITH politician_donations AS (
	    SELECT d.donor_id, SUM(d.amount) AS total_amount
	    FROM donations d
	    WHERE d.politician_id = $1
	    GROUP BY d.donor_id
	), total_received AS (
	    SELECT SUM(total_amount) AS grand_total
	    FROM politician_donations
	    WHERE total_amount > 0
	)
	SELECT dn.name, dn.donor_type, dn.employer, dn.state,
	       pd.total_amount,
	       (pd.total_amount / NULLIF(tr.grand_total, 0)) * 100 AS percentage
	FROM politician_donations pd
	JOIN donors dn ON pd.donor_id = dn.donor_id
	JOIN total_received tr ON TRUE
	WHERE pd.total_amount > 0`
	args := []any{id}

	if industry := r.URL.Query().Get("industry"); industry != "" {
		args = append(args, "%"+industry+"%")
		query += fmt.Sprintf(" AND dn.employer ILIKE $%d", len(args))
	}
	query += " ORDER BY pd.total_amount DESC"

	rows, err := s.pool.Query(r.Context(), query, args...)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	defer rows.Close()

	results := []donationSummaryJSON{}
	for rows.Next() {
		var d donationSummaryJSON
		if err := rows.Scan(&d.DonorName, &d.DonorType, &d.Employer, &d.DonorState, &d.TotalAmount, &d.Percentage); err != nil {
			s.serverError(w, r, err)
			return
		}
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleDonorSearch(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if len(name) < 3 {
		writeError(w, http.StatusBadRequest, "a 'name' parameter with at least 3 characters is required")
		return
	}
	pattern := "%" + name + "%"

	rows, err := s.pool.Query(r.Context(),
		`SELECT donor_id, name, donor_type, employer, state
		 FROM donors
		 WHERE name ILIKE $1 OR employer ILIKE $1
		 LIMIT 50`,
		pattern,
	)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	defer rows.Close()

	results := []donorJSON{}
	for rows.Next() {
		var d donorJSON
		if err := rows.Scan(&d.DonorID, &d.Name, &d.DonorType, &d.Employer, &d.State); err != nil {
			s.serverError(w, r, err)
			return
		}
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleDonorDonations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid donor id")
		return
	}

	rows, err := s.pool.Query(r.Context(),
		`SELECT d.amount, d.date, p.politician_id, p.first_name, p.last_name, p.party, p.state, p.role
		 FROM donations d
		 JOIN politicians p ON d.politician_id = p.politician_id
		 WHERE d.donor_id = $1
		 ORDER BY d.date DESC`,
		id,
	)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	defer rows.Close()

	results := []donorDonationJSON{}
	for rows.Next() {
		var d donorDonationJSON
		if err := rows.Scan(&d.Amount, &d.Date, &d.PoliticianID, &d.FirstName, &d.LastName, &d.Party, &d.State, &d.Role); err != nil {
			s.serverError(w, r, err)
			return
		}
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
