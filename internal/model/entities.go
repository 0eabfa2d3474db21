// Package model defines the entity types backing the papertrail schema.
package model

import "time"

// Politician is a canonical person row. The natural key is
// (FirstName, LastName, State); State holds the full state name as returned
// by the member API.
type Politician struct {
	PoliticianID int64   `json:"politician_id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Party        *string `json:"party"`
	Chamber      *string `json:"chamber"`
	State        string  `json:"state"`
	District     *int    `json:"district,omitempty"`
	IsActive     bool    `json:"is_active"`
	Role         *string `json:"role"`
}

// Bill is an enacted law. BillNumber is the lowercase type+number key
// ("hr1234") and is unique.
type Bill struct {
	BillID         int64      `json:"bill_id"`
	BillNumber     string     `json:"bill_number"`
	Title          string     `json:"title"`
	DateIntroduced *time.Time `json:"date_introduced"`
	Congress       int        `json:"congress"`
	Subjects       []string   `json:"subjects"`
}

// Vote cast values.
const (
	VoteYea       = "Yea"
	VoteNay       = "Nay"
	VoteNotVoting = "Not Voting"
)

// Vote links a politician to a bill with a cast value.
type Vote struct {
	VoteID       int64  `json:"vote_id"`
	PoliticianID int64  `json:"politician_id"`
	BillID       int64  `json:"bill_id"`
	Vote         string `json:"vote"`
}

// Donor types.
const (
	DonorIndividual = "Individual"
	DonorPACParty   = "PAC/Party"
)

// Donor is a deduplicated contribution source. The dedup key is
// (Name, DonorType, Employer, State) with NULLs compared as empty strings.
type Donor struct {
	DonorID   int64   `json:"donor_id"`
	Name      string  `json:"name"`
	DonorType string  `json:"donor_type"`
	Employer  *string `json:"employer"`
	State     *string `json:"state"`
}

// Donation links a donor to a politician.
type Donation struct {
	DonationID       int64      `json:"donation_id"`
	DonorID          int64      `json:"donor_id"`
	PoliticianID     int64      `json:"politician_id"`
	Amount           float64    `json:"amount"`
	Date             *time.Time `json:"date"`
	ContributionType string     `json:"contribution_type"`
}
