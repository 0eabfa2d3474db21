package ingest

import (
	"strconv"
	"strings"
	"time"
)

// FEC bulk files are pipe-delimited with fixed positional schemas and no
// header row. Parsers validate required fields up front and return a skip
// reason instead of letting empty strings leak into the matching logic.
// Field positions follow the published FEC file descriptions.

// Candidate master (cn) field positions.
const (
	cnCandID      = 0
	cnCandName    = 1
	cnParty       = 2
	cnElectionYr  = 3
	cnOfficeState = 4
	cnOffice      = 5
	cnDistrict    = 6
)

// CandidateRecord is one candidate master row.
type CandidateRecord struct {
	CandidateID string
	Name        string
	Party       string
	OfficeState string
	Office      string // H, S, or P
	District    string
}

// ParseCandidate validates a candidate master row. A non-empty skip reason
// means the row should be counted and dropped.
func ParseCandidate(fields []string) (*CandidateRecord, string) {
	if len(fields) <= cnDistrict {
		return nil, "short row"
	}
	rec := &CandidateRecord{
		CandidateID: strings.TrimSpace(fields[cnCandID]),
		Name:        strings.TrimSpace(fields[cnCandName]),
		Party:       strings.TrimSpace(fields[cnParty]),
		OfficeState: strings.TrimSpace(fields[cnOfficeState]),
		Office:      strings.TrimSpace(fields[cnOffice]),
		District:    strings.TrimSpace(fields[cnDistrict]),
	}
	if rec.CandidateID == "" {
		return nil, "missing candidate id"
	}
	if rec.Name == "" {
		return nil, "missing name"
	}
	return rec, ""
}

// Committee master (cm) field positions.
const (
	cmCmteID   = 0
	cmCmteName = 1
)

// CommitteeRecord is one committee master row.
type CommitteeRecord struct {
	CommitteeID string
	Name        string
}

// ParseCommittee validates a committee master row.
func ParseCommittee(fields []string) (*CommitteeRecord, string) {
	if len(fields) <= cmCmteName {
		return nil, "short row"
	}
	rec := &CommitteeRecord{
		CommitteeID: strings.TrimSpace(fields[cmCmteID]),
		Name:        strings.TrimSpace(fields[cmCmteName]),
	}
	if rec.CommitteeID == "" {
		return nil, "missing committee id"
	}
	if rec.Name == "" {
		return nil, "missing name"
	}
	return rec, ""
}

// Candidate-committee linkage (ccl) field positions.
const (
	cclCandID = 0
	cclCmteID = 3
)

// LinkageRecord links a committee to the candidate it files for.
type LinkageRecord struct {
	CandidateID string
	CommitteeID string
}

// ParseLinkage validates a linkage row.
func ParseLinkage(fields []string) (*LinkageRecord, string) {
	if len(fields) <= cclCmteID {
		return nil, "short row"
	}
	rec := &LinkageRecord{
		CandidateID: strings.TrimSpace(fields[cclCandID]),
		CommitteeID: strings.TrimSpace(fields[cclCmteID]),
	}
	if rec.CandidateID == "" || rec.CommitteeID == "" {
		return nil, "missing id"
	}
	return rec, ""
}

// Contribution (itcont, pas2) shared field positions. pas2 rows additionally
// carry the recipient candidate ID.
const (
	conFilerID    = 0
	conTxType     = 5
	conEntityType = 6
	conName       = 7
	conState      = 9
	conEmployer   = 11
	conDate       = 13
	conAmount     = 14
	conOtherID    = 15
	conCandID     = 16
)

// ContributionRecord is one contribution row from either file family.
type ContributionRecord struct {
	FilerID         string
	TransactionType string
	EntityType      string
	Name            string
	State           string
	Employer        string
	Date            *time.Time
	Amount          float64
	OtherID         string
	CandidateID     string // pas2 only
}

// ParseContribution validates a contribution row. Field presence rules
// specific to a file family (e.g. itcont requiring name and state) are
// applied by the stage; this parser only rejects structurally broken rows.
func ParseContribution(fields []string) (*ContributionRecord, string) {
	if len(fields) <= conOtherID {
		return nil, "short row"
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(fields[conAmount]), 64)
	if err != nil {
		return nil, "bad amount"
	}

	rec := &ContributionRecord{
		FilerID:         strings.TrimSpace(fields[conFilerID]),
		TransactionType: strings.TrimSpace(fields[conTxType]),
		EntityType:      strings.TrimSpace(fields[conEntityType]),
		Name:            strings.TrimSpace(fields[conName]),
		State:           strings.TrimSpace(fields[conState]),
		Employer:        strings.TrimSpace(fields[conEmployer]),
		Amount:          amount,
		OtherID:         strings.TrimSpace(fields[conOtherID]),
	}
	if len(fields) > conCandID {
		rec.CandidateID = strings.TrimSpace(fields[conCandID])
	}
	if rec.FilerID == "" {
		return nil, "missing filer id"
	}

	rec.Date = parseFECDate(fields[conDate])
	return rec, ""
}

// parseFECDate parses the MMDDYYYY transaction date. Missing or malformed
// dates yield nil; whether that skips the record is a per-stage rule.
func parseFECDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if len(s) != 8 {
		return nil
	}
	t, err := time.Parse("01022006", s)
	if err != nil {
		return nil
	}
	return &t
}
