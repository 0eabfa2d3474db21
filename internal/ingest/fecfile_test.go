package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCandidate_Valid(t *testing.T) {
	fields := []string{"S4NJ00185", "BOOKER, CORY A", "DEM", "2014", "NJ", "S", "00"}
	rec, skip := ParseCandidate(fields)
	require.Empty(t, skip)
	assert.Equal(t, "S4NJ00185", rec.CandidateID)
	assert.Equal(t, "BOOKER, CORY A", rec.Name)
	assert.Equal(t, "NJ", rec.OfficeState)
	assert.Equal(t, "S", rec.Office)
}

func TestParseCandidate_SkipReasons(t *testing.T) {
	_, skip := ParseCandidate([]string{"only", "three", "fields"})
	assert.Equal(t, "short row", skip)

	_, skip = ParseCandidate([]string{"", "BOOKER, CORY A", "DEM", "2014", "NJ", "S", "00"})
	assert.Equal(t, "missing candidate id", skip)

	_, skip = ParseCandidate([]string{"S4NJ00185", "  ", "DEM", "2014", "NJ", "S", "00"})
	assert.Equal(t, "missing name", skip)
}

func TestParseCommittee(t *testing.T) {
	rec, skip := ParseCommittee([]string{"C00401224", "ACTBLUE"})
	require.Empty(t, skip)
	assert.Equal(t, "C00401224", rec.CommitteeID)
	assert.Equal(t, "ACTBLUE", rec.Name)

	_, skip = ParseCommittee([]string{"C00401224"})
	assert.Equal(t, "short row", skip)

	_, skip = ParseCommittee([]string{"C00401224", ""})
	assert.Equal(t, "missing name", skip)
}

func TestParseLinkage(t *testing.T) {
	rec, skip := ParseLinkage([]string{"S4NJ00185", "2024", "S", "C00580068"})
	require.Empty(t, skip)
	assert.Equal(t, "S4NJ00185", rec.CandidateID)
	assert.Equal(t, "C00580068", rec.CommitteeID)

	_, skip = ParseLinkage([]string{"S4NJ00185", "2024", "S", ""})
	assert.Equal(t, "missing id", skip)
}

func contributionFields() []string {
	return []string{
		"C00580068", "N", "Q1", "P", "202401159000000001", "15", "IND",
		"DOE, JANE", "NEWARK", "NJ", "07102", "ACME CORP", "ENGINEER",
		"01152024", "5000", "", "",
	}
}

func TestParseContribution_Valid(t *testing.T) {
	rec, skip := ParseContribution(contributionFields())
	require.Empty(t, skip)
	assert.Equal(t, "C00580068", rec.FilerID)
	assert.Equal(t, "15", rec.TransactionType)
	assert.Equal(t, "DOE, JANE", rec.Name)
	assert.Equal(t, "NJ", rec.State)
	assert.Equal(t, "ACME CORP", rec.Employer)
	assert.Equal(t, 5000.0, rec.Amount)
	require.NotNil(t, rec.Date)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *rec.Date)
}

func TestParseContribution_CandidateID(t *testing.T) {
	fields := contributionFields()
	fields[conCandID] = "S4NJ00185"
	rec, skip := ParseContribution(fields)
	require.Empty(t, skip)
	assert.Equal(t, "S4NJ00185", rec.CandidateID)
}

func TestParseContribution_SkipReasons(t *testing.T) {
	_, skip := ParseContribution([]string{"C00580068", "N"})
	assert.Equal(t, "short row", skip)

	fields := contributionFields()
	fields[conAmount] = "not-a-number"
	_, skip = ParseContribution(fields)
	assert.Equal(t, "bad amount", skip)

	fields = contributionFields()
	fields[conFilerID] = ""
	_, skip = ParseContribution(fields)
	assert.Equal(t, "missing filer id", skip)
}

func TestParseFECDate(t *testing.T) {
	d := parseFECDate("01152024")
	require.NotNil(t, d)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.January, d.Month())
	assert.Equal(t, 15, d.Day())

	assert.Nil(t, parseFECDate(""))
	assert.Nil(t, parseFECDate("2024-01-15"))
	assert.Nil(t, parseFECDate("13402024"))
}
