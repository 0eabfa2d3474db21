package resolve

import "strings"

// NormalizeBillNumber reduces a bill identifier to its lookup key:
// lowercase with spaces and periods stripped. "H.R. 1234" -> "hr1234".
func NormalizeBillNumber(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	return s
}

// BillIndex maps normalized bill numbers to bill surrogate IDs.
type BillIndex struct {
	byNumber map[string]int64
}

// NewBillIndex returns an empty index.
func NewBillIndex() *BillIndex {
	return &BillIndex{byNumber: make(map[string]int64)}
}

// Add indexes one bill row.
func (x *BillIndex) Add(billNumber string, id int64) {
	x.byNumber[NormalizeBillNumber(billNumber)] = id
}

// Len returns the number of indexed bills.
func (x *BillIndex) Len() int { return len(x.byNumber) }

// Resolve looks up a bill identifier in any punctuation/case variant.
func (x *BillIndex) Resolve(billNumber string) (int64, bool) {
	id, ok := x.byNumber[NormalizeBillNumber(billNumber)]
	return id, ok
}

// RollCallKey identifies a single recorded vote event.
type RollCallKey struct {
	Congress int
	Roll     int
	Chamber  string
}

// RollCallIndex maps roll-call keys to bill surrogate IDs, so the vote pass
// resolves each vote record's triple directly without re-parsing bill
// numbers per vote.
type RollCallIndex struct {
	byKey map[RollCallKey]int64
}

// NewRollCallIndex returns an empty index.
func NewRollCallIndex() *RollCallIndex {
	return &RollCallIndex{byKey: make(map[RollCallKey]int64)}
}

// Add indexes one roll call. Chamber strings are trimmed but otherwise used
// verbatim; rollcall and vote records come from the same source files.
func (x *RollCallIndex) Add(congress, roll int, chamber string, billID int64) {
	x.byKey[RollCallKey{Congress: congress, Roll: roll, Chamber: strings.TrimSpace(chamber)}] = billID
}

// Len returns the number of indexed roll calls.
func (x *RollCallIndex) Len() int { return len(x.byKey) }

// Resolve looks up the bill ID for a roll-call triple.
func (x *RollCallIndex) Resolve(congress, roll int, chamber string) (int64, bool) {
	id, ok := x.byKey[RollCallKey{Congress: congress, Roll: roll, Chamber: strings.TrimSpace(chamber)}]
	return id, ok
}
