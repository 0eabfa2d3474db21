package resolve

import "fmt"

// indexKey is the primary matching key. Last name + state is highly stable
// for members of Congress, governors, and presidents; first names are not
// (nicknames, initials, middle names) and only disambiguate collisions.
type indexKey struct {
	Last  string
	State string
}

// candidate is one politician sharing an index key.
type candidate struct {
	ID    int64
	First string
}

// MatchStats summarizes a matching pass for the stage report.
type MatchStats struct {
	Matched   int
	Unmatched int
	Ambiguous int
}

// Total returns the number of match attempts.
func (s MatchStats) Total() int { return s.Matched + s.Unmatched + s.Ambiguous }

// sampleLimit bounds the unmatched-key sample kept for the stage report.
const sampleLimit = 15

// PoliticianIndex resolves foreign (name, state) records to politician
// surrogate IDs. Build it once per run from the canonical politician rows
// and pass it to the stages that need it.
type PoliticianIndex struct {
	byKey     map[indexKey][]candidate
	stats     MatchStats
	unmatched []string
}

// NewPoliticianIndex returns an empty index.
func NewPoliticianIndex() *PoliticianIndex {
	return &PoliticianIndex{byKey: make(map[indexKey][]candidate)}
}

// Add indexes one politician row. Names are normalized and the state must
// already be a full lowercase name (how politician rows are stored); rows
// whose key normalizes to nothing are ignored.
func (x *PoliticianIndex) Add(id int64, firstName, lastName, state string) {
	first := CleanNamePart(firstName)
	last := CleanNamePart(lastName)
	full, ok := CanonicalState(state)
	if last == "" || !ok {
		return
	}
	key := indexKey{Last: last, State: full}
	x.byKey[key] = append(x.byKey[key], candidate{ID: id, First: first})
}

// Len returns the number of distinct (last, state) keys.
func (x *PoliticianIndex) Len() int { return len(x.byKey) }

// Match resolves a foreign record to at most one politician ID.
// Tie-break policy:
//  1. No candidates for (last, state): unmatched.
//  2. Exactly one candidate: matched, regardless of first name.
//  3. Multiple candidates: first exact first-name-token match in index
//     order wins; no match means ambiguous, never a guess.
func (x *PoliticianIndex) Match(rawName, rawState string) (int64, bool) {
	first, last := NormalizeName(rawName)
	state, ok := CanonicalState(rawState)
	if last == "" || !ok {
		x.recordUnmatched(rawName, rawState)
		return 0, false
	}

	candidates := x.byKey[indexKey{Last: last, State: state}]
	switch {
	case len(candidates) == 0:
		x.recordUnmatched(rawName, rawState)
		return 0, false
	case len(candidates) == 1:
		x.stats.Matched++
		return candidates[0].ID, true
	}

	for _, c := range candidates {
		if c.First == first {
			x.stats.Matched++
			return c.ID, true
		}
	}
	x.stats.Ambiguous++
	return 0, false
}

func (x *PoliticianIndex) recordUnmatched(rawName, rawState string) {
	x.stats.Unmatched++
	if len(x.unmatched) < sampleLimit {
		x.unmatched = append(x.unmatched, fmt.Sprintf("%s (%s)", rawName, rawState))
	}
}

// Stats returns the match counters accumulated so far.
func (x *PoliticianIndex) Stats() MatchStats { return x.stats }

// UnmatchedSample returns up to sampleLimit unmatched keys for audit logging.
func (x *PoliticianIndex) UnmatchedSample() []string { return x.unmatched }
