package crawler

import (
	"github.com/Caia-Tech/caia-legal-corpus/pkg/document"
)

// OutcomeKind classifies what happened to one discovered link.
type OutcomeKind int

const (
	OutcomePersisted OutcomeKind = iota
	OutcomeNonHTTP
	OutcomeFetchFailed
	OutcomeExtractFailed
	OutcomeBelowMinimum
	OutcomePersistFailed
	OutcomeCanceled
)

var outcomeNames = map[OutcomeKind]string{
	OutcomePersisted:     "persisted",
	OutcomeNonHTTP:       "skip-non-http",
	OutcomeFetchFailed:   "fetch-failed",
	OutcomeExtractFailed: "extract-failed",
	OutcomeBelowMinimum:  "skip-empty",
	OutcomePersistFailed: "persist-failed",
	OutcomeCanceled:      "canceled",
}

func (k OutcomeKind) String() string {
	if name, ok := outcomeNames[k]; ok {
		return name
	}
	return "unknown"
}

// LinkOutcome is the result of processing one link. Err is set for the
// failure kinds; Record only for OutcomePersisted.
type LinkOutcome struct {
	Kind   OutcomeKind
	URL    string
	Err    error
	Record *document.Record
}

// SeedReport summarizes one seed.
type SeedReport struct {
	RunID      string
	Seed       string
	Err        error // seed page could not be fetched or parsed
	Discovered int
	Outcomes   []LinkOutcome
}

// Count returns how many links ended with kind.
func (r *SeedReport) Count(kind OutcomeKind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// Counts tallies outcomes by kind name.
func (r *SeedReport) Counts() map[string]int {
	counts := make(map[string]int)
	for _, o := range r.Outcomes {
		counts[o.Kind.String()]++
	}
	return counts
}
