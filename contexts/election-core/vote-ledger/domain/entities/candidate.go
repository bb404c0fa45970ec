package entities

import "time"

// Candidate carries a stored tally. The tally is only ever moved by
// the cast path's server-side increment or by an explicit recount.
type Candidate struct {
	CandidateID string
	Name        string
	Party       string
	Description string
	Votes       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ElectionResults is the admin results view: stored tallies ordered
// by vote count, plus the overall ballot count.
type ElectionResults struct {
	TotalBallots int
	Candidates   []Candidate
}

// RecountReport compares a candidate's stored tally against the count
// derived from the ballot ledger.
type RecountReport struct {
	CandidateID  string
	StoredVotes  int
	DerivedVotes int
	Corrected    bool
}

// EligibilityDecision mirrors the eligibility module's answer for the
// pre-cast check. Reason is empty when Eligible is true.
type EligibilityDecision struct {
	Eligible bool
	Reason   string
	Level    string
}
