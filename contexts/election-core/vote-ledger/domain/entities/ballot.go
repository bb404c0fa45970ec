package entities

import "time"

// Ballot is one cast vote. A voter owns at most one ballot; the
// persistence layer enforces that with a unique constraint on VoterID.
type Ballot struct {
	BallotID          string
	VoterID           string
	CandidateID       string
	VerificationLevel string
	IPAddress         string
	UserAgent         string
	CastAt            time.Time
}
