package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CastVoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

type BallotResponse struct {
	BallotID          string `json:"ballot_id"`
	VoterID           string `json:"voter_id"`
	CandidateID       string `json:"candidate_id"`
	VerificationLevel string `json:"verification_level"`
	CastAt            string `json:"cast_at"`
}

type AddCandidateRequest struct {
	Name        string `json:"name"`
	Party       string `json:"party,omitempty"`
	Description string `json:"description,omitempty"`
}

type CandidateResponse struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Party       string `json:"party,omitempty"`
	Description string `json:"description,omitempty"`
	Votes       int    `json:"votes"`
}

type CandidateListResponse struct {
	Items []CandidateResponse `json:"items"`
}

type ResultsResponse struct {
	TotalBallots int                 `json:"total_ballots"`
	Candidates   []CandidateResponse `json:"candidates"`
}

type RecountResponse struct {
	CandidateID  string `json:"candidate_id"`
	StoredVotes  int    `json:"stored_votes"`
	DerivedVotes int    `json:"derived_votes"`
	Corrected    bool   `json:"corrected"`
}
