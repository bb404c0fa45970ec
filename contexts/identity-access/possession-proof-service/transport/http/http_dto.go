package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type IssueChallengeRequest struct {
	Channel     string `json:"channel"`
	Destination string `json:"destination"`
}

type ConfirmChallengeRequest struct {
	Code string `json:"code"`
}

type ChallengeResponse struct {
	ChallengeID string `json:"challenge_id"`
	VoterID     string `json:"voter_id"`
	Channel     string `json:"channel"`
	Status      string `json:"status"`
	ExpiresAt   string `json:"expires_at"`
	ConfirmedAt string `json:"confirmed_at,omitempty"`
}
