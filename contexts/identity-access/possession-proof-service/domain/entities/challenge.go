package entities

import "time"

type ProofChannel string

const (
	ChannelEmail ProofChannel = "email"
	ChannelPhone ProofChannel = "phone"
)

func IsValidProofChannel(channel ProofChannel) bool {
	return channel == ChannelEmail || channel == ChannelPhone
}

type ChallengeStatus string

const (
	ChallengeStatusIssued    ChallengeStatus = "issued"
	ChallengeStatusConfirmed ChallengeStatus = "confirmed"
	ChallengeStatusExpired   ChallengeStatus = "expired"
)

// ChallengeTTL bounds how long an issued code stays confirmable.
const ChallengeTTL = 10 * time.Minute

// CodeLength is the number of digits in a delivered proof code.
const CodeLength = 6

// ProofChallenge is one issued possession proof. A challenge moves
// from issued to confirmed or from issued to expired, never back.
type ProofChallenge struct {
	ChallengeID string
	VoterID     string
	Channel     ProofChannel
	Destination string
	Code        string
	Status      ChallengeStatus
	IssuedAt    time.Time
	ExpiresAt   time.Time
	ConfirmedAt *time.Time
}

func (c ProofChallenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

func (c ProofChallenge) Resolved() bool {
	return c.Status != ChallengeStatusIssued
}
