package entities

import "time"

type VerificationLevel string

const (
	LevelBasic    VerificationLevel = "basic"
	LevelStandard VerificationLevel = "standard"
	LevelPremium  VerificationLevel = "premium"
)

type VerificationKind string

const (
	KindEmail VerificationKind = "email"
	KindPhone VerificationKind = "phone"
	KindID    VerificationKind = "id"
)

func IsValidVerificationKind(kind VerificationKind) bool {
	switch kind {
	case KindEmail, KindPhone, KindID:
		return true
	default:
		return false
	}
}

// MinimumVotingAge applies only when the voter supplied a birth date.
const MinimumVotingAge = 18

type VoterProfile struct {
	VoterID        string
	Email          string
	PhoneNumber    string
	FullName       string
	NationalID     string
	DateOfBirth    *time.Time
	Address        string
	EmailVerified  bool
	PhoneVerified  bool
	IDVerified     bool
	Level          VerificationLevel
	VotingEligible bool
	HasVoted       bool
	RegisteredAt   time.Time
	UpdatedAt      time.Time
}

// DeriveLevel maps the three possession flags onto a trust level.
// First match wins: all three is premium, email plus one other channel
// is standard, anything else is basic.
func DeriveLevel(emailVerified bool, phoneVerified bool, idVerified bool) (VerificationLevel, bool) {
	switch {
	case emailVerified && phoneVerified && idVerified:
		return LevelPremium, true
	case emailVerified && (phoneVerified || idVerified):
		return LevelStandard, true
	default:
		return LevelBasic, false
	}
}

// Recompute refreshes the derived level and eligibility from the flags.
func (p *VoterProfile) Recompute() {
	p.Level, p.VotingEligible = DeriveLevel(p.EmailVerified, p.PhoneVerified, p.IDVerified)
}

// Flag reports the current value of one verification channel.
func (p VoterProfile) Flag(kind VerificationKind) bool {
	switch kind {
	case KindEmail:
		return p.EmailVerified
	case KindPhone:
		return p.PhoneVerified
	case KindID:
		return p.IDVerified
	default:
		return false
	}
}

// SetFlag applies a verification outcome. Flags are monotonic: a channel
// that is already verified is never cleared by a later false value.
func (p *VoterProfile) SetFlag(kind VerificationKind, value bool) {
	switch kind {
	case KindEmail:
		p.EmailVerified = p.EmailVerified || value
	case KindPhone:
		p.PhoneVerified = p.PhoneVerified || value
	case KindID:
		p.IDVerified = p.IDVerified || value
	}
}

// AgeAt computes the voter's age in whole years. The second return is
// false when no birth date was declared.
func (p VoterProfile) AgeAt(now time.Time) (int, bool) {
	if p.DateOfBirth == nil {
		return 0, false
	}
	birth := p.DateOfBirth.UTC()
	now = now.UTC()
	age := now.Year() - birth.Year()
	anniversary := time.Date(now.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC)
	if now.Before(anniversary) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age, true
}

type EligibilityDecision struct {
	Eligible bool
	Reason   string
	Level    VerificationLevel
}

const (
	ReasonProfileNotFound          = "profile not found"
	ReasonAlreadyVoted             = "already voted"
	ReasonInsufficientVerification = "insufficient verification"
	ReasonUnderage                 = "underage"
)
