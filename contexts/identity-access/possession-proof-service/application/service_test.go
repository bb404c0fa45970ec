package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"electra/contexts/identity-access/possession-proof-service/adapters/memory"
	"electra/contexts/identity-access/possession-proof-service/domain/entities"
	domainerrors "electra/contexts/identity-access/possession-proof-service/domain/errors"
	"electra/contexts/identity-access/possession-proof-service/ports"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type recordingSender struct {
	codes []string
	err   error
}

func (s *recordingSender) SendCode(_ context.Context, _ entities.ProofChannel, _ string, code string) error {
	if s.err != nil {
		return s.err
	}
	s.codes = append(s.codes, code)
	return nil
}

func newProofService(store *memory.Store, sender ports.CodeSender, clock ports.Clock) Service {
	return Service{
		Challenges:  store,
		Sender:      sender,
		Codes:       store,
		Outbox:      store,
		Clock:       clock,
		IDGen:       store,
		SendTimeout: time.Second,
	}
}

func TestIssueChallengeDeliversSixDigitCode(t *testing.T) {
	store := memory.NewStore(nil)
	sender := &recordingSender{}
	clock := &fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	service := newProofService(store, sender, clock)

	challenge, err := service.IssueChallenge(context.Background(), "voter-1", entities.ChannelEmail, "ada@example.com")
	if err != nil {
		t.Fatalf("IssueChallenge: %v", err)
	}
	if len(challenge.Code) != entities.CodeLength {
		t.Fatalf("expected %d-digit code, got %q", entities.CodeLength, challenge.Code)
	}
	for _, r := range challenge.Code {
		if r < '0' || r > '9' {
			t.Fatalf("expected numeric code, got %q", challenge.Code)
		}
	}
	if challenge.Status != entities.ChallengeStatusIssued {
		t.Fatalf("expected issued status, got %q", challenge.Status)
	}
	if want := clock.now.Add(entities.ChallengeTTL); !challenge.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, challenge.ExpiresAt)
	}
	if len(sender.codes) != 1 || sender.codes[0] != challenge.Code {
		t.Fatalf("expected delivered code %q, got %v", challenge.Code, sender.codes)
	}
}

func TestIssueChallengeValidation(t *testing.T) {
	store := memory.NewStore(nil)
	service := newProofService(store, &recordingSender{}, &fixedClock{now: time.Now()})

	if _, err := service.IssueChallenge(context.Background(), "voter-1", "fax", "555-0100"); !errors.Is(err, domainerrors.ErrInvalidChannel) {
		t.Fatalf("expected ErrInvalidChannel, got %v", err)
	}
	if _, err := service.IssueChallenge(context.Background(), "voter-1", entities.ChannelPhone, "  "); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for blank destination, got %v", err)
	}
	if _, err := service.IssueChallenge(context.Background(), "", entities.ChannelEmail, "ada@example.com"); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for blank voter, got %v", err)
	}
}

func TestIssueChallengeSenderFailureNotSaved(t *testing.T) {
	store := memory.NewStore(nil)
	sender := &recordingSender{err: errors.New("provider down")}
	clock := &fixedClock{now: time.Now().UTC()}
	service := newProofService(store, sender, clock)

	_, err := service.IssueChallenge(context.Background(), "voter-1", entities.ChannelPhone, "+15550100")
	if !errors.Is(err, domainerrors.ErrDependencyTimeout) {
		t.Fatalf("expected ErrDependencyTimeout, got %v", err)
	}

	clock.now = clock.now.Add(entities.ChallengeTTL + time.Minute)
	expired, err := service.ExpireChallenges(context.Background(), 10)
	if err != nil {
		t.Fatalf("ExpireChallenges: %v", err)
	}
	if expired != 0 {
		t.Fatalf("expected no stored challenges after failed delivery, swept %d", expired)
	}
}

func TestConfirmChallengeEmitsProofEvent(t *testing.T) {
	store := memory.NewStore(nil)
	clock := &fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	service := newProofService(store, &recordingSender{}, clock)

	challenge, err := service.IssueChallenge(context.Background(), "voter-1", entities.ChannelEmail, "ada@example.com")
	if err != nil {
		t.Fatalf("IssueChallenge: %v", err)
	}

	clock.now = clock.now.Add(2 * time.Minute)
	confirmed, err := service.ConfirmChallenge(context.Background(), challenge.ChallengeID, challenge.Code)
	if err != nil {
		t.Fatalf("ConfirmChallenge: %v", err)
	}
	if confirmed.Status != entities.ChallengeStatusConfirmed {
		t.Fatalf("expected confirmed status, got %q", confirmed.Status)
	}
	if confirmed.ConfirmedAt == nil || !confirmed.ConfirmedAt.Equal(clock.now) {
		t.Fatalf("expected confirmation timestamp %v, got %v", clock.now, confirmed.ConfirmedAt)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPendingOutbox: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending event, got %d", len(pending))
	}
	if pending[0].EventType != "possession.proof_confirmed" {
		t.Fatalf("unexpected event type %q", pending[0].EventType)
	}
	if pending[0].PartitionKey != "voter-1" {
		t.Fatalf("expected partition key voter-1, got %q", pending[0].PartitionKey)
	}
}

func TestConfirmChallengeWrongCodeKeepsChallenge(t *testing.T) {
	store := memory.NewStore(nil)
	clock := &fixedClock{now: time.Now().UTC()}
	service := newProofService(store, &recordingSender{}, clock)

	challenge, err := service.IssueChallenge(context.Background(), "voter-1", entities.ChannelPhone, "+15550100")
	if err != nil {
		t.Fatalf("IssueChallenge: %v", err)
	}

	if _, err := service.ConfirmChallenge(context.Background(), challenge.ChallengeID, "000000"); !errors.Is(err, domainerrors.ErrCodeMismatch) {
		t.Fatalf("expected ErrCodeMismatch, got %v", err)
	}
	confirmed, err := service.ConfirmChallenge(context.Background(), challenge.ChallengeID, challenge.Code)
	if err != nil {
		t.Fatalf("expected challenge still confirmable, got %v", err)
	}
	if confirmed.Status != entities.ChallengeStatusConfirmed {
		t.Fatalf("expected confirmed status, got %q", confirmed.Status)
	}
}

func TestConfirmChallengeExpired(t *testing.T) {
	store := memory.NewStore(nil)
	clock := &fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	service := newProofService(store, &recordingSender{}, clock)

	challenge, err := service.IssueChallenge(context.Background(), "voter-1", entities.ChannelEmail, "ada@example.com")
	if err != nil {
		t.Fatalf("IssueChallenge: %v", err)
	}

	clock.now = clock.now.Add(entities.ChallengeTTL)
	if _, err := service.ConfirmChallenge(context.Background(), challenge.ChallengeID, challenge.Code); !errors.Is(err, domainerrors.ErrChallengeExpired) {
		t.Fatalf("expected ErrChallengeExpired, got %v", err)
	}
	if _, err := service.ConfirmChallenge(context.Background(), challenge.ChallengeID, challenge.Code); !errors.Is(err, domainerrors.ErrChallengeExpired) {
		t.Fatalf("expected ErrChallengeExpired on replay, got %v", err)
	}
}

func TestConfirmChallengeResolvedReplay(t *testing.T) {
	store := memory.NewStore(nil)
	clock := &fixedClock{now: time.Now().UTC()}
	service := newProofService(store, &recordingSender{}, clock)

	challenge, err := service.IssueChallenge(context.Background(), "voter-1", entities.ChannelEmail, "ada@example.com")
	if err != nil {
		t.Fatalf("IssueChallenge: %v", err)
	}
	if _, err := service.ConfirmChallenge(context.Background(), challenge.ChallengeID, challenge.Code); err != nil {
		t.Fatalf("ConfirmChallenge: %v", err)
	}

	if _, err := service.ConfirmChallenge(context.Background(), challenge.ChallengeID, challenge.Code); !errors.Is(err, domainerrors.ErrChallengeResolved) {
		t.Fatalf("expected ErrChallengeResolved, got %v", err)
	}
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPendingOutbox: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected single proof event, got %d", len(pending))
	}
}

func TestConfirmChallengeUnknown(t *testing.T) {
	service := newProofService(memory.NewStore(nil), &recordingSender{}, &fixedClock{now: time.Now()})

	if _, err := service.ConfirmChallenge(context.Background(), "missing", "123456"); !errors.Is(err, domainerrors.ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}
}

func TestExpireChallengesSweep(t *testing.T) {
	store := memory.NewStore(nil)
	clock := &fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	service := newProofService(store, &recordingSender{}, clock)

	first, err := service.IssueChallenge(context.Background(), "voter-1", entities.ChannelEmail, "ada@example.com")
	if err != nil {
		t.Fatalf("IssueChallenge: %v", err)
	}
	clock.now = clock.now.Add(5 * time.Minute)
	second, err := service.IssueChallenge(context.Background(), "voter-2", entities.ChannelPhone, "+15550100")
	if err != nil {
		t.Fatalf("IssueChallenge: %v", err)
	}

	clock.now = clock.now.Add(6 * time.Minute)
	expired, err := service.ExpireChallenges(context.Background(), 10)
	if err != nil {
		t.Fatalf("ExpireChallenges: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected one expired challenge, got %d", expired)
	}
	if _, err := service.ConfirmChallenge(context.Background(), first.ChallengeID, first.Code); !errors.Is(err, domainerrors.ErrChallengeExpired) {
		t.Fatalf("expected first challenge expired, got %v", err)
	}
	if _, err := service.ConfirmChallenge(context.Background(), second.ChallengeID, second.Code); err != nil {
		t.Fatalf("expected second challenge confirmable, got %v", err)
	}
}
