package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	domainerrors "electra/contexts/election-core/vote-ledger/domain/errors"
)

func TestMapStorageErrorTranslatesDeadline(t *testing.T) {
	wrapped := fmt.Errorf("query ballots: %w", context.DeadlineExceeded)
	err := mapStorageError(wrapped)
	if !errors.Is(err, domainerrors.ErrDependencyTimeout) {
		t.Fatalf("expected dependency timeout, got %v", err)
	}
}

func TestMapStorageErrorPassesThroughOtherFailures(t *testing.T) {
	broken := errors.New("connection refused")
	if err := mapStorageError(broken); !errors.Is(err, broken) {
		t.Fatalf("expected original error, got %v", err)
	}
	if err := mapStorageError(context.Canceled); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancellation is not a timeout, got %v", err)
	}
}
