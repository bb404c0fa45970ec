package workers

import (
	"context"
	"log/slog"

	"electra/contexts/identity-access/possession-proof-service/application"
)

// ChallengeExpirer sweeps issued challenges past their deadline so
// stale codes stop being confirmable even without a confirm attempt.
type ChallengeExpirer struct {
	Service   application.Service
	BatchSize int
	Logger    *slog.Logger
}

func (e ChallengeExpirer) RunOnce(ctx context.Context) error {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := e.BatchSize
	if limit <= 0 {
		limit = 100
	}
	expired, err := e.Service.ExpireChallenges(ctx, limit)
	if err != nil {
		logger.Error("challenge expiry sweep failed",
			"event", "proof_expirer_sweep_failed",
			"module", "identity-access/possession-proof-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if expired > 0 {
		logger.Info("challenge expiry sweep completed",
			"event", "proof_expirer_sweep_completed",
			"module", "identity-access/possession-proof-service",
			"layer", "worker",
			"expired_count", expired,
		)
	}
	return nil
}
