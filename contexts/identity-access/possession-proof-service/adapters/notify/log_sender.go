package notify

import (
	"context"
	"log/slog"
	"strings"

	"electra/contexts/identity-access/possession-proof-service/domain/entities"
	"electra/contexts/identity-access/possession-proof-service/ports"
)

// LogSender writes codes to the structured log instead of a provider.
// It backs local runs and tests; production wiring swaps in a real
// email/SMS sender behind the same port.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) SendCode(
	ctx context.Context,
	channel entities.ProofChannel,
	destination string,
	code string,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("proof code dispatched",
		"event", "proof_code_dispatched",
		"module", "identity-access/possession-proof-service",
		"layer", "adapter",
		"channel", string(channel),
		"destination", maskDestination(destination),
		"code", code,
	)
	return nil
}

// maskDestination keeps logs free of full addresses and numbers.
func maskDestination(destination string) string {
	trimmed := strings.TrimSpace(destination)
	if len(trimmed) <= 4 {
		return "****"
	}
	return "****" + trimmed[len(trimmed)-4:]
}

var _ ports.CodeSender = LogSender{}
