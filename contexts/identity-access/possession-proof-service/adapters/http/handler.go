package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"electra/contexts/identity-access/possession-proof-service/application"
	"electra/contexts/identity-access/possession-proof-service/domain/entities"
	httptransport "electra/contexts/identity-access/possession-proof-service/transport/http"
)

type Handler struct {
	Proofs application.Service
	Logger *slog.Logger
}

func (h Handler) IssueChallengeHandler(
	ctx context.Context,
	voterID string,
	req httptransport.IssueChallengeRequest,
) (httptransport.ChallengeResponse, error) {
	challenge, err := h.Proofs.IssueChallenge(ctx, voterID, entities.ProofChannel(req.Channel), req.Destination)
	if err != nil {
		return httptransport.ChallengeResponse{}, err
	}
	return mapChallenge(challenge), nil
}

func (h Handler) ConfirmChallengeHandler(
	ctx context.Context,
	challengeID string,
	req httptransport.ConfirmChallengeRequest,
) (httptransport.ChallengeResponse, error) {
	challenge, err := h.Proofs.ConfirmChallenge(ctx, challengeID, req.Code)
	if err != nil {
		return httptransport.ChallengeResponse{}, err
	}
	return mapChallenge(challenge), nil
}

// mapChallenge never exposes the code over the read surface.
func mapChallenge(challenge entities.ProofChallenge) httptransport.ChallengeResponse {
	confirmedAt := ""
	if challenge.ConfirmedAt != nil {
		confirmedAt = challenge.ConfirmedAt.UTC().Format(time.RFC3339)
	}
	return httptransport.ChallengeResponse{
		ChallengeID: challenge.ChallengeID,
		VoterID:     challenge.VoterID,
		Channel:     string(challenge.Channel),
		Status:      string(challenge.Status),
		ExpiresAt:   challenge.ExpiresAt.UTC().Format(time.RFC3339),
		ConfirmedAt: confirmedAt,
	}
}
