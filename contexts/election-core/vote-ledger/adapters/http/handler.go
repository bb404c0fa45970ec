package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"electra/contexts/election-core/vote-ledger/application/commands"
	"electra/contexts/election-core/vote-ledger/application/queries"
	"electra/contexts/election-core/vote-ledger/domain/entities"
	httptransport "electra/contexts/election-core/vote-ledger/transport/http"
)

type Handler struct {
	Ledger  commands.LedgerUseCase
	Results queries.ResultsUseCase
	Logger  *slog.Logger
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	voterID string,
	clientIP string,
	userAgent string,
	req httptransport.CastVoteRequest,
) (httptransport.BallotResponse, error) {
	ballot, err := h.Ledger.CastVote(ctx, commands.CastVoteCommand{
		VoterID:     voterID,
		CandidateID: req.CandidateID,
		IPAddress:   clientIP,
		UserAgent:   userAgent,
	})
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	return mapBallot(ballot), nil
}

func (h Handler) GetBallotHandler(ctx context.Context, voterID string) (httptransport.BallotResponse, error) {
	ballot, err := h.Results.GetBallotByVoter(ctx, voterID)
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	return mapBallot(ballot), nil
}

func (h Handler) AddCandidateHandler(
	ctx context.Context,
	req httptransport.AddCandidateRequest,
) (httptransport.CandidateResponse, error) {
	candidate, err := h.Ledger.AddCandidate(ctx, commands.AddCandidateCommand{
		Name:        req.Name,
		Party:       req.Party,
		Description: req.Description,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return mapCandidate(candidate), nil
}

func (h Handler) GetCandidateHandler(ctx context.Context, candidateID string) (httptransport.CandidateResponse, error) {
	candidate, err := h.Results.GetCandidate(ctx, candidateID)
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return mapCandidate(candidate), nil
}

func (h Handler) ListCandidatesHandler(ctx context.Context) (httptransport.CandidateListResponse, error) {
	candidates, err := h.Results.ListCandidates(ctx)
	if err != nil {
		return httptransport.CandidateListResponse{}, err
	}
	return httptransport.CandidateListResponse{
		Items: mapCandidates(candidates),
	}, nil
}

func (h Handler) ResultsHandler(ctx context.Context) (httptransport.ResultsResponse, error) {
	results, err := h.Results.Results(ctx)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	return httptransport.ResultsResponse{
		TotalBallots: results.TotalBallots,
		Candidates:   mapCandidates(results.Candidates),
	}, nil
}

func (h Handler) RecountCandidateHandler(ctx context.Context, candidateID string) (httptransport.RecountResponse, error) {
	report, err := h.Results.RecountCandidate(ctx, candidateID)
	if err != nil {
		return httptransport.RecountResponse{}, err
	}
	return httptransport.RecountResponse{
		CandidateID:  report.CandidateID,
		StoredVotes:  report.StoredVotes,
		DerivedVotes: report.DerivedVotes,
		Corrected:    report.Corrected,
	}, nil
}

func mapBallot(ballot entities.Ballot) httptransport.BallotResponse {
	return httptransport.BallotResponse{
		BallotID:          ballot.BallotID,
		VoterID:           ballot.VoterID,
		CandidateID:       ballot.CandidateID,
		VerificationLevel: ballot.VerificationLevel,
		CastAt:            ballot.CastAt.UTC().Format(time.RFC3339),
	}
}

func mapCandidate(candidate entities.Candidate) httptransport.CandidateResponse {
	return httptransport.CandidateResponse{
		CandidateID: candidate.CandidateID,
		Name:        candidate.Name,
		Party:       candidate.Party,
		Description: candidate.Description,
		Votes:       candidate.Votes,
	}
}

func mapCandidates(candidates []entities.Candidate) []httptransport.CandidateResponse {
	items := make([]httptransport.CandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, mapCandidate(candidate))
	}
	return items
}
