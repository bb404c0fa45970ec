package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"electra/contexts/election-core/eligibility-service/application/commands"
	"electra/contexts/election-core/eligibility-service/application/queries"
	"electra/contexts/election-core/eligibility-service/domain/entities"
	domainerrors "electra/contexts/election-core/eligibility-service/domain/errors"
	httptransport "electra/contexts/election-core/eligibility-service/transport/http"
)

type Handler struct {
	Profiles    commands.ProfileUseCase
	Eligibility queries.EligibilityUseCase
	Logger      *slog.Logger
}

func (h Handler) RegisterVoterHandler(
	ctx context.Context,
	req httptransport.RegisterVoterRequest,
) (httptransport.VoterProfileResponse, error) {
	dateOfBirth, err := parseDate(req.DateOfBirth)
	if err != nil {
		return httptransport.VoterProfileResponse{}, domainerrors.ErrInvalidRequest
	}
	profile, err := h.Profiles.RegisterVoter(ctx, commands.RegisterVoterCommand{
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		FullName:    req.FullName,
		NationalID:  req.NationalID,
		DateOfBirth: dateOfBirth,
		Address:     req.Address,
	})
	if err != nil {
		return httptransport.VoterProfileResponse{}, err
	}
	return mapProfile(profile), nil
}

func (h Handler) SetVerificationHandler(
	ctx context.Context,
	voterID string,
	req httptransport.SetVerificationRequest,
) (httptransport.VoterProfileResponse, error) {
	profile, err := h.Profiles.SetVerification(ctx, commands.SetVerificationCommand{
		VoterID: voterID,
		Kind:    entities.VerificationKind(strings.TrimSpace(req.Kind)),
		Value:   req.Value,
	})
	if err != nil {
		return httptransport.VoterProfileResponse{}, err
	}
	return mapProfile(profile), nil
}

func (h Handler) GetProfileHandler(ctx context.Context, voterID string) (httptransport.VoterProfileResponse, error) {
	profile, err := h.Eligibility.GetProfile(ctx, voterID)
	if err != nil {
		return httptransport.VoterProfileResponse{}, err
	}
	return mapProfile(profile), nil
}

func (h Handler) CheckEligibilityHandler(ctx context.Context, voterID string) (httptransport.EligibilityResponse, error) {
	decision, err := h.Eligibility.CheckEligibility(ctx, voterID)
	if err != nil {
		return httptransport.EligibilityResponse{}, err
	}
	return httptransport.EligibilityResponse{
		VoterID:  strings.TrimSpace(voterID),
		Eligible: decision.Eligible,
		Reason:   decision.Reason,
		Level:    string(decision.Level),
	}, nil
}

func (h Handler) DuplicateNationalIDHandler(
	ctx context.Context,
	nationalID string,
) (httptransport.DuplicateNationalIDResponse, error) {
	duplicate, err := h.Eligibility.IsDuplicateNationalID(ctx, nationalID)
	if err != nil {
		return httptransport.DuplicateNationalIDResponse{}, err
	}
	return httptransport.DuplicateNationalIDResponse{
		NationalID: strings.TrimSpace(nationalID),
		Duplicate:  duplicate,
	}, nil
}

func (h Handler) SubmitIDDocumentHandler(
	ctx context.Context,
	voterID string,
	req httptransport.SubmitIDDocumentRequest,
) (httptransport.IDDocumentSubmissionResponse, error) {
	submission, err := h.Profiles.SubmitIDDocument(ctx, commands.SubmitIDDocumentCommand{
		VoterID:     voterID,
		NationalID:  req.NationalID,
		IDType:      entities.IDDocumentType(strings.TrimSpace(req.IDType)),
		DocumentRef: req.DocumentRef,
	})
	if err != nil {
		return httptransport.IDDocumentSubmissionResponse{}, err
	}
	return mapSubmission(submission), nil
}

func (h Handler) ReviewIDDocumentHandler(
	ctx context.Context,
	submissionID string,
	reviewerID string,
	req httptransport.ReviewIDDocumentRequest,
) (httptransport.IDDocumentSubmissionResponse, error) {
	submission, err := h.Profiles.ReviewIDDocument(ctx, commands.ReviewIDDocumentCommand{
		SubmissionID:    submissionID,
		Decision:        req.Decision,
		ReviewerID:      reviewerID,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		return httptransport.IDDocumentSubmissionResponse{}, err
	}
	return mapSubmission(submission), nil
}

func (h Handler) ListSubmissionsHandler(ctx context.Context, status string) (httptransport.SubmissionListResponse, error) {
	submissions, err := h.Eligibility.ListSubmissions(ctx, entities.SubmissionStatus(strings.TrimSpace(status)))
	if err != nil {
		return httptransport.SubmissionListResponse{}, err
	}
	items := make([]httptransport.IDDocumentSubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		items = append(items, mapSubmission(submission))
	}
	return httptransport.SubmissionListResponse{Items: items}, nil
}

func mapProfile(profile entities.VoterProfile) httptransport.VoterProfileResponse {
	dateOfBirth := ""
	if profile.DateOfBirth != nil {
		dateOfBirth = profile.DateOfBirth.UTC().Format("2006-01-02")
	}
	return httptransport.VoterProfileResponse{
		VoterID:        profile.VoterID,
		Email:          profile.Email,
		PhoneNumber:    profile.PhoneNumber,
		FullName:       profile.FullName,
		NationalID:     profile.NationalID,
		DateOfBirth:    dateOfBirth,
		Address:        profile.Address,
		EmailVerified:  profile.EmailVerified,
		PhoneVerified:  profile.PhoneVerified,
		IDVerified:     profile.IDVerified,
		Level:          string(profile.Level),
		VotingEligible: profile.VotingEligible,
		HasVoted:       profile.HasVoted,
		RegisteredAt:   profile.RegisteredAt.UTC().Format(time.RFC3339),
	}
}

func mapSubmission(submission entities.IDDocumentSubmission) httptransport.IDDocumentSubmissionResponse {
	reviewedAt := ""
	if submission.ReviewedAt != nil {
		reviewedAt = submission.ReviewedAt.UTC().Format(time.RFC3339)
	}
	return httptransport.IDDocumentSubmissionResponse{
		SubmissionID:    submission.SubmissionID,
		VoterID:         submission.VoterID,
		NationalID:      submission.NationalID,
		IDType:          string(submission.IDType),
		DocumentRef:     submission.DocumentRef,
		Status:          string(submission.Status),
		ReviewerID:      submission.ReviewerID,
		RejectionReason: submission.RejectionReason,
		SubmittedAt:     submission.SubmittedAt.UTC().Format(time.RFC3339),
		ReviewedAt:      reviewedAt,
	}
}

func parseDate(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return nil, err
	}
	parsed = parsed.UTC()
	return &parsed, nil
}
