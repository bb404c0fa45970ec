package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"electra/contexts/identity-access/credential-service/application"
	domainerrors "electra/contexts/identity-access/credential-service/domain/errors"
	httptransport "electra/contexts/identity-access/credential-service/transport/http"
)

type Handler struct {
	Credentials application.Service
	Logger      *slog.Logger
}

func (h Handler) RegisterHandler(
	ctx context.Context,
	req httptransport.RegisterRequest,
) (httptransport.RegisterResponse, error) {
	dateOfBirth, err := parseDate(req.DateOfBirth)
	if err != nil {
		return httptransport.RegisterResponse{}, domainerrors.ErrInvalidRequest
	}
	credential, err := h.Credentials.Register(ctx, application.RegisterCommand{
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		FullName:    req.FullName,
		NationalID:  req.NationalID,
		DateOfBirth: dateOfBirth,
		Address:     req.Address,
	})
	if err != nil {
		return httptransport.RegisterResponse{}, err
	}
	return httptransport.RegisterResponse{
		VoterID: credential.VoterID,
		Email:   credential.Email,
	}, nil
}

func (h Handler) LoginHandler(
	ctx context.Context,
	req httptransport.LoginRequest,
) (httptransport.LoginResponse, error) {
	session, err := h.Credentials.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httptransport.LoginResponse{}, err
	}
	return httptransport.LoginResponse{
		VoterID:   session.VoterID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
	}, nil
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
