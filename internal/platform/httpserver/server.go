package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	eligibilityservice "electra/contexts/election-core/eligibility-service"
	voteledger "electra/contexts/election-core/vote-ledger"
	credentialservice "electra/contexts/identity-access/credential-service"
	possessionproofservice "electra/contexts/identity-access/possession-proof-service"

	"github.com/golang-jwt/jwt/v4"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "electra/internal/platform/httpserver/docs"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	addr        string
	jwtSecret   []byte
	eligibility eligibilityservice.Module
	ledger      voteledger.Module
	proofs      possessionproofservice.Module
	credentials credentialservice.Module
}

func New(
	eligibility eligibilityservice.Module,
	ledger voteledger.Module,
	proofs possessionproofservice.Module,
	credentials credentialservice.Module,
	jwtSecret []byte,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		addr:        addr,
		jwtSecret:   jwtSecret,
		eligibility: eligibility,
		ledger:      ledger,
		proofs:      proofs,
		credentials: credentials,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/auth/v1/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/v1/login", s.handleLogin)

	s.mux.HandleFunc("POST /api/eligibility/v1/voters", s.handleRegisterVoter)
	s.mux.HandleFunc("GET /api/eligibility/v1/voters/{voter_id}", s.handleGetProfile)
	s.mux.HandleFunc("GET /api/eligibility/v1/voters/{voter_id}/eligibility", s.handleCheckEligibility)
	s.mux.HandleFunc("POST /api/eligibility/v1/voters/{voter_id}/verification", s.handleSetVerification)
	s.mux.HandleFunc("GET /api/eligibility/v1/national-ids/{national_id}/duplicate", s.handleDuplicateNationalID)
	s.mux.HandleFunc("POST /api/eligibility/v1/voters/{voter_id}/id-documents", s.handleSubmitIDDocument)
	s.mux.HandleFunc("POST /api/eligibility/v1/id-documents/{submission_id}/review", s.handleReviewIDDocument)
	s.mux.HandleFunc("GET /api/eligibility/v1/id-documents", s.handleListSubmissions)

	s.mux.HandleFunc("POST /api/ledger/v1/ballots", s.handleCastVote)
	s.mux.HandleFunc("GET /api/ledger/v1/ballots/{voter_id}", s.handleGetBallot)
	s.mux.HandleFunc("POST /api/ledger/v1/candidates", s.handleAddCandidate)
	s.mux.HandleFunc("GET /api/ledger/v1/candidates", s.handleListCandidates)
	s.mux.HandleFunc("GET /api/ledger/v1/candidates/{candidate_id}", s.handleGetCandidate)
	s.mux.HandleFunc("POST /api/ledger/v1/candidates/{candidate_id}/recount", s.handleRecountCandidate)
	s.mux.HandleFunc("GET /api/ledger/v1/results", s.handleResults)

	s.mux.HandleFunc("POST /api/proofs/v1/challenges", s.handleIssueChallenge)
	s.mux.HandleFunc("POST /api/proofs/v1/challenges/{challenge_id}/confirm", s.handleConfirmChallenge)
}

// resolveVoterID prefers the bearer token subject, then the X-User-Id
// header the internal tooling sends. Empty means unauthenticated.
func (s *Server) resolveVoterID(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		raw := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.jwtSecret, nil
		})
		if err == nil && token.Valid {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if voterID, ok := claims["voter_id"].(string); ok && strings.TrimSpace(voterID) != "" {
					return strings.TrimSpace(voterID)
				}
			}
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}

func resolveAdminID(r *http.Request) string {
	adminID := strings.TrimSpace(r.Header.Get("X-Admin-Id"))
	if adminID == "" {
		adminID = strings.TrimSpace(r.Header.Get("X-User-Id"))
	}
	return adminID
}

func (s *Server) decodeJSON(
	w http.ResponseWriter,
	r *http.Request,
	dst any,
	writeErr func(http.ResponseWriter, int, string, string),
) bool {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}
