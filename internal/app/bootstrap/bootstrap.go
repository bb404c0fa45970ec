package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	eligibilityservice "electra/contexts/election-core/eligibility-service"
	eligibilitypostgres "electra/contexts/election-core/eligibility-service/adapters/postgres"
	eligibilityworkers "electra/contexts/election-core/eligibility-service/application/workers"
	eligibilityerrors "electra/contexts/election-core/eligibility-service/domain/errors"
	voteledger "electra/contexts/election-core/vote-ledger"
	ledgerpostgres "electra/contexts/election-core/vote-ledger/adapters/postgres"
	ledgerworkers "electra/contexts/election-core/vote-ledger/application/workers"
	ledgererrors "electra/contexts/election-core/vote-ledger/domain/errors"
	credentialservice "electra/contexts/identity-access/credential-service"
	credentialauth "electra/contexts/identity-access/credential-service/adapters/auth"
	credentialpostgres "electra/contexts/identity-access/credential-service/adapters/postgres"
	possessionproofservice "electra/contexts/identity-access/possession-proof-service"
	"electra/contexts/identity-access/possession-proof-service/adapters/notify"
	proofpostgres "electra/contexts/identity-access/possession-proof-service/adapters/postgres"
	proofworkers "electra/contexts/identity-access/possession-proof-service/application/workers"
	prooferrors "electra/contexts/identity-access/possession-proof-service/domain/errors"
	"electra/internal/platform/config"
	"electra/internal/platform/db"
	"electra/internal/platform/httpserver"
	"electra/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres         *db.Postgres
	eligibilityRelay eligibilityworkers.OutboxRelay
	ledgerRelay      ledgerworkers.OutboxRelay
	proofRelay       proofworkers.OutboxRelay
	ballotConsumer   eligibilityworkers.BallotCastConsumer
	proofConsumer    eligibilityworkers.ProofConfirmedConsumer
	expirer          proofworkers.ChallengeExpirer
	cfg              config.Config
	logger           *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	eligibilityRepo := eligibilitypostgres.NewRepository(pg.DB, logger)
	eligibilityModule := eligibilityservice.NewModule(eligibilityservice.Dependencies{
		Voters:      eligibilityRepo,
		Submissions: eligibilityRepo,
		Outbox:      eligibilityRepo,
		OutboxRepo:  eligibilityRepo,
		Publisher:   eligibilityPublisher{bus: kafka},
		Clock:       eligibilitypostgres.SystemClock{},
		IDGen:       eligibilitypostgres.UUIDGenerator{},
		Logger:      logger,
	})

	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	ledgerModule := voteledger.NewModule(voteledger.Dependencies{
		Ballots:     ledgerRepo,
		Candidates:  ledgerRepo,
		Eligibility: ledgerEligibility{eligibility: eligibilityModule.Eligibility},
		OutboxRepo:  ledgerRepo,
		Publisher:   ledgerPublisher{bus: kafka},
		Clock:       ledgerpostgres.SystemClock{},
		IDGen:       ledgerpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	proofRepo := proofpostgres.NewRepository(pg.DB, logger)
	proofModule := possessionproofservice.NewModule(possessionproofservice.Dependencies{
		Challenges:  proofRepo,
		Sender:      notify.LogSender{Logger: logger},
		Codes:       proofpostgres.RandomCodeGenerator{},
		Outbox:      proofRepo,
		OutboxRepo:  proofRepo,
		Publisher:   proofPublisher{bus: kafka},
		Clock:       proofpostgres.SystemClock{},
		IDGen:       proofpostgres.UUIDGenerator{},
		SendTimeout: cfg.ProofSendTimeout,
		Logger:      logger,
	})

	credentialRepo := credentialpostgres.NewRepository(pg.DB, logger)
	credentialModule := credentialservice.NewModule(credentialservice.Dependencies{
		Credentials: credentialRepo,
		Hasher:      credentialauth.BcryptHasher{},
		Tokens:      credentialauth.JWTIssuer{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL},
		Profiles:    credentialProfiles{profiles: eligibilityModule.Profiles},
		Clock:       credentialpostgres.SystemClock{},
		IDGen:       credentialpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	server := httpserver.New(
		eligibilityModule,
		ledgerModule,
		proofModule,
		credentialModule,
		[]byte(cfg.JWTSecret),
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	eligibilityRepo := eligibilitypostgres.NewRepository(pg.DB, logger)
	eligibilityModule := eligibilityservice.NewModule(eligibilityservice.Dependencies{
		Voters:      eligibilityRepo,
		Submissions: eligibilityRepo,
		Outbox:      eligibilityRepo,
		OutboxRepo:  eligibilityRepo,
		Publisher:   eligibilityPublisher{bus: kafka},
		Clock:       eligibilitypostgres.SystemClock{},
		IDGen:       eligibilitypostgres.UUIDGenerator{},
		Logger:      logger,
	})

	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	ledgerModule := voteledger.NewModule(voteledger.Dependencies{
		Ballots:     ledgerRepo,
		Candidates:  ledgerRepo,
		Eligibility: ledgerEligibility{eligibility: eligibilityModule.Eligibility},
		OutboxRepo:  ledgerRepo,
		Publisher:   ledgerPublisher{bus: kafka},
		Clock:       ledgerpostgres.SystemClock{},
		IDGen:       ledgerpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	proofRepo := proofpostgres.NewRepository(pg.DB, logger)
	proofModule := possessionproofservice.NewModule(possessionproofservice.Dependencies{
		Challenges:  proofRepo,
		Sender:      notify.LogSender{Logger: logger},
		Codes:       proofpostgres.RandomCodeGenerator{},
		Outbox:      proofRepo,
		OutboxRepo:  proofRepo,
		Publisher:   proofPublisher{bus: kafka},
		Clock:       proofpostgres.SystemClock{},
		IDGen:       proofpostgres.UUIDGenerator{},
		SendTimeout: cfg.ProofSendTimeout,
		Logger:      logger,
	})

	return &WorkerApp{
		postgres:         pg,
		eligibilityRelay: eligibilityModule.OutboxRelay,
		ledgerRelay:      ledgerModule.OutboxRelay,
		proofRelay:       proofModule.OutboxRelay,
		ballotConsumer: eligibilityworkers.BallotCastConsumer{
			Subscriber: eligibilitySubscriber{bus: kafka},
			Dedup:      eligibilityRepo,
			Profiles:   eligibilityModule.Profiles,
			Clock:      eligibilitypostgres.SystemClock{},
			DedupTTL:   7 * 24 * time.Hour,
			Logger:     logger,
		},
		proofConsumer: eligibilityworkers.ProofConfirmedConsumer{
			Subscriber: eligibilitySubscriber{bus: kafka},
			Dedup:      eligibilityRepo,
			Profiles:   eligibilityModule.Profiles,
			Clock:      eligibilitypostgres.SystemClock{},
			DedupTTL:   7 * 24 * time.Hour,
			Logger:     logger,
		},
		expirer: proofModule.Expirer,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.cfg.EnableBallotCastConsumer {
		if err := w.ballotConsumer.Start(ctx); err != nil {
			return err
		}
	}
	if w.cfg.EnableProofConsumer {
		if err := w.proofConsumer.Start(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(w.cfg.WorkerPollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.cfg.WorkerPollInterval.String(),
	)

	for {
		if w.cfg.EnableChallengeExpirer {
			if err := w.runStep(ctx, "challenge_expirer", w.expirer.RunOnce); err != nil {
				return err
			}
		}
		if w.cfg.EnableOutboxRelays {
			if err := w.runStep(ctx, "eligibility_relay", w.eligibilityRelay.RunOnce); err != nil {
				return err
			}
			if err := w.runStep(ctx, "proof_relay", w.proofRelay.RunOnce); err != nil {
				return err
			}
			if err := w.runStep(ctx, "ledger_relay", w.ledgerRelay.RunOnce); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// runStep bounds one worker iteration with the configured op timeout.
// A timed-out step is retried on the next tick instead of killing the
// worker; any other failure still stops the loop.
func (w *WorkerApp) runStep(ctx context.Context, step string, fn func(context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, w.cfg.WorkerOpTimeout)
	defer cancel()
	err := fn(opCtx)
	if err == nil {
		return nil
	}
	if retryableStepError(err) {
		w.logger.Warn("worker step timed out",
			"event", "bootstrap_worker_step_timeout",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"step", step,
			"error", err.Error(),
		)
		return nil
	}
	return err
}

func retryableStepError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ledgererrors.ErrDependencyTimeout) ||
		errors.Is(err, eligibilityerrors.ErrDependencyTimeout) ||
		errors.Is(err, prooferrors.ErrDependencyTimeout)
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
