package voteledger

import (
	"log/slog"

	httpadapter "electra/contexts/election-core/vote-ledger/adapters/http"
	"electra/contexts/election-core/vote-ledger/adapters/memory"
	"electra/contexts/election-core/vote-ledger/application/commands"
	"electra/contexts/election-core/vote-ledger/application/queries"
	"electra/contexts/election-core/vote-ledger/application/workers"
	"electra/contexts/election-core/vote-ledger/domain/entities"
	"electra/contexts/election-core/vote-ledger/ports"
)

type Module struct {
	Handler     httpadapter.Handler
	Ledger      commands.LedgerUseCase
	Results     queries.ResultsUseCase
	OutboxRelay workers.OutboxRelay
	Store       *memory.Store
}

type Dependencies struct {
	Ballots     ports.BallotRepository
	Candidates  ports.CandidateRepository
	Eligibility ports.EligibilityChecker
	OutboxRepo  ports.OutboxRepository
	Publisher   ports.EventPublisher
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	ledgerUseCase := commands.LedgerUseCase{
		Ballots:     deps.Ballots,
		Candidates:  deps.Candidates,
		Eligibility: deps.Eligibility,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	resultsUseCase := queries.ResultsUseCase{
		Ballots:    deps.Ballots,
		Candidates: deps.Candidates,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Ledger:  ledgerUseCase,
			Results: resultsUseCase,
			Logger:  deps.Logger,
		},
		Ledger:  ledgerUseCase,
		Results: resultsUseCase,
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.OutboxRepo,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(
	seed []entities.Candidate,
	eligibility ports.EligibilityChecker,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Ballots:     store,
		Candidates:  store,
		Eligibility: eligibility,
		OutboxRepo:  store,
		Publisher:   publisher,
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
