package eligibilityservice

import (
	"log/slog"

	httpadapter "electra/contexts/election-core/eligibility-service/adapters/http"
	"electra/contexts/election-core/eligibility-service/adapters/memory"
	"electra/contexts/election-core/eligibility-service/application/commands"
	"electra/contexts/election-core/eligibility-service/application/queries"
	"electra/contexts/election-core/eligibility-service/application/workers"
	"electra/contexts/election-core/eligibility-service/domain/entities"
	"electra/contexts/election-core/eligibility-service/ports"
)

type Module struct {
	Handler     httpadapter.Handler
	Profiles    commands.ProfileUseCase
	Eligibility queries.EligibilityUseCase
	OutboxRelay workers.OutboxRelay
	Store       *memory.Store
}

type Dependencies struct {
	Voters      ports.VoterRepository
	Submissions ports.SubmissionRepository
	Outbox      ports.OutboxWriter
	OutboxRepo  ports.OutboxRepository
	Publisher   ports.EventPublisher
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	profileUseCase := commands.ProfileUseCase{
		Voters:      deps.Voters,
		Submissions: deps.Submissions,
		Outbox:      deps.Outbox,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	eligibilityUseCase := queries.EligibilityUseCase{
		Voters:      deps.Voters,
		Submissions: deps.Submissions,
		Clock:       deps.Clock,
	}
	return Module{
		Handler: httpadapter.Handler{
			Profiles:    profileUseCase,
			Eligibility: eligibilityUseCase,
			Logger:      deps.Logger,
		},
		Profiles:    profileUseCase,
		Eligibility: eligibilityUseCase,
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.OutboxRepo,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.VoterProfile, publisher ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Voters:      store,
		Submissions: store,
		Outbox:      store,
		OutboxRepo:  store,
		Publisher:   publisher,
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
