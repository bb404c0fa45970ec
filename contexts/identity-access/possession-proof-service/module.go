package possessionproofservice

import (
	"log/slog"
	"time"

	httpadapter "electra/contexts/identity-access/possession-proof-service/adapters/http"
	"electra/contexts/identity-access/possession-proof-service/adapters/memory"
	"electra/contexts/identity-access/possession-proof-service/adapters/notify"
	"electra/contexts/identity-access/possession-proof-service/application"
	"electra/contexts/identity-access/possession-proof-service/application/workers"
	"electra/contexts/identity-access/possession-proof-service/domain/entities"
	"electra/contexts/identity-access/possession-proof-service/ports"
)

type Module struct {
	Handler     httpadapter.Handler
	Service     application.Service
	OutboxRelay workers.OutboxRelay
	Expirer     workers.ChallengeExpirer
	Store       *memory.Store
}

type Dependencies struct {
	Challenges  ports.ChallengeRepository
	Sender      ports.CodeSender
	Codes       ports.CodeGenerator
	Outbox      ports.OutboxWriter
	OutboxRepo  ports.OutboxRepository
	Publisher   ports.EventPublisher
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	SendTimeout time.Duration
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Challenges:  deps.Challenges,
		Sender:      deps.Sender,
		Codes:       deps.Codes,
		Outbox:      deps.Outbox,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		SendTimeout: deps.SendTimeout,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Proofs: service,
			Logger: deps.Logger,
		},
		Service: service,
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.OutboxRepo,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		Expirer: workers.ChallengeExpirer{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(
	seed []entities.ProofChallenge,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Challenges: store,
		Sender:     notify.LogSender{Logger: logger},
		Codes:      store,
		Outbox:     store,
		OutboxRepo: store,
		Publisher:  publisher,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
