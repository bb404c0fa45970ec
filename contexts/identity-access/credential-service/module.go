package credentialservice

import (
	"log/slog"
	"time"

	"electra/contexts/identity-access/credential-service/adapters/auth"
	httpadapter "electra/contexts/identity-access/credential-service/adapters/http"
	"electra/contexts/identity-access/credential-service/adapters/memory"
	"electra/contexts/identity-access/credential-service/application"
	"electra/contexts/identity-access/credential-service/domain/entities"
	"electra/contexts/identity-access/credential-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Credentials ports.CredentialRepository
	Hasher      ports.PasswordHasher
	Tokens      ports.TokenIssuer
	Profiles    ports.ProfileCreator
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Credentials: deps.Credentials,
		Hasher:      deps.Hasher,
		Tokens:      deps.Tokens,
		Profiles:    deps.Profiles,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Credentials: service,
			Logger:      deps.Logger,
		},
		Service: service,
	}
}

func NewInMemoryModule(
	seed []entities.Credential,
	profiles ports.ProfileCreator,
	jwtSecret []byte,
	tokenTTL time.Duration,
	logger *slog.Logger,
) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Credentials: store,
		Hasher:      auth.BcryptHasher{},
		Tokens:      auth.JWTIssuer{Secret: jwtSecret, TTL: tokenTTL},
		Profiles:    profiles,
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
