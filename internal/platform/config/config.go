package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string
	JWTSecret    string
	TokenTTL     time.Duration

	EnableBallotCastConsumer bool
	EnableProofConsumer      bool
	EnableChallengeExpirer   bool
	EnableOutboxRelays       bool
	ProofSendTimeout         time.Duration
	WorkerPollInterval       time.Duration
	WorkerOpTimeout          time.Duration
}

func Load() (Config, error) {
	// Optional .env for local runs; missing file is fine.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "electra"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "electra-dev-secret"
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,
		JWTSecret:    secret,
		TokenTTL:     envDuration("TOKEN_TTL", time.Hour),

		EnableBallotCastConsumer: envBool("ENABLE_BALLOT_CAST_CONSUMER", true),
		EnableProofConsumer:      envBool("ENABLE_PROOF_CONSUMER", true),
		EnableChallengeExpirer:   envBool("ENABLE_CHALLENGE_EXPIRER", true),
		EnableOutboxRelays:       envBool("ENABLE_OUTBOX_RELAYS", true),
		ProofSendTimeout:         envDuration("PROOF_SEND_TIMEOUT", 5*time.Second),
		WorkerPollInterval:       envDuration("WORKER_POLL_INTERVAL", 2*time.Second),
		WorkerOpTimeout:          envDuration("WORKER_OP_TIMEOUT", 10*time.Second),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
