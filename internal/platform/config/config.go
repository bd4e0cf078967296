package config

import (
	"os"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	Environment   string
	DatabaseURL   string
	AdminToken    string
	JWTSigningKey string
	ShutdownGrace time.Duration
}

var ShutdownGrace = 10 * time.Second

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("SIGIL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	environment := os.Getenv("SIGIL_ENV")
	if environment == "" {
		environment = "development"
	}

	if graceStr := os.Getenv("SHUTDOWN_GRACE"); graceStr != "" {
		if duration, err := time.ParseDuration(graceStr); err == nil {
			ShutdownGrace = duration
		}
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          addr,
		Environment:   environment,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AdminToken:    os.Getenv("ADMIN_TOKEN"),
		JWTSigningKey: jwtSigningKey,
		ShutdownGrace: ShutdownGrace,
	}
}
