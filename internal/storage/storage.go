package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"i-hire-go/internal/config"
)

// Storage aggregates all storage dependencies.
type Storage struct {
	// Object storage for CVs.
	MinIO *MinIO

	// Message broker for proctoring events.
	RabbitMQ *RabbitMQ

	// Relational database.
	Postgres *Postgres

	// Cache and lock store.
	Redis *Redis
}

// NewStorage initializes every configured storage component. Components that
// fail to initialize are logged and skipped; the call fails only when nothing
// could be brought up.
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	storage := &Storage{}
	var err error
	var initErrors []string

	var minioLogger *log.Logger
	if cfg.Logger.Level == "debug" {
		minioLogger = log.New(os.Stderr, "[MinIOStorage] ", log.LstdFlags|log.Lshortfile)
	} else {
		minioLogger = log.New(io.Discard, "", 0)
	}

	if cfg.MinIO.Endpoint != "" {
		storage.MinIO, err = NewMinIO(&cfg.MinIO, minioLogger)
		if err != nil {
			log.Printf("warning: MinIO init failed: %v", err)
			initErrors = append(initErrors, fmt.Sprintf("MinIO: %v", err))
		}
	}

	if cfg.RabbitMQ.URL != "" {
		storage.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			log.Printf("warning: RabbitMQ init failed: %v", err)
			initErrors = append(initErrors, fmt.Sprintf("RabbitMQ: %v", err))
		}
	}

	if cfg.Postgres.Host != "" {
		storage.Postgres, err = NewPostgres(&cfg.Postgres)
		if err != nil {
			log.Printf("warning: Postgres init failed: %v", err)
			initErrors = append(initErrors, fmt.Sprintf("Postgres: %v", err))
		}
	}

	if cfg.Redis.Address != "" {
		storage.Redis, err = NewRedisAdapter(&cfg.Redis)
		if err != nil {
			log.Printf("warning: Redis init failed: %v", err)
			initErrors = append(initErrors, fmt.Sprintf("Redis: %v", err))
		}
	} else {
		log.Printf("Redis not configured, skipping")
	}

	if storage.MinIO == nil && storage.RabbitMQ == nil && storage.Postgres == nil && storage.Redis == nil {
		return nil, fmt.Errorf("all storage components failed to initialize: %s", strings.Join(initErrors, "; "))
	}

	if len(initErrors) > 0 {
		log.Printf("warning: some storage components failed to initialize: %s", strings.Join(initErrors, "; "))
	}

	return storage, nil
}

// Close closes all open connections.
func (s *Storage) Close() {
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			log.Printf("closing RabbitMQ: %v", err)
		}
	}

	if s.Postgres != nil {
		if err := s.Postgres.Close(); err != nil {
			log.Printf("closing Postgres: %v", err)
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Printf("closing Redis: %v", err)
		}
	}
}
