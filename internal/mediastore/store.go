// Package mediastore provides storage backends for product images.
package mediastore

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a requested object does not exist.
var ErrNotFound = errors.New("mediastore: object not found")

// ErrInvalidKey is returned for keys that could escape the store.
var ErrInvalidKey = errors.New("mediastore: invalid key")

// Store defines the interface for media storage backends.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Config holds configuration for creating a Store.
type Config struct {
	// Type selects the backend: "local" (default) or "s3".
	Type string `mapstructure:"type"`
	// Path is the base directory for the local store.
	Path string `mapstructure:"path"`
	// BaseURL prefixes image keys when building public image URLs.
	BaseURL string `mapstructure:"base_url"`

	S3Bucket   string `mapstructure:"s3_bucket"`
	S3Prefix   string `mapstructure:"s3_prefix"`
	S3Endpoint string `mapstructure:"s3_endpoint"`
	S3Region   string `mapstructure:"s3_region"`
}

// New creates a Store based on the provided configuration. If Type is empty
// or unsupported, it defaults to local storage and logs a warning.
func New(cfg Config, logger zerolog.Logger) (Store, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStore(cfg.Path)
	case "s3":
		return NewS3StoreFromConfig(cfg)
	default:
		logger.Warn().
			Str("type", cfg.Type).
			Msg("unsupported or empty media store type, defaulting to local")
		return NewLocalStore(cfg.Path)
	}
}
