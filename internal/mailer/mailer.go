// Package mailer provides the outbound email transport for notification
// sends.
package mailer

import (
	"context"
	"errors"
	"fmt"
)

// Message is a single outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer sends email. Implementations are used sequentially by the worker;
// they do not need to be safe for concurrent use.
type Mailer interface {
	// Send delivers a message. Any error is treated as a processing failure
	// by the caller.
	Send(ctx context.Context, msg *Message) error
	// Name returns the transport's identifier (e.g. "smtp").
	Name() string
}

// Config holds email transport configuration.
type Config struct {
	// Transport selects the backend: "smtp" or "stdout" (default).
	Transport string `mapstructure:"transport"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	// DefaultFrom is the sender address for all notification emails.
	DefaultFrom string `mapstructure:"default_from"`
	// ServiceAddress is the fixed mailbox receiving new-contact alerts.
	ServiceAddress string `mapstructure:"service_address"`
}

// Validate reports whether the configuration names the fixed addresses the
// worker needs.
func (c Config) Validate() error {
	if c.DefaultFrom == "" {
		return errors.New("default_from address is required")
	}
	if c.ServiceAddress == "" {
		return errors.New("service_address is required")
	}
	if c.Transport == "smtp" && c.Host == "" {
		return errors.New("smtp host is required")
	}
	return nil
}

// New creates a Mailer based on the configured transport. An empty transport
// selects stdout, matching the development default of the site it serves.
func New(cfg Config) (Mailer, error) {
	switch cfg.Transport {
	case "smtp":
		return NewSMTP(cfg), nil
	case "stdout", "":
		return NewStdout(), nil
	default:
		return nil, fmt.Errorf("mailer: unknown transport %q", cfg.Transport)
	}
}
