package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	// ContactRequestsPerHour caps contact-form submissions per client IP.
	ContactRequestsPerHour int `mapstructure:"contact_requests_per_hour"`
	// LoginAttemptsLimit is the max failed admin logins before lockout.
	LoginAttemptsLimit int `mapstructure:"login_attempts_limit"`
	// LoginLockoutDuration is how long a lockout lasts.
	LoginLockoutDuration time.Duration `mapstructure:"login_lockout_duration"`
}

// RateLimiter provides Redis-backed counters for the contact form and the
// admin login. A nil Redis client disables all limiting.
type RateLimiter struct {
	client *redis.Client
	config RateLimitConfig
}

// NewRateLimiter creates a RateLimiter with the given Redis client and
// configuration. client may be nil.
func NewRateLimiter(client *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{client: client, config: config}
}

// CheckContactRateLimit reports whether the client IP may submit another
// contact request this hour.
func (rl *RateLimiter) CheckContactRateLimit(ctx context.Context, clientIP string) error {
	if rl.client == nil || rl.config.ContactRequestsPerHour <= 0 {
		return nil
	}

	key := contactKey(clientIP)
	count, err := rl.client.Get(ctx, key).Int64()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("check contact rate limit: %w", err)
	}

	if int(count) >= rl.config.ContactRequestsPerHour {
		return fmt.Errorf("contact request limit exceeded (%d/%d)", count, rl.config.ContactRequestsPerHour)
	}

	return nil
}

// RecordContactRequest increments the hourly counter for the client IP.
func (rl *RateLimiter) RecordContactRequest(ctx context.Context, clientIP string) error {
	if rl.client == nil || rl.config.ContactRequestsPerHour <= 0 {
		return nil
	}

	pipe := rl.client.Pipeline()
	pipe.Incr(ctx, contactKey(clientIP))
	pipe.Expire(ctx, contactKey(clientIP), time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record contact request: %w", err)
	}
	return nil
}

// CheckLoginRateLimit reports whether the operator account is locked out.
func (rl *RateLimiter) CheckLoginRateLimit(ctx context.Context, username string) error {
	if rl.client == nil || rl.config.LoginAttemptsLimit <= 0 {
		return nil
	}

	key := loginKey(username)
	count, err := rl.client.Get(ctx, key).Int64()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("check login rate limit: %w", err)
	}

	if int(count) >= rl.config.LoginAttemptsLimit {
		return fmt.Errorf("account temporarily locked due to too many failed login attempts")
	}

	return nil
}

// RecordFailedLogin increments the failed login counter for the operator.
func (rl *RateLimiter) RecordFailedLogin(ctx context.Context, username string) error {
	if rl.client == nil || rl.config.LoginAttemptsLimit <= 0 {
		return nil
	}

	pipe := rl.client.Pipeline()
	pipe.Incr(ctx, loginKey(username))
	pipe.Expire(ctx, loginKey(username), rl.config.LoginLockoutDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record failed login: %w", err)
	}
	return nil
}

// ClearFailedLogins resets the failed login counter for the operator.
func (rl *RateLimiter) ClearFailedLogins(ctx context.Context, username string) error {
	if rl.client == nil {
		return nil
	}
	return rl.client.Del(ctx, loginKey(username)).Err()
}

func contactKey(clientIP string) string {
	return fmt.Sprintf("ratelimit:contact:%s:%s", clientIP, time.Now().UTC().Format("2006-01-02T15"))
}

func loginKey(username string) string {
	return "ratelimit:login:" + username
}
