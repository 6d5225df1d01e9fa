package jobs

import (
	"context"
	"time"
)

// ExpiredTokenCleaner is satisfied by service.TokenService
type ExpiredTokenCleaner interface {
	CleanupExpired(ctx context.Context) error
}

// TokenCleanup deletes expired and revoked refresh tokens
type TokenCleanup struct {
	*periodic
	tokens ExpiredTokenCleaner
}

// NewTokenCleanup creates the refresh token cleanup job
func NewTokenCleanup(tokens ExpiredTokenCleaner, interval time.Duration) *TokenCleanup {
	if interval == 0 {
		interval = 6 * time.Hour
	}
	c := &TokenCleanup{tokens: tokens}
	c.periodic = newPeriodic("token_cleanup", interval, c.RunOnce)
	return c
}

// RunOnce runs a single cleanup pass
func (c *TokenCleanup) RunOnce(ctx context.Context) error {
	return c.tokens.CleanupExpired(ctx)
}
