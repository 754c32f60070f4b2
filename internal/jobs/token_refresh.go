package jobs

import (
	"context"
	"log/slog"

	"atelier-backend/internal/infra/calendar"
)

// TokenRefreshSpec keeps the OAuth access token warm well inside its
// one-hour lifetime.
const TokenRefreshSpec = "@every 30m"

type TokenRefresh struct {
	provider *calendar.Provider
	log      *slog.Logger
}

func NewTokenRefresh(provider *calendar.Provider, log *slog.Logger) *TokenRefresh {
	return &TokenRefresh{provider: provider, log: log}
}

func (j *TokenRefresh) Run(ctx context.Context) {
	if err := j.provider.Refresh(ctx); err != nil {
		j.log.Error("oauth token refresh failed", "error", err)
	}
}
