// Package calendar mirrors entity schedules onto Google Calendar.
package calendar

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"

	"atelier-backend/internal/pkg/config"
	"atelier-backend/internal/pkg/errs"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var ErrNotReady = errs.New("calendar client is not initialized")

// Provider owns the OAuth client lifecycle: it builds the authorized
// calendar service at startup and keeps the refresh token persisted so a
// restart never needs a new consent flow. Refresh runs on a schedule; see
// the jobs package.
type Provider struct {
	cfg config.CalendarConfig
	log *slog.Logger

	mu     sync.RWMutex
	svc    *gcal.Service
	source oauth2.TokenSource
	last   *oauth2.Token
}

func NewProvider(cfg config.CalendarConfig, log *slog.Logger) *Provider {
	return &Provider{cfg: cfg, log: log}
}

// Initialize builds the authorized service from the stored client secret
// and token files. The token file must already contain a valid refresh
// token obtained out of band.
func (p *Provider) Initialize(ctx context.Context) error {
	secret, err := os.ReadFile(p.cfg.CredentialsFile)
	if err != nil {
		return errs.Wrap(err, "failed to read oauth client secret")
	}
	oauthCfg, err := google.ConfigFromJSON(secret, gcal.CalendarEventsScope)
	if err != nil {
		return errs.Wrap(err, "failed to parse oauth client secret")
	}

	tok, err := p.readToken()
	if err != nil {
		return err
	}

	source := oauthCfg.TokenSource(ctx, tok)
	svc, err := gcal.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return errs.Wrap(err, "failed to build calendar service")
	}

	p.mu.Lock()
	p.svc = svc
	p.source = source
	p.last = tok
	p.mu.Unlock()

	p.log.Info("calendar client initialized")
	return nil
}

// Ready reports whether the calendar service can be used.
func (p *Provider) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.svc != nil
}

// Service returns the authorized calendar service, ErrNotReady before
// Initialize succeeded.
func (p *Provider) Service() (*gcal.Service, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.svc == nil {
		return nil, ErrNotReady
	}
	return p.svc, nil
}

// Refresh forces a token fetch and persists it when it rotated. The token
// source refreshes lazily on its own; this keeps the stored token fresh
// even through idle periods so restarts keep working.
func (p *Provider) Refresh(ctx context.Context) error {
	p.mu.RLock()
	source := p.source
	p.mu.RUnlock()
	if source == nil {
		return ErrNotReady
	}

	tok, err := source.Token()
	if err != nil {
		return errs.Wrap(err, "failed to refresh oauth token")
	}

	p.mu.Lock()
	rotated := p.last == nil || tok.AccessToken != p.last.AccessToken
	p.last = tok
	p.mu.Unlock()

	if !rotated {
		return nil
	}
	if err := p.writeToken(tok); err != nil {
		return err
	}
	p.log.Info("oauth token refreshed", "expiry", tok.Expiry)
	return nil
}

func (p *Provider) readToken() (*oauth2.Token, error) {
	raw, err := os.ReadFile(p.cfg.TokenFile)
	if err != nil {
		return nil, errs.Wrap(err, "failed to read oauth token file")
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, errs.Wrap(err, "failed to parse oauth token file")
	}
	return &tok, nil
}

func (p *Provider) writeToken(tok *oauth2.Token) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return errs.Wrap(err, "failed to encode oauth token")
	}
	if err := os.WriteFile(p.cfg.TokenFile, raw, 0o600); err != nil {
		return errs.Wrap(err, "failed to persist oauth token")
	}
	return nil
}
