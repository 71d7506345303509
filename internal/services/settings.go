package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/imgdrop/internal/common"
	"github.com/dmitrijs2005/imgdrop/internal/repositories/repomanager"
)

// KeyWebhookURL is the settings key holding the webhook endpoint.
const KeyWebhookURL = "webhook_url"

type SettingsService struct {
	db      *sql.DB
	manager repomanager.SettingsManager
}

func NewSettingsService(db *sql.DB, m repomanager.SettingsManager) *SettingsService {
	return &SettingsService{db: db, manager: m}
}

// WebhookURL returns the saved endpoint, or "" when none is saved.
func (s *SettingsService) WebhookURL(ctx context.Context) (string, error) {
	v, _, err := s.manager.Settings(s.db).Get(ctx, KeyWebhookURL)
	if err != nil {
		return "", err
	}
	return v, nil
}

// SetWebhookURL saves the endpoint. An empty value forgets it.
func (s *SettingsService) SetWebhookURL(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	repo := s.manager.Settings(s.db)

	if raw == "" {
		return "", repo.Delete(ctx, KeyWebhookURL)
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidURL, raw)
	}
	if err := repo.Set(ctx, KeyWebhookURL, raw); err != nil {
		return "", err
	}
	return raw, nil
}
