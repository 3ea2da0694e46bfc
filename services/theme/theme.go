// Package theme resolves and toggles the light/dark preference of a client.
package theme

import (
	"context"
	"net/http"
	"strings"

	preferenceRepo "regwizard/database/repository/preference"
	"regwizard/models"
	"regwizard/utils"

	"go.uber.org/zap"
)

// HintHeader is the client hint carrying the OS colour scheme.
const HintHeader = "Sec-CH-Prefers-Color-Scheme"

// Sources reported alongside the theme.
const (
	SourceStored  = "stored"
	SourceSystem  = "system"
	SourceDefault = "default"
)

type Service struct {
	repo   preferenceRepo.PreferenceRepository
	logger *zap.Logger
}

func NewService(repo preferenceRepo.PreferenceRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// HintFromHeader extracts an OS dark-mode hint, or "" when absent.
func HintFromHeader(h http.Header) string {
	v := strings.Trim(strings.ToLower(strings.TrimSpace(h.Get(HintHeader))), `"`)
	if v == models.ThemeDark || v == models.ThemeLight {
		return v
	}
	return ""
}

func valid(theme string) bool {
	return theme == models.ThemeLight || theme == models.ThemeDark
}

func key(clientID string) string {
	return utils.ThemeKeyPrefix + clientID
}

// Resolve returns the stored theme, else the OS hint, else light.
func (s *Service) Resolve(ctx context.Context, clientID, hint string) models.ThemeResponse {
	if clientID != "" {
		stored, ok, err := s.repo.Get(ctx, key(clientID))
		if err != nil {
			s.logger.Warn("Failed to read theme preference", zap.String("clientID", clientID), zap.Error(err))
		} else if ok && valid(stored) {
			return models.ThemeResponse{Theme: stored, Source: SourceStored}
		}
	}
	if valid(hint) {
		return models.ThemeResponse{Theme: hint, Source: SourceSystem}
	}
	return models.ThemeResponse{Theme: models.ThemeLight, Source: SourceDefault}
}

// Toggle flips the effective theme and stores the result. A failed write still
// returns the flipped theme.
func (s *Service) Toggle(ctx context.Context, clientID, hint string) models.ThemeResponse {
	next := models.ThemeDark
	if s.Resolve(ctx, clientID, hint).Theme == models.ThemeDark {
		next = models.ThemeLight
	}
	if err := s.repo.Set(ctx, key(clientID), next); err != nil {
		s.logger.Warn("Failed to store theme preference", zap.String("clientID", clientID), zap.Error(err))
	}
	return models.ThemeResponse{Theme: next, Source: SourceStored}
}
