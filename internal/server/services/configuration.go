package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/identity/internal/common"
	"github.com/dmitrijs2005/identity/internal/server/auth"
	"github.com/dmitrijs2005/identity/internal/server/models"
)

// PublicSignature returns the public verification material as a string. The
// underlying error is surfaced so the caller can decide how much to reveal.
func (s *Service) PublicSignature(ctx context.Context) (string, error) {
	material, err := s.keys.PublicSignature()
	if err != nil {
		s.log.Warn(ctx, "public signature unavailable", "error", err)
		return "", err
	}
	return string(material), nil
}

// GetConfiguration returns the internal or external configuration block
// depending on the caller's network origin. common.ErrNotFound is returned
// when no configuration document has been stored yet.
func (s *Service) GetConfiguration(ctx context.Context, isLocal bool) (*models.ConfigBlock, error) {
	cfg, err := s.repo.Configuration(ctx)
	if err != nil {
		return nil, err
	}
	if isLocal {
		return &cfg.Internal, nil
	}
	return &cfg.External, nil
}

// UpdateConfiguration replaces the shared configuration document. Only the
// root account may do this; a non-root caller gets
// common.ErrInsufficientPrivilege with no uniform delay, since the HTTP
// layer hides the endpoint entirely from such callers.
func (s *Service) UpdateConfiguration(ctx context.Context, caller *auth.Claims, cfg *models.Configuration) error {
	if caller == nil || caller.AccountID != models.SystemAccountID {
		s.log.Debug(ctx, "configuration update rejected", "reason", "caller not root")
		return common.ErrInsufficientPrivilege
	}
	if err := s.repo.UpdateConfiguration(ctx, cfg); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
	s.log.Info(ctx, "configuration updated", "userId", caller.UserID)
	return nil
}
