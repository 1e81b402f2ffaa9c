// Package services contains the identity server's business logic: credential
// authentication, registration, impersonation, shared configuration and the
// uniform-failure delay policy guarding every credential-checking path.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/identity/internal/logging"
	"github.com/dmitrijs2005/identity/internal/server/auth"
	"github.com/dmitrijs2005/identity/internal/server/config"
	"github.com/dmitrijs2005/identity/internal/server/mail"
	"github.com/dmitrijs2005/identity/internal/server/repositories"
)

// Service orchestrates the identity use-cases on top of the repository,
// token service and mailer.
type Service struct {
	repo   repositories.Repository
	keys   *auth.KeyChain
	tokens *auth.TokenService
	hasher *auth.Hasher
	mailer mail.Mailer
	cfg    *config.Config
	log    logging.Logger
}

// NewService wires the identity use-cases together.
func NewService(repo repositories.Repository, keys *auth.KeyChain, tokens *auth.TokenService,
	hasher *auth.Hasher, mailer mail.Mailer, cfg *config.Config, log logging.Logger) *Service {
	return &Service{
		repo:   repo,
		keys:   keys,
		tokens: tokens,
		hasher: hasher,
		mailer: mailer,
		cfg:    cfg,
		log:    log,
	}
}

// failDelay waits the configured uniform delay before a credential failure is
// allowed to surface. Every failure in the enumeration-sensitive set must
// pass through here so responses are not observably faster for one cause
// than another. The wait is fully awaited, never fire-and-forget.
func (s *Service) failDelay(ctx context.Context) {
	if s.cfg.FailureDelay <= 0 {
		return
	}
	t := time.NewTimer(s.cfg.FailureDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
