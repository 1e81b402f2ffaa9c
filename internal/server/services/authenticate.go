package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/identity/internal/common"
	"github.com/dmitrijs2005/identity/internal/server/auth"
	"github.com/dmitrijs2005/identity/internal/server/models"
)

// Authenticate checks the presented credentials and returns a signed token.
//
// Account and user are looked up concurrently; neither result is acted on
// until both lookups finish. Every credential failure (account missing or
// inactive, user missing or inactive, password mismatch) collapses to
// common.ErrAuthenticationFailed after the uniform delay. A signing failure
// after all checks pass returns common.ErrInternal without delay.
func (s *Service) Authenticate(ctx context.Context, accountID, userID, password string) (string, error) {
	var account *models.Account
	var user *models.User

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.repo.AccountByID(gctx, accountID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		account = a
		return nil
	})
	g.Go(func() error {
		u, err := s.repo.UserByID(gctx, userID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		user = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	var reason string
	switch {
	case account == nil:
		reason = "account not found"
	case !account.IsActive:
		reason = "account inactive"
	case user == nil:
		reason = "user not found"
	case !user.IsActive:
		reason = "user inactive"
	case !s.hasher.Verify(password, user.Password):
		reason = "password mismatch"
	}
	if reason != "" {
		s.log.Debug(ctx, "authentication failed", "accountId", accountID, "userId", userID, "reason", reason)
		s.failDelay(ctx)
		return "", common.ErrAuthenticationFailed
	}

	token, err := s.tokens.Sign(&auth.Claims{
		AccountID:    account.AccountID,
		UserID:       user.UserID,
		FriendlyName: user.FriendlyName,
	})
	if err != nil {
		s.log.Error(ctx, "token signing failed", "error", err)
		return "", fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	// Best-effort activity tracking. The token is already issued; a persist
	// failure must not invalidate it.
	user.LastActivity = time.Now().UTC()
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		s.log.Warn(ctx, "could not update last activity", "userId", user.UserID, "error", err)
	}

	return token, nil
}
