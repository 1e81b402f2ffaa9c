package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/identity/internal/common"
	"github.com/dmitrijs2005/identity/internal/server/auth"
	"github.com/dmitrijs2005/identity/internal/server/models"
)

// Impersonate issues a token for the target user on behalf of the root
// caller. No password is checked; trust is delegated entirely to the
// caller's verified root token.
//
// The privilege gate runs before any target field is inspected so a
// non-root caller learns nothing about whether the target exists. Privilege
// and target failures collapse to common.ErrImpersonationFailed after the
// uniform delay. targetUserID may be empty, in which case the target
// account's owner is impersonated.
func (s *Service) Impersonate(ctx context.Context, caller *auth.Claims, targetAccountID, targetUserID string) (string, error) {
	if caller == nil || caller.AccountID != models.SystemAccountID {
		s.log.Debug(ctx, "impersonation rejected", "reason", "caller not root")
		s.failDelay(ctx)
		return "", common.ErrImpersonationFailed
	}

	account, err := s.repo.AccountByID(ctx, targetAccountID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return "", fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	userID := targetUserID
	if userID == "" && account != nil {
		userID = account.OwnerID
	}

	var user *models.User
	if userID != "" {
		user, err = s.repo.UserByID(ctx, userID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return "", fmt.Errorf("%w: %v", common.ErrInternal, err)
		}
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
	}
	if reason != "" {
		s.log.Debug(ctx, "impersonation failed", "accountId", targetAccountID, "userId", targetUserID, "reason", reason)
		s.failDelay(ctx)
		return "", common.ErrImpersonationFailed
	}

	token, err := s.tokens.Sign(&auth.Claims{
		AccountID:      account.AccountID,
		UserID:         user.UserID,
		FriendlyName:   user.FriendlyName,
		ImpersonatedBy: caller.UserID,
	})
	if err != nil {
		s.log.Error(ctx, "token signing failed", "error", err)
		return "", fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	s.log.Info(ctx, "impersonation token issued", "accountId", account.AccountID, "userId", user.UserID, "impersonatedBy", caller.UserID)
	return token, nil
}
