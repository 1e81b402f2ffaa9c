package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/identity/internal/common"
	"github.com/dmitrijs2005/identity/internal/server/auth"
)

// UpdateUserParams carries the optional self-update fields. A password
// change requires both OldPassword and NewPassword.
type UpdateUserParams struct {
	Email        string
	FriendlyName string
	OldPassword  string
	NewPassword  string
}

func (p UpdateUserParams) passwordChange() bool {
	return p.OldPassword != "" && p.NewPassword != ""
}

func (p UpdateUserParams) empty() bool {
	return p.Email == "" && p.FriendlyName == "" && !p.passwordChange()
}

// UpdateUser applies self-service changes to the caller's own user record,
// resolved from the verified token claims. Missing or inactive user, an
// empty field set and an old-password mismatch all collapse to
// common.ErrUpdateUserFailed after the uniform delay.
func (s *Service) UpdateUser(ctx context.Context, caller *auth.Claims, params UpdateUserParams) error {
	if caller == nil {
		s.log.Debug(ctx, "user update failed", "reason", "no claims")
		s.failDelay(ctx)
		return common.ErrUpdateUserFailed
	}

	user, err := s.repo.UserByID(ctx, caller.UserID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	var reason string
	switch {
	case user == nil:
		reason = "user not found"
	case !user.IsActive:
		reason = "user inactive"
	case params.empty():
		reason = "no fields supplied"
	case params.passwordChange() && !s.hasher.Verify(params.OldPassword, user.Password):
		reason = "old password mismatch"
	}
	if reason != "" {
		s.log.Debug(ctx, "user update failed", "userId", caller.UserID, "reason", reason)
		s.failDelay(ctx)
		return common.ErrUpdateUserFailed
	}

	if params.Email != "" {
		user.Email = params.Email
	}
	if params.FriendlyName != "" {
		user.FriendlyName = params.FriendlyName
	}
	if params.passwordChange() {
		hash, err := s.hasher.Hash(params.NewPassword)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrInternal, err)
		}
		user.Password = hash
	}
	user.LastActivity = time.Now().UTC()

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	s.log.Info(ctx, "user updated", "userId", user.UserID)
	return nil
}
