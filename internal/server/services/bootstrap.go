package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/identity/internal/common"
	"github.com/dmitrijs2005/identity/internal/server/models"
	"github.com/dmitrijs2005/identity/internal/server/repositories"
)

const (
	systemAccountName = "System"
	systemUserEmail   = "system@localhost"
)

// EnsureSystemUser creates the root account and the configured system user
// on first startup. Subsequent startups find the user and do nothing.
//
// When the root account is minted the account counter is consumed once so a
// later registration can never be assigned the reserved id. If no system
// password is configured a random one is generated; it is not logged, so
// unattended deployments should set the password explicitly.
func (s *Service) EnsureSystemUser(ctx context.Context) error {
	_, err := s.repo.UserByID(ctx, s.cfg.SystemUser)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("looking up system user: %w", err)
	}

	_, err = s.repo.AccountByID(ctx, models.SystemAccountID)
	if errors.Is(err, common.ErrNotFound) {
		if _, err := s.repo.NextCounterValue(ctx, repositories.CounterAccount); err != nil {
			return fmt.Errorf("reserving root account id: %w", err)
		}
		if _, err := s.repo.CreateAccount(ctx, &models.Account{
			AccountID: models.SystemAccountID,
			Name:      systemAccountName,
			OwnerID:   s.cfg.SystemUser,
			IsActive:  true,
		}); err != nil {
			return fmt.Errorf("creating root account: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("looking up root account: %w", err)
	}

	password := s.cfg.SystemPassword
	if password == "" {
		password, err = common.MakeRandHexString(16)
		if err != nil {
			return fmt.Errorf("generating system password: %w", err)
		}
		s.log.Warn(ctx, "no system password configured, generated a random one")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hashing system password: %w", err)
	}

	if _, err := s.repo.CreateUser(ctx, &models.User{
		UserID:       s.cfg.SystemUser,
		AccountID:    models.SystemAccountID,
		Email:        systemUserEmail,
		FriendlyName: "System User",
		Password:     hash,
		IsActive:     true,
	}); err != nil {
		return fmt.Errorf("creating system user: %w", err)
	}

	s.log.Info(ctx, "system user created", "userId", s.cfg.SystemUser)
	return nil
}
