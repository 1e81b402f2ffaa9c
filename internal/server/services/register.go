package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/identity/internal/common"
	"github.com/dmitrijs2005/identity/internal/server/models"
	"github.com/dmitrijs2005/identity/internal/server/repositories"
)

// RegisterParams is the input of the registration use-case.
type RegisterParams struct {
	UserID       string
	Email        string
	AccountName  string
	FriendlyName string
	Password     string
}

// activationCodeBytes yields a 32-character hex activation code.
const activationCodeBytes = 16

// Register creates a new account owned by a new user.
//
// The chosen userId must not collide with any existing user id or account
// owner; a collision yields common.ErrDuplicateUserID after the uniform
// delay. When activation is not bypassed, the user is created inactive with
// a random activation code which is mailed to them. A mail delivery failure
// returns the already-minted account id together with common.ErrMailDelivery;
// the created records are deliberately not rolled back.
func (s *Service) Register(ctx context.Context, params RegisterParams) (string, error) {
	var ownerTaken, userTaken bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.repo.AccountByOwnerID(gctx, params.UserID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil
			}
			return err
		}
		ownerTaken = true
		return nil
	})
	g.Go(func() error {
		_, err := s.repo.UserByID(gctx, params.UserID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil
			}
			return err
		}
		userTaken = true
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	if ownerTaken || userTaken {
		s.log.Debug(ctx, "registration rejected", "userId", params.UserID, "ownerTaken", ownerTaken, "userTaken", userTaken)
		s.failDelay(ctx)
		return "", common.ErrDuplicateUserID
	}

	seq, err := s.repo.NextCounterValue(ctx, repositories.CounterAccount)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
	accountID := strconv.FormatInt(seq, 10)

	if _, err := s.repo.CreateAccount(ctx, &models.Account{
		AccountID: accountID,
		Name:      params.AccountName,
		OwnerID:   params.UserID,
		IsActive:  true,
	}); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	user := &models.User{
		UserID:       params.UserID,
		AccountID:    accountID,
		Email:        params.Email,
		FriendlyName: params.FriendlyName,
		Password:     hash,
		IsActive:     s.cfg.BypassUserActivation,
	}
	if !s.cfg.BypassUserActivation {
		code, err := common.MakeRandHexString(activationCodeBytes)
		if err != nil {
			return "", fmt.Errorf("%w: %v", common.ErrInternal, err)
		}
		user.ActivationCode = code
	}

	if _, err := s.repo.CreateUser(ctx, user); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	if !s.cfg.BypassUserActivation {
		if err := s.mailer.SendActivationCode(ctx, user.Email, user.ActivationCode); err != nil {
			s.log.Error(ctx, "activation mail delivery failed", "userId", user.UserID, "error", err)
			return accountID, common.ErrMailDelivery
		}
	}

	s.log.Info(ctx, "user registered", "userId", user.UserID, "accountId", accountID)
	return accountID, nil
}
