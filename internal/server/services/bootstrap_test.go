package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/identity/internal/server/config"
	"github.com/dmitrijs2005/identity/internal/server/models"
)

func TestEnsureSystemUser_CreatesAccountAndUser(t *testing.T) {
	svc, repo, _ := newTestService(t, func(cfg *config.Config) {
		cfg.SystemPassword = "changeme"
	})
	ctx := context.Background()

	require.NoError(t, svc.EnsureSystemUser(ctx))

	account, err := repo.AccountByID(ctx, models.SystemAccountID)
	require.NoError(t, err)
	assert.Equal(t, "System", account.Name)
	assert.Equal(t, "admin", account.OwnerID)
	assert.True(t, account.IsActive)

	user, err := repo.UserByID(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.SystemAccountID, user.AccountID)
	assert.True(t, user.IsActive)
	assert.Empty(t, user.ActivationCode)

	_, err = svc.Authenticate(ctx, models.SystemAccountID, "admin", "changeme")
	assert.NoError(t, err, "configured system password must authenticate")
}

func TestEnsureSystemUser_ReservesRootAccountID(t *testing.T) {
	svc, _, _ := newTestService(t, func(cfg *config.Config) {
		cfg.SystemPassword = "changeme"
		cfg.BypassUserActivation = true
	})
	ctx := context.Background()

	require.NoError(t, svc.EnsureSystemUser(ctx))

	accountID, err := svc.Register(ctx, registerParams("u1"))
	require.NoError(t, err)
	assert.NotEqual(t, models.SystemAccountID, accountID,
		"registration must never be assigned the reserved root id")
	assert.Equal(t, "2", accountID)
}

func TestEnsureSystemUser_Idempotent(t *testing.T) {
	svc, repo, _ := newTestService(t, func(cfg *config.Config) {
		cfg.SystemPassword = "changeme"
	})
	ctx := context.Background()

	require.NoError(t, svc.EnsureSystemUser(ctx))
	first, err := repo.UserByID(ctx, "admin")
	require.NoError(t, err)

	require.NoError(t, svc.EnsureSystemUser(ctx))
	second, err := repo.UserByID(ctx, "admin")
	require.NoError(t, err)

	assert.Equal(t, first.Password, second.Password, "existing system user must not be recreated")
}

func TestEnsureSystemUser_ExistingRootAccount(t *testing.T) {
	svc, repo, _ := newTestService(t, func(cfg *config.Config) {
		cfg.SystemPassword = "changeme"
	})
	ctx := context.Background()

	_, err := repo.CreateAccount(ctx, &models.Account{
		AccountID: models.SystemAccountID, Name: "System", OwnerID: "admin", IsActive: true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.EnsureSystemUser(ctx))

	_, err = repo.UserByID(ctx, "admin")
	assert.NoError(t, err, "user must be created even when the account already exists")
}

func TestEnsureSystemUser_GeneratesRandomPassword(t *testing.T) {
	svc, repo, _ := newTestService(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.EnsureSystemUser(ctx))

	user, err := repo.UserByID(ctx, "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, user.Password, "a random password must still be hashed and stored")
}
