package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/identity/internal/logging"
	"github.com/dmitrijs2005/identity/internal/server/auth"
	"github.com/dmitrijs2005/identity/internal/server/config"
	"github.com/dmitrijs2005/identity/internal/server/models"
	"github.com/dmitrijs2005/identity/internal/server/repositories/inmemory"
)

// testDelay keeps the uniform-failure tests fast while still being long
// enough to measure.
const testDelay = 50 * time.Millisecond

type sentMail struct {
	To   string
	Code string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) SendActivationCode(ctx context.Context, to string, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Code: code})
	return nil
}

func (f *fakeMailer) sentMails() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

func newTestService(t *testing.T, mutate func(cfg *config.Config)) (*Service, *inmemory.Repository, *fakeMailer) {
	t.Helper()

	keyPath := filepath.Join(t.TempDir(), "secret.key")
	require.NoError(t, os.WriteFile(keyPath, []byte("test-signing-secret"), 0o600))

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.PrivateKeyPath = keyPath
	cfg.PublicKeyPath = keyPath
	cfg.PasswordHashCost = bcrypt.MinCost
	cfg.FailureDelay = testDelay
	if mutate != nil {
		mutate(cfg)
	}

	repo := inmemory.New()
	keys := auth.NewKeyChain(cfg.PrivateKeyPath, cfg.PublicKeyPath)
	tokens := auth.NewTokenService(keys, cfg.PrivateKeyPassword, cfg.Issuer, cfg.TokenValidity)
	hasher := auth.NewHasher(cfg.PasswordHashCost)
	mailer := &fakeMailer{}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	return NewService(repo, keys, tokens, hasher, mailer, cfg, log), repo, mailer
}

// seedUser creates an account and its owning user with the given password
// and activity flags.
func seedUser(t *testing.T, svc *Service, repo *inmemory.Repository, accountID, userID, password string, accountActive, userActive bool) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.CreateAccount(ctx, &models.Account{
		AccountID: accountID,
		Name:      "acme",
		OwnerID:   userID,
		IsActive:  accountActive,
	})
	require.NoError(t, err)

	hash, err := svc.hasher.Hash(password)
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, &models.User{
		UserID:       userID,
		AccountID:    accountID,
		Email:        userID + "@example.com",
		FriendlyName: "Friendly " + userID,
		Password:     hash,
		IsActive:     userActive,
	})
	require.NoError(t, err)
}
