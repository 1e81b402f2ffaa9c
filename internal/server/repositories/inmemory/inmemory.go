// Package inmemory implements the identity repository on plain maps guarded
// by a mutex. It backs the mem:// DSN scheme and is used by service tests
// and local development.
package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/identity/internal/common"
	"github.com/dmitrijs2005/identity/internal/server/models"
)

// Repository is a map-backed identity repository. All returned entities are
// copies; mutating them does not affect the stored state.
type Repository struct {
	mu            sync.RWMutex
	accounts      map[string]models.Account
	users         map[string]models.User
	counters      map[string]int64
	configuration *models.Configuration
}

// New returns an empty in-memory repository.
func New() *Repository {
	return &Repository{
		accounts: make(map[string]models.Account),
		users:    make(map[string]models.User),
		counters: make(map[string]int64),
	}
}

func (r *Repository) NextCounterValue(ctx context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters[name]++
	return r.counters[name], nil
}

func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stampTimes(&account.Created, &account.LastActivity)
	r.accounts[account.AccountID] = *account

	saved := *account
	return &saved, nil
}

func (r *Repository) AccountByID(ctx context.Context, accountID string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[accountID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &account, nil
}

func (r *Repository) AccountByOwnerID(ctx context.Context, ownerID string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.accounts {
		if account.OwnerID == ownerID {
			found := account
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *Repository) UpdateAccount(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.AccountID]; !ok {
		return common.ErrNotFound
	}
	r.accounts[account.AccountID] = *account
	return nil
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stampTimes(&user.Created, &user.LastActivity)
	r.users[user.UserID] = *user

	saved := *user
	return &saved, nil
}

func (r *Repository) UserByID(ctx context.Context, userID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &user, nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.UserID]; !ok {
		return common.ErrNotFound
	}
	r.users[user.UserID] = *user
	return nil
}

func (r *Repository) Configuration(ctx context.Context) (*models.Configuration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.configuration == nil {
		return nil, common.ErrNotFound
	}
	cfg := *r.configuration
	return &cfg, nil
}

func (r *Repository) UpdateConfiguration(ctx context.Context, cfg *models.Configuration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := *cfg
	r.configuration = &saved
	return nil
}

func (r *Repository) Close() error {
	return nil
}

func stampTimes(created, lastActivity *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	if lastActivity.IsZero() {
		*lastActivity = now
	}
}
