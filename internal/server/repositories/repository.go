// Package repositories defines the persistence contract of the identity
// service and a factory that selects a backend from the database DSN.
package repositories

import (
	"context"

	"github.com/dmitrijs2005/identity/internal/server/models"
)

// CounterAccount is the counter key used to mint account ids.
const CounterAccount = "account"

// Repository is the persistence surface used by the service layer. All
// lookups return common.ErrNotFound when the entity does not exist.
type Repository interface {
	// NextCounterValue atomically increments the named counter and returns
	// the new value. A counter that has never been touched starts at 1.
	NextCounterValue(ctx context.Context, name string) (int64, error)

	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)
	AccountByID(ctx context.Context, accountID string) (*models.Account, error)
	AccountByOwnerID(ctx context.Context, ownerID string) (*models.Account, error)
	UpdateAccount(ctx context.Context, account *models.Account) error

	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	UserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	// Configuration returns the singleton shared configuration document.
	Configuration(ctx context.Context) (*models.Configuration, error)
	UpdateConfiguration(ctx context.Context, cfg *models.Configuration) error

	Close() error
}
