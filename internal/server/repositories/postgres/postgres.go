// Package postgres implements the identity repository on PostgreSQL with
// goose-managed schema migrations.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/identity/internal/common"
	"github.com/dmitrijs2005/identity/internal/dbx"
	"github.com/dmitrijs2005/identity/internal/server/migrations"
	"github.com/dmitrijs2005/identity/internal/server/models"
)

// Repository is a PostgreSQL-backed identity repository.
type Repository struct {
	db   dbx.DBTX
	conn *sql.DB
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// New opens a connection pool for dsn, applies pending migrations and
// returns the repository.
func New(ctx context.Context, dsn string) (*Repository, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := runMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Repository{db: conn, conn: conn}, nil
}

// newWithDB binds the repository to an existing DBTX. Used by tests.
func newWithDB(db dbx.DBTX) *Repository {
	return &Repository{db: db}
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func (r *Repository) NextCounterValue(ctx context.Context, name string) (int64, error) {
	query :=
		`INSERT INTO counters (name, value)
		 VALUES ($1, 1)
		 ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		 RETURNING value
		 `

	var value int64
	err := r.db.QueryRowContext(ctx, query, name).Scan(&value)

	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return value, nil
}

func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	stampTimes(&account.Created, &account.LastActivity)

	query :=
		`INSERT INTO accounts (account_id, name, owner_id, is_active, created, last_activity)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		account.AccountID, account.Name, account.OwnerID, account.IsActive,
		account.Created, account.LastActivity)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *Repository) AccountByID(ctx context.Context, accountID string) (*models.Account, error) {
	query :=
		`SELECT account_id, name, owner_id, is_active, created, last_activity FROM accounts
		 WHERE account_id = $1
		 `

	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(
		&account.AccountID, &account.Name, &account.OwnerID, &account.IsActive,
		&account.Created, &account.LastActivity)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *Repository) AccountByOwnerID(ctx context.Context, ownerID string) (*models.Account, error) {
	query :=
		`SELECT account_id, name, owner_id, is_active, created, last_activity FROM accounts
		 WHERE owner_id = $1
		 `

	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
		&account.AccountID, &account.Name, &account.OwnerID, &account.IsActive,
		&account.Created, &account.LastActivity)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *Repository) UpdateAccount(ctx context.Context, account *models.Account) error {
	query :=
		`UPDATE accounts SET name = $2, owner_id = $3, is_active = $4, last_activity = $5
		 WHERE account_id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		account.AccountID, account.Name, account.OwnerID, account.IsActive, account.LastActivity)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	stampTimes(&user.Created, &user.LastActivity)

	query :=
		`INSERT INTO users (user_id, account_id, email, friendly_name, password, is_active, activation_code, created, last_activity)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 `

	_, err := r.db.ExecContext(ctx, query,
		user.UserID, user.AccountID, user.Email, user.FriendlyName, user.Password,
		user.IsActive, nullableString(user.ActivationCode), user.Created, user.LastActivity)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *Repository) UserByID(ctx context.Context, userID string) (*models.User, error) {
	query :=
		`SELECT user_id, account_id, email, friendly_name, password, is_active, activation_code, created, last_activity FROM users
		 WHERE user_id = $1
		 `

	user := &models.User{}
	var code sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&user.UserID, &user.AccountID, &user.Email, &user.FriendlyName, &user.Password,
		&user.IsActive, &code, &user.Created, &user.LastActivity)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.ActivationCode = code.String
	return user, nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users SET email = $2, friendly_name = $3, password = $4, is_active = $5, activation_code = $6, last_activity = $7
		 WHERE user_id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		user.UserID, user.Email, user.FriendlyName, user.Password,
		user.IsActive, nullableString(user.ActivationCode), user.LastActivity)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *Repository) Configuration(ctx context.Context) (*models.Configuration, error) {
	query :=
		`SELECT internal, external FROM configuration
		 WHERE id = 1
		 `

	var internal, external []byte
	err := r.db.QueryRowContext(ctx, query).Scan(&internal, &external)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	cfg := &models.Configuration{}
	if err := json.Unmarshal(internal, &cfg.Internal); err != nil {
		return nil, fmt.Errorf("decoding internal block: %w", err)
	}
	if err := json.Unmarshal(external, &cfg.External); err != nil {
		return nil, fmt.Errorf("decoding external block: %w", err)
	}

	return cfg, nil
}

func (r *Repository) UpdateConfiguration(ctx context.Context, cfg *models.Configuration) error {
	internal, err := json.Marshal(cfg.Internal)
	if err != nil {
		return fmt.Errorf("encoding internal block: %w", err)
	}
	external, err := json.Marshal(cfg.External)
	if err != nil {
		return fmt.Errorf("encoding external block: %w", err)
	}

	query :=
		`INSERT INTO configuration (id, internal, external)
		 VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET internal = $1, external = $2
		 `

	if _, err := r.db.ExecContext(ctx, query, internal, external); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *Repository) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

// stampTimes fills zero-valued audit timestamps before an insert.
func stampTimes(created, lastActivity *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	if lastActivity.IsZero() {
		*lastActivity = now
	}
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
