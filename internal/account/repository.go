package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrUserNotFound    = errors.New("account user not found")
	ErrEmailExists     = errors.New("user with this email already exists in the account")
)

type Repository interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	GetAccountByLegacyUID(ctx context.Context, uid string) (*Account, error)
	UpdateAccount(ctx context.Context, acct *Account) error

	GetProfile(ctx context.Context, uid string) (*Profile, error)
	UpsertProfile(ctx context.Context, profile *Profile) error

	// ProvisionOwner writes the account, its owner user and the owner's profile atomically.
	ProvisionOwner(ctx context.Context, acct *Account, owner *User, profile *Profile) error
	// ClaimInvitation activates an invited user for uid and stores the staff profile atomically.
	ClaimInvitation(ctx context.Context, userID uuid.UUID, uid string, profile *Profile) error

	CreateUser(ctx context.Context, user *User) error
	ListUsers(ctx context.Context, accountID uuid.UUID) ([]User, error)
	GetUserBySubject(ctx context.Context, accountID uuid.UUID, uid string) (*User, error)
	FindInvitedUserByEmail(ctx context.Context, email string) (*User, error)
}

type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// execer is satisfied by both DB and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type postgresRepository struct {
	db DB
}

func NewRepository(db DB) Repository {
	return &postgresRepository{db: db}
}

const accountColumns = `id, name, legal_name, email, phone, address1, address2, city, state, postal_code, county, country,
	subscription_tier, subscription_status, subscription_start_at, subscription_end_at, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(
		&a.ID, &a.Name, &a.LegalName, &a.Email, &a.Phone,
		&a.Address1, &a.Address2, &a.City, &a.State, &a.PostalCode, &a.County, &a.Country,
		&a.SubscriptionTier, &a.SubscriptionStatus, &a.SubscriptionStartAt, &a.SubscriptionEndAt,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *postgresRepository) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM foodtruck.accounts WHERE id = $1`

	acct, err := scanAccount(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("repository: failed to select account %s: %w", id, err)
	}
	return acct, nil
}

func (r *postgresRepository) GetAccountByLegacyUID(ctx context.Context, uid string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM foodtruck.accounts WHERE legacy_uid = $1`

	acct, err := scanAccount(r.db.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("repository: failed to select account by legacy uid: %w", err)
	}
	return acct, nil
}

func insertAccount(ctx context.Context, db execer, a *Account) error {
	query := `
		INSERT INTO foodtruck.accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := db.Exec(ctx, query,
		a.ID, a.Name, a.LegalName, a.Email, a.Phone,
		a.Address1, a.Address2, a.City, a.State, a.PostalCode, a.County, a.Country,
		string(a.SubscriptionTier), string(a.SubscriptionStatus), a.SubscriptionStartAt, a.SubscriptionEndAt,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert account: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateAccount(ctx context.Context, a *Account) error {
	query := `
		UPDATE foodtruck.accounts
		SET name = $2, legal_name = $3, email = $4, phone = $5, address1 = $6, address2 = $7,
			city = $8, state = $9, postal_code = $10, county = $11, country = $12,
			subscription_tier = $13, subscription_status = $14, updated_at = $15
		WHERE id = $1
	`
	a.UpdatedAt = time.Now().UTC()

	cmdTag, err := r.db.Exec(ctx, query,
		a.ID, a.Name, a.LegalName, a.Email, a.Phone, a.Address1, a.Address2,
		a.City, a.State, a.PostalCode, a.County, a.Country,
		string(a.SubscriptionTier), string(a.SubscriptionStatus), a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update account %s: %w", a.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *postgresRepository) GetProfile(ctx context.Context, uid string) (*Profile, error) {
	query := `
		SELECT id, kind, primary_account_id, created_at, updated_at
		FROM foodtruck.user_profiles
		WHERE id = $1
	`
	var p Profile
	err := r.db.QueryRow(ctx, query, uid).Scan(&p.ID, &p.Kind, &p.PrimaryAccountID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("repository: failed to select profile: %w", err)
	}
	return &p, nil
}

func upsertProfile(ctx context.Context, db execer, p *Profile) error {
	// created_at keeps the first write, like a merge
	query := `
		INSERT INTO foodtruck.user_profiles (id, kind, primary_account_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET kind = EXCLUDED.kind, primary_account_id = EXCLUDED.primary_account_id, updated_at = EXCLUDED.updated_at
	`
	_, err := db.Exec(ctx, query, p.ID, string(p.Kind), p.PrimaryAccountID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to upsert profile: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpsertProfile(ctx context.Context, p *Profile) error {
	return upsertProfile(ctx, r.db, p)
}

func insertUser(ctx context.Context, db execer, u *User) error {
	query := `
		INSERT INTO foodtruck.account_users (id, account_id, role, status, email, first_name, last_name, phone,
			is_employee, auth_provider, auth_subject_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := db.Exec(ctx, query,
		u.ID, u.AccountID, string(u.Role), string(u.Status), u.Email, u.FirstName, u.LastName, u.Phone,
		u.IsEmployee, u.AuthProvider, u.AuthSubjectID, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrEmailExists
		}
		return fmt.Errorf("repository: failed to insert account user: %w", err)
	}
	return nil
}

func (r *postgresRepository) CreateUser(ctx context.Context, u *User) error {
	return insertUser(ctx, r.db, u)
}

// withTx runs fn inside a transaction, committing on success and rolling back on error or panic.
func (r *postgresRepository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction")
			}
		} else if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	return fn(tx)
}

func (r *postgresRepository) ProvisionOwner(ctx context.Context, acct *Account, owner *User, profile *Profile) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := insertAccount(ctx, tx, acct); err != nil {
			return err
		}
		if err := insertUser(ctx, tx, owner); err != nil {
			return err
		}
		return upsertProfile(ctx, tx, profile)
	})
}

func (r *postgresRepository) ClaimInvitation(ctx context.Context, userID uuid.UUID, uid string, profile *Profile) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE foodtruck.account_users
			SET status = $2, auth_subject_id = $3, updated_at = $4
			WHERE id = $1 AND status = $5
		`
		cmdTag, err := tx.Exec(ctx, query, userID, string(UserActive), uid, profile.UpdatedAt, string(UserInvited))
		if err != nil {
			return fmt.Errorf("repository: failed to activate invited user %s: %w", userID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrUserNotFound
		}
		return upsertProfile(ctx, tx, profile)
	})
}

const userColumns = `id, account_id, role, status, email, first_name, last_name, phone,
	is_employee, auth_provider, auth_subject_id, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.AccountID, &u.Role, &u.Status, &u.Email, &u.FirstName, &u.LastName, &u.Phone,
		&u.IsEmployee, &u.AuthProvider, &u.AuthSubjectID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *postgresRepository) ListUsers(ctx context.Context, accountID uuid.UUID) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM foodtruck.account_users WHERE account_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query users for account %s: %w", accountID, err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan user for account %s: %w", accountID, err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating users for account %s: %w", accountID, err)
	}
	return users, nil
}

func (r *postgresRepository) GetUserBySubject(ctx context.Context, accountID uuid.UUID, uid string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM foodtruck.account_users WHERE account_id = $1 AND auth_subject_id = $2`

	u, err := scanUser(r.db.QueryRow(ctx, query, accountID, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by subject: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) FindInvitedUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM foodtruck.account_users
		WHERE lower(email) = $1 AND status = $2
		ORDER BY created_at
		LIMIT 1`

	u, err := scanUser(r.db.QueryRow(ctx, query, strings.ToLower(email), string(UserInvited)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: failed to select invited user by email: %w", err)
	}
	return u, nil
}
