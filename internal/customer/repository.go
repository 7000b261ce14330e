package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrCustomerNotFound = errors.New("customer not found")

type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*Customer, error)
	List(ctx context.Context, accountID uuid.UUID) ([]Customer, error)
}

type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRepository struct {
	db DB
}

func NewRepository(db DB) Repository {
	return &postgresRepository{db: db}
}

const customerColumns = `id, account_id, name, phone, email, notes, preferred_channel, marketing_opt_in, created_at, updated_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.AccountID, &c.Name, &c.Phone, &c.Email, &c.Notes,
		&c.PreferredChannel, &c.MarketingOptIn, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepository) Create(ctx context.Context, c *Customer) error {
	query := `
		INSERT INTO foodtruck.customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.AccountID, c.Name, c.Phone, c.Email, c.Notes,
		string(c.PreferredChannel), c.MarketingOptIn, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert customer: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, accountID, id uuid.UUID) (*Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM foodtruck.customers WHERE account_id = $1 AND id = $2`

	c, err := scanCustomer(r.db.QueryRow(ctx, query, accountID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("repository: failed to select customer %s: %w", id, err)
	}
	return c, nil
}

func (r *postgresRepository) List(ctx context.Context, accountID uuid.UUID) ([]Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM foodtruck.customers WHERE account_id = $1 ORDER BY name, created_at`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query customers for account %s: %w", accountID, err)
	}
	defer rows.Close()

	customers := make([]Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating customers: %w", err)
	}
	return customers, nil
}
