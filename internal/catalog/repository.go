package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

var ErrProductNotFound = errors.New("product not found")

type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*Product, error)
	List(ctx context.Context, accountID uuid.UUID, activeOnly bool) ([]Product, error)
	GetMany(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) ([]Product, error)
	// RecordInventoryEvent stores the event and applies its delta to the product stock in one transaction.
	RecordInventoryEvent(ctx context.Context, event *InventoryEvent) (*Product, error)
}

type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type postgresRepository struct {
	db DB
}

func NewRepository(db DB) Repository {
	return &postgresRepository{db: db}
}

const productColumns = `id, account_id, name, description, category, menu_type, sku, is_active,
	price, cost, current_stock, stock_unit, prep_time_seconds, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.AccountID, &p.Name, &p.Description, &p.Category, &p.MenuType, &p.SKU, &p.IsActive,
		&p.Price, &p.Cost, &p.CurrentStock, &p.StockUnit, &p.PrepTimeSeconds, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) Create(ctx context.Context, p *Product) error {
	query := `
		INSERT INTO foodtruck.products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.AccountID, p.Name, p.Description, p.Category, string(p.MenuType), p.SKU, p.IsActive,
		p.Price, p.Cost, p.CurrentStock, string(p.StockUnit), p.PrepTimeSeconds, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, p *Product) error {
	query := `
		UPDATE foodtruck.products
		SET name = $3, description = $4, category = $5, menu_type = $6, sku = $7, is_active = $8,
			price = $9, cost = $10, current_stock = $11, stock_unit = $12, prep_time_seconds = $13, updated_at = $14
		WHERE account_id = $1 AND id = $2
	`
	cmdTag, err := r.db.Exec(ctx, query,
		p.AccountID, p.ID, p.Name, p.Description, p.Category, string(p.MenuType), p.SKU, p.IsActive,
		p.Price, p.Cost, p.CurrentStock, string(p.StockUnit), p.PrepTimeSeconds, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %s: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, accountID, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM foodtruck.products WHERE account_id = $1 AND id = $2`

	p, err := scanProduct(r.db.QueryRow(ctx, query, accountID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product %s: %w", id, err)
	}
	return p, nil
}

func (r *postgresRepository) collect(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating products: %w", err)
	}
	return products, nil
}

func (r *postgresRepository) List(ctx context.Context, accountID uuid.UUID, activeOnly bool) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM foodtruck.products
		WHERE account_id = $1 AND (NOT $2 OR is_active)
		ORDER BY category, name`

	rows, err := r.db.Query(ctx, query, accountID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products for account %s: %w", accountID, err)
	}
	return r.collect(rows)
}

func (r *postgresRepository) GetMany(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM foodtruck.products WHERE account_id = $1 AND id = ANY($2::uuid[])`

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	rows, err := r.db.Query(ctx, query, accountID, keys)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products by id: %w", err)
	}
	return r.collect(rows)
}

func (r *postgresRepository) RecordInventoryEvent(ctx context.Context, e *InventoryEvent) (product *Product, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to begin transaction: %w", err)
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

	updateQuery := `
		UPDATE foodtruck.products
		SET current_stock = COALESCE(current_stock, 0) + $3, updated_at = $4
		WHERE account_id = $1 AND id = $2
		RETURNING ` + productColumns

	product, err = scanProduct(tx.QueryRow(ctx, updateQuery, e.AccountID, e.ProductID, e.QuantityDelta, e.UpdatedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to apply stock delta: %w", err)
	}

	insertQuery := `
		INSERT INTO foodtruck.inventory_events (id, account_id, product_id, type, quantity_delta, unit_cost, reason,
			occurred_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.Exec(ctx, insertQuery,
		e.ID, e.AccountID, e.ProductID, string(e.Type), e.QuantityDelta, e.UnitCost, e.Reason,
		e.OccurredAt, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to insert inventory event: %w", err)
	}

	return product, nil
}
