package report

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// SoldLines returns every line item of the account ordered by order placement then line number.
	SoldLines(ctx context.Context, accountID uuid.UUID, since, until *time.Time) ([]SoldLine, error)
	InsertProfitSnapshot(ctx context.Context, snap *ProfitSnapshot) error
	ListProfitSnapshots(ctx context.Context, accountID uuid.UUID) ([]ProfitSnapshot, error)
}

type sqlxRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &sqlxRepository{db: db}
}

func (r *sqlxRepository) SoldLines(ctx context.Context, accountID uuid.UUID, since, until *time.Time) ([]SoldLine, error) {
	query := `
		SELECT li.order_id, li.product_id, COALESCE(p.name, '') AS product_name, p.cost AS unit_cost,
			li.quantity, li.line_subtotal, o.status AS order_status, o.placed_at
		FROM foodtruck.order_line_items li
		JOIN foodtruck.orders o ON o.id = li.order_id
		LEFT JOIN foodtruck.products p ON p.id = li.product_id
		WHERE li.account_id = $1
			AND ($2::timestamptz IS NULL OR o.placed_at >= $2)
			AND ($3::timestamptz IS NULL OR o.placed_at < $3)
		ORDER BY o.placed_at, o.id, li.line_number
	`
	lines := make([]SoldLine, 0)
	if err := r.db.SelectContext(ctx, &lines, query, accountID.String(), since, until); err != nil {
		return nil, fmt.Errorf("repository: failed to query sold lines for account %s: %w", accountID, err)
	}
	return lines, nil
}

func (r *sqlxRepository) InsertProfitSnapshot(ctx context.Context, snap *ProfitSnapshot) error {
	query := `
		INSERT INTO foodtruck.profit_snapshots (id, account_id, granularity, label, start_at, end_at,
			gross_sales, discounts, refunds, net_sales, cost_of_goods_sold, other_expenses, supplier_expenses, profit,
			generated_at, created_at, updated_at)
		VALUES (:id, :account_id, :granularity, :label, :start_at, :end_at,
			:gross_sales, :discounts, :refunds, :net_sales, :cost_of_goods_sold, :other_expenses, :supplier_expenses, :profit,
			:generated_at, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, snap); err != nil {
		return fmt.Errorf("repository: failed to insert profit snapshot: %w", err)
	}
	return nil
}

func (r *sqlxRepository) ListProfitSnapshots(ctx context.Context, accountID uuid.UUID) ([]ProfitSnapshot, error) {
	query := `
		SELECT id, account_id, granularity, label, start_at, end_at, gross_sales, discounts, refunds,
			net_sales, cost_of_goods_sold, other_expenses, supplier_expenses, profit, generated_at, created_at, updated_at
		FROM foodtruck.profit_snapshots
		WHERE account_id = $1
		ORDER BY start_at DESC
	`
	snaps := make([]ProfitSnapshot, 0)
	if err := r.db.SelectContext(ctx, &snaps, query, accountID.String()); err != nil {
		return nil, fmt.Errorf("repository: failed to query profit snapshots for account %s: %w", accountID, err)
	}
	return snaps, nil
}
