package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

var ErrOrderNotFound = errors.New("order not found")

type Repository interface {
	// CreateOrder writes the order and all of its line items in one transaction.
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, accountID, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Order, error)
	ListLineItems(ctx context.Context, accountID, orderID uuid.UUID) ([]LineItem, error)
	// UpdateStatus persists the status fields of order only if its stored status is still from.
	UpdateStatus(ctx context.Context, order *Order, from Status) error
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

const orderColumns = `id, account_id, customer_id, location_id, channel, status, pickup_code,
	placed_at, accepted_at, ready_at, completed_at, canceled_at, refunded_at,
	prep_time_estimate_seconds, prep_time_actual_seconds,
	subtotal_amount, tax_amount, discount_amount, total_amount, currency,
	payment_status, payment_method, notes, created_at, updated_at`

const lineItemColumns = `id, order_id, account_id, product_id, line_number, quantity, unit_price, line_subtotal,
	status, special_instructions, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.AccountID, &o.CustomerID, &o.LocationID, &o.Channel, &o.Status, &o.PickupCode,
		&o.PlacedAt, &o.AcceptedAt, &o.ReadyAt, &o.CompletedAt, &o.CanceledAt, &o.RefundedAt,
		&o.PrepTimeEstimateSeconds, &o.PrepTimeActualSeconds,
		&o.SubtotalAmount, &o.TaxAmount, &o.DiscountAmount, &o.TotalAmount, &o.Currency,
		&o.PaymentStatus, &o.PaymentMethod, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanLineItem(row pgx.Row) (*LineItem, error) {
	var li LineItem
	err := row.Scan(
		&li.ID, &li.OrderID, &li.AccountID, &li.ProductID, &li.LineNumber, &li.Quantity, &li.UnitPrice, &li.LineSubtotal,
		&li.Status, &li.SpecialInstructions, &li.CreatedAt, &li.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &li, nil
}

func (r *postgresRepository) CreateOrder(ctx context.Context, o *Order) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Stringer("order_id", o.ID).Msg("Panic recovered during CreateOrder, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			log.Warn().Err(err).Stringer("order_id", o.ID).Msg("Transaction for CreateOrder failed, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("Failed to rollback transaction")
			}
		} else if commitErr := tx.Commit(ctx); commitErr != nil {
			log.Error().Err(commitErr).Stringer("order_id", o.ID).Msg("Failed to commit transaction")
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	queryOrder := `
		INSERT INTO foodtruck.orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`
	_, err = tx.Exec(ctx, queryOrder,
		o.ID, o.AccountID, o.CustomerID, o.LocationID, string(o.Channel), string(o.Status), o.PickupCode,
		o.PlacedAt, o.AcceptedAt, o.ReadyAt, o.CompletedAt, o.CanceledAt, o.RefundedAt,
		o.PrepTimeEstimateSeconds, o.PrepTimeActualSeconds,
		o.SubtotalAmount, o.TaxAmount, o.DiscountAmount, o.TotalAmount, o.Currency,
		string(o.PaymentStatus), o.PaymentMethod, o.Notes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO foodtruck.order_line_items (` + lineItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	for i := range o.LineItems {
		li := &o.LineItems[i]
		_, err = tx.Exec(ctx, queryItem,
			li.ID, li.OrderID, li.AccountID, li.ProductID, li.LineNumber, li.Quantity, li.UnitPrice, li.LineSubtotal,
			string(li.Status), li.SpecialInstructions, li.CreatedAt, li.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert line item for order %s: %w", o.ID, err)
		}
	}

	return nil
}

func (r *postgresRepository) GetOrderByID(ctx context.Context, accountID, id uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM foodtruck.orders WHERE account_id = $1 AND id = $2`

	o, err := scanOrder(r.db.QueryRow(ctx, query, accountID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	items, err := r.ListLineItems(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	o.LineItems = items

	return o, nil
}

func (r *postgresRepository) ListOrders(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Order, error) {
	conds := []string{"account_id = $1"}
	args := []any{accountID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		conds = append(conds, fmt.Sprintf("placed_at >= $%d", len(args)))
	}
	if filter.Until != nil {
		args = append(args, *filter.Until)
		conds = append(conds, fmt.Sprintf("placed_at < $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM foodtruck.orders WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY placed_at DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for account %s: %w", accountID, err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order for account %s: %w", accountID, err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating orders for account %s: %w", accountID, err)
	}
	return orders, nil
}

func (r *postgresRepository) ListLineItems(ctx context.Context, accountID, orderID uuid.UUID) ([]LineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM foodtruck.order_line_items
		WHERE account_id = $1 AND order_id = $2
		ORDER BY line_number`

	rows, err := r.db.Query(ctx, query, accountID, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query line items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	items := make([]LineItem, 0)
	for rows.Next() {
		li, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan line item for order %s: %w", orderID, err)
		}
		items = append(items, *li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating line items for order %s: %w", orderID, err)
	}
	return items, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, o *Order, from Status) error {
	query := `
		UPDATE foodtruck.orders
		SET status = $3, accepted_at = $4, ready_at = $5, completed_at = $6, canceled_at = $7, refunded_at = $8,
			prep_time_actual_seconds = $9, payment_status = $10, updated_at = $11
		WHERE account_id = $1 AND id = $2 AND status = $12
	`
	cmdTag, err := r.db.Exec(ctx, query,
		o.AccountID, o.ID, string(o.Status), o.AcceptedAt, o.ReadyAt, o.CompletedAt, o.CanceledAt, o.RefundedAt,
		o.PrepTimeActualSeconds, string(o.PaymentStatus), o.UpdatedAt, string(from),
	)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Stringer("new_status", o.Status).Msg("repository: failed to update order status")
		return fmt.Errorf("repository: failed to update order status %s: %w", o.ID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		log.Warn().Stringer("order_id", o.ID).Stringer("expected_status", from).Msg("repository: order status changed concurrently")
		return ErrStatusConflict
	}
	return nil
}
