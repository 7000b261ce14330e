package supplier

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	List(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Transaction, error)
	// SumBetween totals transactions dated within [start, end).
	SumBetween(ctx context.Context, accountID uuid.UUID, start, end time.Time) (float64, error)
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

const transactionColumns = `id, account_id, supplier_name, transaction_date, total_amount, currency, transaction_type,
	receipt_image_url, ocr_text, notes, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, t *Transaction) error {
	query := `
		INSERT INTO foodtruck.supplier_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query, t.ID, t.AccountID, t.SupplierName, t.TransactionDate, t.TotalAmount,
		t.Currency, string(t.TransactionType), t.ReceiptImageURL, t.OCRText, t.Notes, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert supplier transaction: %w", err)
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM foodtruck.supplier_transactions WHERE account_id = $1`
	args := []any{accountID}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		query += fmt.Sprintf(" AND transaction_date >= $%d", len(args))
	}
	if filter.Until != nil {
		args = append(args, *filter.Until)
		query += fmt.Sprintf(" AND transaction_date < $%d", len(args))
	}
	query += " ORDER BY transaction_date DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query supplier transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	transactions := make([]Transaction, 0)
	for rows.Next() {
		var t Transaction
		err := rows.Scan(&t.ID, &t.AccountID, &t.SupplierName, &t.TransactionDate, &t.TotalAmount, &t.Currency,
			&t.TransactionType, &t.ReceiptImageURL, &t.OCRText, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan supplier transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating supplier transactions: %w", err)
	}
	return transactions, nil
}

func (r *postgresRepository) SumBetween(ctx context.Context, accountID uuid.UUID, start, end time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM foodtruck.supplier_transactions
		WHERE account_id = $1 AND transaction_date >= $2 AND transaction_date < $3
	`
	var total float64
	if err := r.db.QueryRow(ctx, query, accountID, start, end).Scan(&total); err != nil {
		return 0, fmt.Errorf("repository: failed to sum supplier transactions for account %s: %w", accountID, err)
	}
	return total, nil
}
