package message

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository interface {
	Create(ctx context.Context, m *Message) error
	List(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Message, error)
}

type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type postgresRepository struct {
	db DB
}

func NewRepository(db DB) Repository {
	return &postgresRepository{db: db}
}

const messageColumns = `id, account_id, user_id, customer_id, order_id, direction, channel, purpose, template_key,
	body, status, provider_message_id, sent_at, delivered_at, failed_at, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, m *Message) error {
	query := `
		INSERT INTO foodtruck.messages (` + messageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.db.Exec(ctx, query,
		m.ID, m.AccountID, m.UserID, m.CustomerID, m.OrderID,
		string(m.Direction), string(m.Channel), string(m.Purpose), m.TemplateKey,
		m.Body, string(m.Status), m.ProviderMessageID, m.SentAt, m.DeliveredAt, m.FailedAt,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert message: %w", err)
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Message, error) {
	query := `SELECT ` + messageColumns + ` FROM foodtruck.messages WHERE account_id = $1`
	args := []any{accountID}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query messages for account %s: %w", accountID, err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var m Message
		err := rows.Scan(&m.ID, &m.AccountID, &m.UserID, &m.CustomerID, &m.OrderID,
			&m.Direction, &m.Channel, &m.Purpose, &m.TemplateKey,
			&m.Body, &m.Status, &m.ProviderMessageID, &m.SentAt, &m.DeliveredAt, &m.FailedAt,
			&m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating messages: %w", err)
	}
	return messages, nil
}
