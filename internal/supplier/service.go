package supplier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var ErrInvalidTransaction = errors.New("invalid supplier transaction")

type Service interface {
	RecordTransaction(ctx context.Context, t *Transaction) (*Transaction, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Transaction, error)
	ExpensesBetween(ctx context.Context, accountID uuid.UUID, start, end time.Time) (float64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) RecordTransaction(ctx context.Context, t *Transaction) (*Transaction, error) {
	t.SupplierName = strings.TrimSpace(t.SupplierName)
	if t.SupplierName == "" {
		return nil, fmt.Errorf("%w: supplier name is required", ErrInvalidTransaction)
	}
	if t.TotalAmount < 0 {
		return nil, fmt.Errorf("%w: total amount cannot be negative", ErrInvalidTransaction)
	}
	if t.TransactionType == "" {
		t.TransactionType = TypeInventory
	}
	if !t.TransactionType.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, t.TransactionType)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate supplier transaction id: %w", err)
	}
	now := s.now().UTC()
	t.ID = id
	if t.TransactionDate.IsZero() {
		t.TransactionDate = now
	}
	t.Currency = strings.ToUpper(strings.TrimSpace(t.Currency))
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := s.repo.Create(ctx, t); err != nil {
		log.Error().Err(err).Stringer("account_id", t.AccountID).Msg("service: failed to record supplier transaction")
		return nil, fmt.Errorf("service: failed to record supplier transaction: %w", err)
	}

	log.Info().Stringer("account_id", t.AccountID).Str("supplier", t.SupplierName).Float64("total", t.TotalAmount).Msg("service: supplier transaction recorded")
	return t, nil
}

func (s *service) ListTransactions(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Transaction, error) {
	transactions, err := s.repo.List(ctx, accountID, filter)
	if err != nil {
		log.Error().Err(err).Stringer("account_id", accountID).Msg("service: failed to list supplier transactions")
		return nil, fmt.Errorf("service: failed to list supplier transactions: %w", err)
	}
	return transactions, nil
}

func (s *service) ExpensesBetween(ctx context.Context, accountID uuid.UUID, start, end time.Time) (float64, error) {
	total, err := s.repo.SumBetween(ctx, accountID, start, end)
	if err != nil {
		return 0, fmt.Errorf("service: failed to total supplier expenses: %w", err)
	}
	return total, nil
}
