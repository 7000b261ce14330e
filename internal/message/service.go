package message

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/foodtruck-service/internal/customer"
)

const maxBodyLength = 1600

var (
	ErrInvalidMessage  = errors.New("invalid message")
	ErrUnknownCustomer = errors.New("customer does not belong to this account")
)

type CustomerLookup interface {
	GetCustomer(ctx context.Context, accountID, id uuid.UUID) (*customer.Customer, error)
}

type Service interface {
	QueueMessage(ctx context.Context, m *Message) (*Message, error)
	ListMessages(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Message, error)
}

type service struct {
	repo      Repository
	customers CustomerLookup
}

func NewService(repo Repository, customers CustomerLookup) Service {
	return &service{repo: repo, customers: customers}
}

func (s *service) QueueMessage(ctx context.Context, m *Message) (*Message, error) {
	m.Body = strings.TrimSpace(m.Body)
	if m.Body == "" {
		return nil, fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}
	if len(m.Body) > maxBodyLength {
		return nil, fmt.Errorf("%w: body exceeds %d characters", ErrInvalidMessage, maxBodyLength)
	}
	if m.Direction == "" {
		m.Direction = DirectionOutbound
	}
	if m.Purpose == "" {
		m.Purpose = PurposeOther
	}
	if !m.Direction.Valid() || !m.Channel.Valid() || !m.Purpose.Valid() {
		return nil, fmt.Errorf("%w: unknown direction, channel or purpose", ErrInvalidMessage)
	}

	if m.CustomerID != nil {
		if _, err := s.customers.GetCustomer(ctx, m.AccountID, *m.CustomerID); err != nil {
			if errors.Is(err, customer.ErrCustomerNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownCustomer, *m.CustomerID)
			}
			return nil, fmt.Errorf("service: failed to look up customer: %w", err)
		}
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate message id: %w", err)
	}
	now := time.Now().UTC()
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
	m.ProviderMessageID = ""
	m.SentAt, m.FailedAt = nil, nil
	if m.Direction == DirectionInbound {
		m.Status = StatusDelivered
		m.DeliveredAt = &now
	} else {
		m.Status = StatusQueued
		m.DeliveredAt = nil
	}

	if err := s.repo.Create(ctx, m); err != nil {
		log.Error().Err(err).Stringer("account_id", m.AccountID).Msg("service: failed to store message")
		return nil, fmt.Errorf("service: failed to store message: %w", err)
	}

	log.Info().Stringer("account_id", m.AccountID).Stringer("message_id", m.ID).Str("purpose", string(m.Purpose)).Msg("service: message queued")
	return m, nil
}

func (s *service) ListMessages(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Message, error) {
	messages, err := s.repo.List(ctx, accountID, filter)
	if err != nil {
		log.Error().Err(err).Stringer("account_id", accountID).Msg("service: failed to list messages")
		return nil, fmt.Errorf("service: failed to list messages: %w", err)
	}
	return messages, nil
}
