package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var ErrEmptyContact = errors.New("customer needs at least a name, phone or email")

type Service interface {
	CreateCustomer(ctx context.Context, c *Customer) (*Customer, error)
	GetCustomer(ctx context.Context, accountID, id uuid.UUID) (*Customer, error)
	ListCustomers(ctx context.Context, accountID uuid.UUID) ([]Customer, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateCustomer(ctx context.Context, c *Customer) (*Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.Name == "" && c.Phone == "" && c.Email == "" {
		return nil, ErrEmptyContact
	}
	if c.PreferredChannel == "" {
		c.PreferredChannel = ChannelNone
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate customer id: %w", err)
	}
	now := time.Now().UTC()
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.repo.Create(ctx, c); err != nil {
		log.Error().Err(err).Stringer("account_id", c.AccountID).Msg("service: failed to create customer")
		return nil, fmt.Errorf("service: failed to create customer: %w", err)
	}
	return c, nil
}

func (s *service) GetCustomer(ctx context.Context, accountID, id uuid.UUID) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, accountID, id)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return nil, ErrCustomerNotFound
		}
		log.Error().Err(err).Stringer("customer_id", id).Msg("service: failed to get customer")
		return nil, fmt.Errorf("service: failed to get customer: %w", err)
	}
	return c, nil
}

func (s *service) ListCustomers(ctx context.Context, accountID uuid.UUID) ([]Customer, error) {
	customers, err := s.repo.List(ctx, accountID)
	if err != nil {
		log.Error().Err(err).Stringer("account_id", accountID).Msg("service: failed to list customers")
		return nil, fmt.Errorf("service: failed to list customers: %w", err)
	}
	return customers, nil
}
