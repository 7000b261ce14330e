package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidProduct        = errors.New("invalid product")
	ErrInvalidInventoryEvent = errors.New("invalid inventory event")
)

type Service interface {
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	UpdateProduct(ctx context.Context, p *Product) (*Product, error)
	GetProduct(ctx context.Context, accountID, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, accountID uuid.UUID, activeOnly bool) ([]Product, error)
	// LookupProducts returns the requested products of the account keyed by id; missing ids are absent.
	LookupProducts(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]Product, error)
	RecordInventoryEvent(ctx context.Context, e *InventoryEvent) (*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validateProduct(p *Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must be non-negative, got %f", ErrInvalidProduct, p.Price)
	}
	if p.Cost != nil && *p.Cost < 0 {
		return fmt.Errorf("%w: cost must be non-negative, got %f", ErrInvalidProduct, *p.Cost)
	}
	if p.PrepTimeSeconds != nil && *p.PrepTimeSeconds < 0 {
		return fmt.Errorf("%w: prep time must be non-negative", ErrInvalidProduct)
	}
	if p.MenuType == "" {
		p.MenuType = MenuFood
	}
	if p.StockUnit == "" {
		p.StockUnit = UnitEach
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	if err := validateProduct(p); err != nil {
		log.Warn().Err(err).Stringer("account_id", p.AccountID).Msg("service: rejected product")
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate product id: %w", err)
	}
	now := time.Now().UTC()
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Stringer("account_id", p.AccountID).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("account_id", p.AccountID).Stringer("product_id", p.ID).Msg("service: product created")
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, p *Product) (*Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	existing, err := s.GetProduct(ctx, p.AccountID, p.ID)
	if err != nil {
		return nil, err
	}
	// Stock only moves through inventory events.
	p.CurrentStock = existing.CurrentStock
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", p.ID).Msg("service: failed to update product")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, accountID, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, accountID, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			log.Warn().Stringer("product_id", id).Msg("service: product not found")
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to get product")
		return nil, fmt.Errorf("service: failed to get product: %w", err)
	}
	return p, nil
}

func (s *service) ListProducts(ctx context.Context, accountID uuid.UUID, activeOnly bool) ([]Product, error) {
	products, err := s.repo.List(ctx, accountID, activeOnly)
	if err != nil {
		log.Error().Err(err).Stringer("account_id", accountID).Msg("service: failed to list products")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, nil
}

func (s *service) LookupProducts(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	result := make(map[uuid.UUID]Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	products, err := s.repo.GetMany(ctx, accountID, ids)
	if err != nil {
		log.Error().Err(err).Stringer("account_id", accountID).Msg("service: failed to look up products")
		return nil, fmt.Errorf("service: failed to look up products: %w", err)
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (s *service) RecordInventoryEvent(ctx context.Context, e *InventoryEvent) (*Product, error) {
	switch e.Type {
	case InventoryPurchase, InventorySale, InventoryWaste, InventoryAdjustment:
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidInventoryEvent, e.Type)
	}
	if e.QuantityDelta == 0 {
		return nil, fmt.Errorf("%w: quantity delta must be non-zero", ErrInvalidInventoryEvent)
	}
	if e.UnitCost != nil && *e.UnitCost < 0 {
		return nil, fmt.Errorf("%w: unit cost must be non-negative", ErrInvalidInventoryEvent)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate inventory event id: %w", err)
	}
	now := time.Now().UTC()
	e.ID = id
	if e.OccurredAt.IsZero() {
		e.OccurredAt = now
	}
	e.CreatedAt = now
	e.UpdatedAt = now

	product, err := s.repo.RecordInventoryEvent(ctx, e)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", e.ProductID).Msg("service: failed to record inventory event")
		return nil, fmt.Errorf("service: failed to record inventory event: %w", err)
	}

	log.Info().Stringer("product_id", e.ProductID).Str("type", string(e.Type)).Float64("delta", e.QuantityDelta).Msg("service: inventory event recorded")
	return product, nil
}
