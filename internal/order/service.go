package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/lucsky/cuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/foodtruck-service/internal/catalog"
	"github.com/vasiliy-maslov/foodtruck-service/internal/customer"
	"github.com/vasiliy-maslov/foodtruck-service/internal/events"
	"github.com/vasiliy-maslov/foodtruck-service/internal/location"
)

var (
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrInvalidItem     = errors.New("invalid order item")
	ErrProductNotFound = errors.New("product not found in this account's menu")
	ErrProductInactive = errors.New("product is not available")
	ErrUnknownCustomer = errors.New("customer does not belong to this account")
	ErrUnknownLocation = errors.New("location does not belong to this account")
	ErrInvalidFilter   = errors.New("invalid order filter")
)

const defaultCurrency = "USD"

// ProductLookup resolves catalog products for an account.
type ProductLookup interface {
	LookupProducts(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]catalog.Product, error)
}

type CustomerLookup interface {
	GetCustomer(ctx context.Context, accountID, id uuid.UUID) (*customer.Customer, error)
}

type LocationLookup interface {
	GetLocation(ctx context.Context, accountID, id uuid.UUID) (*location.Location, error)
}

type Service interface {
	CreateOrder(ctx context.Context, input CreateInput) (*Order, error)
	// ValidateItems runs the item checks of CreateOrder without writing anything.
	ValidateItems(ctx context.Context, accountID uuid.UUID, items []ItemInput) error
	GetOrder(ctx context.Context, accountID, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Order, error)
	ListLineItems(ctx context.Context, accountID, orderID uuid.UUID) ([]LineItem, error)
	// AdvanceStatus moves the order to target, or to the next stage when target is empty.
	AdvanceStatus(ctx context.Context, accountID, orderID uuid.UUID, target Status) (*Order, error)
}

type service struct {
	orderRepo Repository
	products  ProductLookup
	customers CustomerLookup
	locations LocationLookup
	publisher events.Publisher
}

func NewService(orderRepo Repository, products ProductLookup, customers CustomerLookup, locations LocationLookup, publisher events.Publisher) Service {
	return &service{
		orderRepo: orderRepo,
		products:  products,
		customers: customers,
		locations: locations,
		publisher: publisher,
	}
}

// positiveItems drops lines with a zero or negative quantity.
func positiveItems(items []ItemInput) []ItemInput {
	kept := make([]ItemInput, 0, len(items))
	for _, item := range items {
		if item.Quantity > 0 {
			kept = append(kept, item)
		}
	}
	return kept
}

func newPickupCode() string {
	return strings.ToUpper(cuid.Slug())
}

// resolveItems drops non-positive lines and checks the rest against the account's menu.
func (s *service) resolveItems(ctx context.Context, accountID uuid.UUID, input []ItemInput) ([]ItemInput, map[uuid.UUID]catalog.Product, error) {
	items := positiveItems(input)
	if len(items) == 0 {
		log.Warn().Stringer("account_id", accountID).Msg("service: attempt to create order with no items")
		return nil, nil, ErrEmptyOrder
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, nil, fmt.Errorf("%w: product id cannot be nil", ErrInvalidItem)
		}
		if item.UnitPrice != nil && *item.UnitPrice < 0 {
			return nil, nil, fmt.Errorf("%w: unit price for product %s cannot be negative", ErrInvalidItem, item.ProductID)
		}
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.LookupProducts(ctx, accountID, ids)
	if err != nil {
		log.Error().Err(err).Stringer("account_id", accountID).Msg("service: failed to look up products for order")
		return nil, nil, fmt.Errorf("service: failed to look up products: %w", err)
	}

	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			log.Warn().Stringer("account_id", accountID).Stringer("product_id", item.ProductID).Msg("service: order references unknown product")
			return nil, nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
		if !product.IsActive {
			return nil, nil, fmt.Errorf("%w: %s", ErrProductInactive, product.Name)
		}
	}
	return items, products, nil
}

func (s *service) ValidateItems(ctx context.Context, accountID uuid.UUID, items []ItemInput) error {
	_, _, err := s.resolveItems(ctx, accountID, items)
	return err
}

// checkReferences makes sure the customer and location named by an order belong to its account.
func (s *service) checkReferences(ctx context.Context, input CreateInput) error {
	if input.CustomerID != nil {
		if _, err := s.customers.GetCustomer(ctx, input.AccountID, *input.CustomerID); err != nil {
			if errors.Is(err, customer.ErrCustomerNotFound) {
				return fmt.Errorf("%w: %s", ErrUnknownCustomer, *input.CustomerID)
			}
			return fmt.Errorf("service: failed to look up customer: %w", err)
		}
	}
	if input.LocationID != nil {
		if _, err := s.locations.GetLocation(ctx, input.AccountID, *input.LocationID); err != nil {
			if errors.Is(err, location.ErrLocationNotFound) {
				return fmt.Errorf("%w: %s", ErrUnknownLocation, *input.LocationID)
			}
			return fmt.Errorf("service: failed to look up location: %w", err)
		}
	}
	return nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateInput) (*Order, error) {
	channel := input.Channel
	if channel == "" {
		channel = ChannelWebForm
	}
	if !channel.Valid() {
		return nil, fmt.Errorf("%w: unknown channel %q", ErrInvalidItem, channel)
	}

	items, products, err := s.resolveItems(ctx, input.AccountID, input.Items)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, input); err != nil {
		log.Warn().Err(err).Stringer("account_id", input.AccountID).Msg("service: order references rejected")
		return nil, err
	}

	orderID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order id: %w", err)
	}
	now := time.Now().UTC()

	o := &Order{
		ID:            orderID,
		AccountID:     input.AccountID,
		CustomerID:    input.CustomerID,
		LocationID:    input.LocationID,
		Channel:       channel,
		Status:        StatusPending,
		PickupCode:    newPickupCode(),
		PlacedAt:      now,
		Currency:      defaultCurrency,
		PaymentStatus: PaymentUnpaid,
		PaymentMethod: input.PaymentMethod,
		Notes:         strings.TrimSpace(input.Notes),
		LineItems:     make([]LineItem, 0, len(items)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var prepEstimate *int
	for i, item := range items {
		product := products[item.ProductID]
		unitPrice := product.Price
		if item.UnitPrice != nil {
			unitPrice = *item.UnitPrice
		}

		if product.PrepTimeSeconds != nil && (prepEstimate == nil || *product.PrepTimeSeconds > *prepEstimate) {
			v := *product.PrepTimeSeconds
			prepEstimate = &v
		}

		itemID, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("service: failed to generate line item id: %w", err)
		}

		line := LineItem{
			ID:                  itemID,
			OrderID:             orderID,
			AccountID:           input.AccountID,
			ProductID:           item.ProductID,
			LineNumber:          i + 1,
			Quantity:            item.Quantity,
			UnitPrice:           unitPrice,
			LineSubtotal:        float64(item.Quantity) * unitPrice,
			Status:              ItemPending,
			SpecialInstructions: strings.TrimSpace(item.SpecialInstructions),
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		o.SubtotalAmount += line.LineSubtotal
		o.LineItems = append(o.LineItems, line)
	}

	o.PrepTimeEstimateSeconds = prepEstimate
	o.TotalAmount = o.SubtotalAmount - o.DiscountAmount + o.TaxAmount

	if err := s.orderRepo.CreateOrder(ctx, o); err != nil {
		log.Error().Err(err).Stringer("account_id", o.AccountID).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Stringer("order_id", o.ID).Stringer("account_id", o.AccountID).Float64("total", o.TotalAmount).Msg("service: order created successfully")

	s.publish(ctx, events.Event{
		Type:        events.TypeOrderCreated,
		AccountID:   o.AccountID,
		OrderID:     o.ID,
		Status:      o.Status.String(),
		TotalAmount: o.TotalAmount,
		OccurredAt:  now,
		Data:        o,
	})

	return o, nil
}

func (s *service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("event_type", event.Type).Stringer("order_id", event.OrderID).Msg("service: failed to publish order event")
	}
}

func (s *service) GetOrder(ctx context.Context, accountID, id uuid.UUID) (*Order, error) {
	o, err := s.orderRepo.GetOrderByID(ctx, accountID, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, filter.Status)
	}

	orders, err := s.orderRepo.ListOrders(ctx, accountID, filter)
	if err != nil {
		log.Error().Err(err).Stringer("account_id", accountID).Msg("service: failed to fetch account orders in repository")
		return nil, fmt.Errorf("service: failed to fetch account orders: %w", err)
	}
	return orders, nil
}

func (s *service) ListLineItems(ctx context.Context, accountID, orderID uuid.UUID) ([]LineItem, error) {
	if _, err := s.GetOrder(ctx, accountID, orderID); err != nil {
		return nil, err
	}

	items, err := s.orderRepo.ListLineItems(ctx, accountID, orderID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch line items in repository")
		return nil, fmt.Errorf("service: failed to fetch line items: %w", err)
	}
	return items, nil
}

func (s *service) AdvanceStatus(ctx context.Context, accountID, orderID uuid.UUID, target Status) (*Order, error) {
	current, err := s.GetOrder(ctx, accountID, orderID)
	if err != nil {
		return nil, err
	}

	next, err := ResolveTransition(current.Status, target)
	if err != nil {
		log.Warn().Err(err).
			Stringer("order_id", orderID).
			Stringer("current_status", current.Status).
			Stringer("new_status", target).
			Msg("service: invalid status transition attempt")
		return nil, err
	}

	if next == current.Status {
		log.Info().Stringer("order_id", orderID).Stringer("status", next).Msg("service: order status is already the same, no update needed")
		return current, nil
	}

	previous := current.Status
	applyTransition(current, next, time.Now().UTC())

	if err := s.orderRepo.UpdateStatus(ctx, current, previous); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return nil, ErrStatusConflict
		}
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", next).Msg("service: failed to update order status in repository")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Stringer("old_status", previous).Stringer("new_status", next).Msg("service: order status updated successfully")

	s.publish(ctx, events.Event{
		Type:           events.TypeOrderStatusChanged,
		AccountID:      current.AccountID,
		OrderID:        current.ID,
		Status:         next.String(),
		PreviousStatus: previous.String(),
		TotalAmount:    current.TotalAmount,
		OccurredAt:     current.UpdatedAt,
		Data:           current,
	})

	return current, nil
}
