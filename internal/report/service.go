package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/foodtruck-service/internal/order"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidSnapshot = errors.New("invalid profit snapshot request")

// OrderSource lists an account's orders.
type OrderSource interface {
	ListOrders(ctx context.Context, accountID uuid.UUID, filter order.ListFilter) ([]order.Order, error)
}

// ExpenseSource totals supplier spending within [start, end).
type ExpenseSource interface {
	ExpensesBetween(ctx context.Context, accountID uuid.UUID, start, end time.Time) (float64, error)
}

type Dashboard struct {
	Summary      Summary        `json:"summary"`
	TopProducts  []ProductSales `json:"top_products"`
	RecentOrders []order.Order  `json:"recent_orders"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

type SnapshotRequest struct {
	AccountID     uuid.UUID
	Granularity   Granularity
	Label         string
	StartAt       time.Time
	EndAt         time.Time
	OtherExpenses float64
}

type Service interface {
	Dashboard(ctx context.Context, accountID uuid.UUID) (*Dashboard, error)
	TopProducts(ctx context.Context, accountID uuid.UUID, limit int) ([]ProductSales, error)
	CreateProfitSnapshot(ctx context.Context, req SnapshotRequest) (*ProfitSnapshot, error)
	ListProfitSnapshots(ctx context.Context, accountID uuid.UUID) ([]ProfitSnapshot, error)
}

type service struct {
	orders   OrderSource
	expenses ExpenseSource
	repo     Repository
	loc      *time.Location
	now      func() time.Time
}

func NewService(orders OrderSource, expenses ExpenseSource, repo Repository, loc *time.Location) Service {
	if loc == nil {
		loc = time.Local
	}
	return &service{orders: orders, expenses: expenses, repo: repo, loc: loc, now: time.Now}
}

func (s *service) Dashboard(ctx context.Context, accountID uuid.UUID) (*Dashboard, error) {
	var (
		orders []order.Order
		lines  []SoldLine
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orders.ListOrders(gctx, accountID, order.ListFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		lines, err = s.repo.SoldLines(gctx, accountID, nil, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Stringer("account_id", accountID).Msg("service: failed to load dashboard data")
		return nil, fmt.Errorf("service: failed to load dashboard: %w", err)
	}

	now := s.now()
	return &Dashboard{
		Summary:      Summarize(orders, now, s.loc),
		TopProducts:  TopProducts(lines, DefaultTopProducts),
		RecentOrders: RecentOrders(orders, DefaultRecentOrders),
		GeneratedAt:  now.UTC(),
	}, nil
}

func (s *service) TopProducts(ctx context.Context, accountID uuid.UUID, limit int) ([]ProductSales, error) {
	lines, err := s.repo.SoldLines(ctx, accountID, nil, nil)
	if err != nil {
		log.Error().Err(err).Stringer("account_id", accountID).Msg("service: failed to load sold lines")
		return nil, fmt.Errorf("service: failed to load top products: %w", err)
	}
	return TopProducts(lines, limit), nil
}

func (s *service) CreateProfitSnapshot(ctx context.Context, req SnapshotRequest) (*ProfitSnapshot, error) {
	if req.Granularity == "" {
		req.Granularity = GranularityCustom
	}
	if !req.Granularity.Valid() {
		return nil, fmt.Errorf("%w: unknown granularity %q", ErrInvalidSnapshot, req.Granularity)
	}
	if !req.EndAt.After(req.StartAt) {
		return nil, fmt.Errorf("%w: end must be after start", ErrInvalidSnapshot)
	}
	if req.OtherExpenses < 0 {
		return nil, fmt.Errorf("%w: other expenses must be non-negative", ErrInvalidSnapshot)
	}

	var (
		orders   []order.Order
		lines    []SoldLine
		supplies float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orders.ListOrders(gctx, req.AccountID, order.ListFilter{Since: &req.StartAt, Until: &req.EndAt})
		return err
	})
	g.Go(func() error {
		var err error
		lines, err = s.repo.SoldLines(gctx, req.AccountID, &req.StartAt, &req.EndAt)
		return err
	})
	g.Go(func() error {
		var err error
		supplies, err = s.expenses.ExpensesBetween(gctx, req.AccountID, req.StartAt, req.EndAt)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Stringer("account_id", req.AccountID).Msg("service: failed to load profit snapshot data")
		return nil, fmt.Errorf("service: failed to load profit snapshot data: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate snapshot id: %w", err)
	}
	now := s.now().UTC()

	snap := &ProfitSnapshot{
		ID:          id,
		AccountID:   req.AccountID,
		Granularity: req.Granularity,
		Label:       strings.TrimSpace(req.Label),
		StartAt:     req.StartAt.UTC(),
		EndAt:       req.EndAt.UTC(),
		// Supplier spending in the period is added to what the caller reported.
		OtherExpenses:    req.OtherExpenses + supplies,
		SupplierExpenses: supplies,
		GeneratedAt:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	ComputeProfit(snap, orders, lines)

	if err := s.repo.InsertProfitSnapshot(ctx, snap); err != nil {
		log.Error().Err(err).Stringer("account_id", req.AccountID).Msg("service: failed to store profit snapshot")
		return nil, fmt.Errorf("service: failed to store profit snapshot: %w", err)
	}

	log.Info().Stringer("account_id", req.AccountID).Float64("profit", snap.Profit).Msg("service: profit snapshot generated")
	return snap, nil
}

func (s *service) ListProfitSnapshots(ctx context.Context, accountID uuid.UUID) ([]ProfitSnapshot, error) {
	snaps, err := s.repo.ListProfitSnapshots(ctx, accountID)
	if err != nil {
		log.Error().Err(err).Stringer("account_id", accountID).Msg("service: failed to list profit snapshots")
		return nil, fmt.Errorf("service: failed to list profit snapshots: %w", err)
	}
	return snaps, nil
}
