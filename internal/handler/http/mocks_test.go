package http_test

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/vasiliy-maslov/foodtruck-service/internal/account"
	"github.com/vasiliy-maslov/foodtruck-service/internal/auth"
	"github.com/vasiliy-maslov/foodtruck-service/internal/catalog"
	"github.com/vasiliy-maslov/foodtruck-service/internal/customer"
	"github.com/vasiliy-maslov/foodtruck-service/internal/location"
	"github.com/vasiliy-maslov/foodtruck-service/internal/message"
	"github.com/vasiliy-maslov/foodtruck-service/internal/order"
	"github.com/vasiliy-maslov/foodtruck-service/internal/report"
	"github.com/vasiliy-maslov/foodtruck-service/internal/supplier"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) SignIn(ctx context.Context, identity auth.Identity, req account.SignInRequest) (*account.Session, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Session), args.Error(1)
}

func (m *MockAccountService) CurrentSession(ctx context.Context, uid string) (*account.Session, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Session), args.Error(1)
}

func (m *MockAccountService) Authorize(ctx context.Context, uid string, accountID uuid.UUID) (account.Role, error) {
	args := m.Called(ctx, uid, accountID)
	return args.Get(0).(account.Role), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, caller account.Role, id uuid.UUID, patch account.AccountPatch) (*account.Account, error) {
	args := m.Called(ctx, caller, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) ListUsers(ctx context.Context, accountID uuid.UUID) ([]account.User, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.User), args.Error(1)
}

func (m *MockAccountService) AddUser(ctx context.Context, caller account.Role, user *account.User) (*account.User, error) {
	args := m.Called(ctx, caller, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.User), args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, p *catalog.Product) (*catalog.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockCatalogService) UpdateProduct(ctx context.Context, p *catalog.Product) (*catalog.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, accountID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, accountID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockCatalogService) ListProducts(ctx context.Context, accountID uuid.UUID, activeOnly bool) ([]catalog.Product, error) {
	args := m.Called(ctx, accountID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockCatalogService) LookupProducts(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]catalog.Product, error) {
	args := m.Called(ctx, accountID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]catalog.Product), args.Error(1)
}

func (m *MockCatalogService) RecordInventoryEvent(ctx context.Context, e *catalog.InventoryEvent) (*catalog.Product, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, accountID, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, accountID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) ListCustomers(ctx context.Context, accountID uuid.UUID) ([]customer.Customer, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]customer.Customer), args.Error(1)
}

type MockLocationService struct {
	mock.Mock
}

func (m *MockLocationService) CreateLocation(ctx context.Context, l *location.Location) (*location.Location, error) {
	args := m.Called(ctx, l)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*location.Location), args.Error(1)
}

func (m *MockLocationService) ListLocations(ctx context.Context, accountID uuid.UUID) ([]location.Location, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]location.Location), args.Error(1)
}

func (m *MockLocationService) GetLocation(ctx context.Context, accountID, id uuid.UUID) (*location.Location, error) {
	args := m.Called(ctx, accountID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*location.Location), args.Error(1)
}

func (m *MockLocationService) RecordPing(ctx context.Context, p *location.Ping) (*location.Ping, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*location.Ping), args.Error(1)
}

func (m *MockLocationService) ListPublicTrucks(ctx context.Context, coords *location.Coords, city string) ([]location.PublicTruck, error) {
	args := m.Called(ctx, coords, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]location.PublicTruck), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, input order.CreateInput) (*order.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ValidateItems(ctx context.Context, accountID uuid.UUID, items []order.ItemInput) error {
	return m.Called(ctx, accountID, items).Error(0)
}

func (m *MockOrderService) GetOrder(ctx context.Context, accountID, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, accountID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, accountID uuid.UUID, filter order.ListFilter) ([]order.Order, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) ListLineItems(ctx context.Context, accountID, orderID uuid.UUID) ([]order.LineItem, error) {
	args := m.Called(ctx, accountID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.LineItem), args.Error(1)
}

func (m *MockOrderService) AdvanceStatus(ctx context.Context, accountID, orderID uuid.UUID, target order.Status) (*order.Order, error) {
	args := m.Called(ctx, accountID, orderID, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Dashboard(ctx context.Context, accountID uuid.UUID) (*report.Dashboard, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Dashboard), args.Error(1)
}

func (m *MockReportService) TopProducts(ctx context.Context, accountID uuid.UUID, limit int) ([]report.ProductSales, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.ProductSales), args.Error(1)
}

func (m *MockReportService) CreateProfitSnapshot(ctx context.Context, req report.SnapshotRequest) (*report.ProfitSnapshot, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.ProfitSnapshot), args.Error(1)
}

func (m *MockReportService) ListProfitSnapshots(ctx context.Context, accountID uuid.UUID) ([]report.ProfitSnapshot, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.ProfitSnapshot), args.Error(1)
}

type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) QueueMessage(ctx context.Context, msg *message.Message) (*message.Message, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*message.Message), args.Error(1)
}

func (m *MockMessageService) ListMessages(ctx context.Context, accountID uuid.UUID, filter message.ListFilter) ([]message.Message, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]message.Message), args.Error(1)
}

type MockSupplierService struct {
	mock.Mock
}

func (m *MockSupplierService) RecordTransaction(ctx context.Context, t *supplier.Transaction) (*supplier.Transaction, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supplier.Transaction), args.Error(1)
}

func (m *MockSupplierService) ListTransactions(ctx context.Context, accountID uuid.UUID, filter supplier.ListFilter) ([]supplier.Transaction, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]supplier.Transaction), args.Error(1)
}

func (m *MockSupplierService) ExpensesBetween(ctx context.Context, accountID uuid.UUID, start, end time.Time) (float64, error) {
	args := m.Called(ctx, accountID, start, end)
	return args.Get(0).(float64), args.Error(1)
}
