package supplier_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/foodtruck-service/internal/supplier"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, t *supplier.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockRepository) List(ctx context.Context, accountID uuid.UUID, filter supplier.ListFilter) ([]supplier.Transaction, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]supplier.Transaction), args.Error(1)
}

func (m *MockRepository) SumBetween(ctx context.Context, accountID uuid.UUID, start, end time.Time) (float64, error) {
	args := m.Called(ctx, accountID, start, end)
	return args.Get(0).(float64), args.Error(1)
}

func TestService_RecordTransaction(t *testing.T) {
	accountID := uuid.Must(uuid.NewV4())

	t.Run("defaults", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := supplier.NewService(mockRepo)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*supplier.Transaction")).Return(nil).Once()

		got, err := svc.RecordTransaction(context.Background(), &supplier.Transaction{
			AccountID: accountID, SupplierName: "  Restaurant Depot ", TotalAmount: 182.4, Currency: "usd",
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, got.ID)
		assert.Equal(t, "Restaurant Depot", got.SupplierName)
		assert.Equal(t, supplier.TypeInventory, got.TransactionType)
		assert.Equal(t, "USD", got.Currency)
		assert.False(t, got.TransactionDate.IsZero())
		mockRepo.AssertExpectations(t)
	})

	rejections := []struct {
		name string
		tx   supplier.Transaction
	}{
		{"missing_supplier", supplier.Transaction{AccountID: accountID, TotalAmount: 10}},
		{"negative_total", supplier.Transaction{AccountID: accountID, SupplierName: "Sysco", TotalAmount: -1}},
		{"unknown_type", supplier.Transaction{AccountID: accountID, SupplierName: "Sysco", TransactionType: "bribes"}},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			svc := supplier.NewService(mockRepo)

			tx := tt.tx
			_, err := svc.RecordTransaction(context.Background(), &tx)

			require.ErrorIs(t, err, supplier.ErrInvalidTransaction)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_ExpensesBetween(t *testing.T) {
	accountID := uuid.Must(uuid.NewV4())
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	mockRepo := new(MockRepository)
	svc := supplier.NewService(mockRepo)
	mockRepo.On("SumBetween", mock.Anything, accountID, start, end).Return(240.5, nil).Once()

	total, err := svc.ExpensesBetween(context.Background(), accountID, start, end)
	require.NoError(t, err)
	assert.InDelta(t, 240.5, total, 1e-9)

	mockRepo.On("SumBetween", mock.Anything, accountID, start, end).Return(0.0, errors.New("conn reset")).Once()
	_, err = svc.ExpensesBetween(context.Background(), accountID, start, end)
	assert.Error(t, err)
}
