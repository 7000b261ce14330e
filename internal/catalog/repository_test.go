package catalog_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/foodtruck-service/internal/catalog"
	"github.com/vasiliy-maslov/foodtruck-service/internal/db"
	"github.com/vasiliy-maslov/foodtruck-service/internal/db/dbtest"
)

var testDB *db.Postgres

func TestMain(m *testing.M) {
	testDB = dbtest.Connect()

	exitCode := m.Run()

	if testDB != nil {
		testDB.Close()
	}
	os.Exit(exitCode)
}

func createAccount(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.Must(uuid.NewV4())
	_, err := testDB.Pool.Exec(context.Background(),
		`INSERT INTO foodtruck.accounts (id, name, created_at, updated_at) VALUES ($1, 'Test Truck', now(), now())`, id)
	require.NoError(t, err)
	return id
}

func newProduct(accountID uuid.UUID, name, category string, active bool) *catalog.Product {
	now := time.Now().UTC()
	return &catalog.Product{
		ID:        uuid.Must(uuid.NewV4()),
		AccountID: accountID,
		Name:      name,
		Category:  category,
		MenuType:  catalog.MenuFood,
		IsActive:  active,
		Price:     4.5,
		StockUnit: catalog.UnitEach,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRepository_ListOrdersByCategoryAndFiltersInactive(t *testing.T) {
	dbtest.Require(t, testDB)
	repo := catalog.NewRepository(testDB.Pool)
	t.Cleanup(func() { dbtest.Truncate(t, testDB.Pool) })

	accountID := createAccount(t)
	for _, p := range []*catalog.Product{
		newProduct(accountID, "Taco", "mains", true),
		newProduct(accountID, "Agua Fresca", "drinks", true),
		newProduct(accountID, "Old Special", "mains", false),
	} {
		require.NoError(t, repo.Create(context.Background(), p))
	}

	all, err := repo.List(context.Background(), accountID, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Agua Fresca", all[0].Name)

	active, err := repo.List(context.Background(), accountID, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestRepository_RecordInventoryEvent_AdjustsStock(t *testing.T) {
	dbtest.Require(t, testDB)
	repo := catalog.NewRepository(testDB.Pool)
	t.Cleanup(func() { dbtest.Truncate(t, testDB.Pool) })

	accountID := createAccount(t)
	p := newProduct(accountID, "Taco", "mains", true)
	require.NoError(t, repo.Create(context.Background(), p))

	now := time.Now().UTC()
	for _, delta := range []float64{20, -3} {
		_, err := repo.RecordInventoryEvent(context.Background(), &catalog.InventoryEvent{
			ID:            uuid.Must(uuid.NewV4()),
			AccountID:     accountID,
			ProductID:     p.ID,
			Type:          catalog.InventoryAdjustment,
			QuantityDelta: delta,
			OccurredAt:    now,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		require.NoError(t, err)
	}

	stored, err := repo.GetByID(context.Background(), accountID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CurrentStock)
	assert.Equal(t, 17.0, *stored.CurrentStock)

	_, err = repo.RecordInventoryEvent(context.Background(), &catalog.InventoryEvent{
		ID: uuid.Must(uuid.NewV4()), AccountID: accountID, ProductID: uuid.Must(uuid.NewV4()),
		Type: catalog.InventoryWaste, QuantityDelta: -1, OccurredAt: now, CreatedAt: now, UpdatedAt: now,
	})
	require.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestRepository_GetMany(t *testing.T) {
	dbtest.Require(t, testDB)
	repo := catalog.NewRepository(testDB.Pool)
	t.Cleanup(func() { dbtest.Truncate(t, testDB.Pool) })

	accountID := createAccount(t)
	a := newProduct(accountID, "A", "", true)
	b := newProduct(accountID, "B", "", true)
	require.NoError(t, repo.Create(context.Background(), a))
	require.NoError(t, repo.Create(context.Background(), b))

	found, err := repo.GetMany(context.Background(), accountID, []uuid.UUID{a.ID, uuid.Must(uuid.NewV4())})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)

	_, err = repo.GetByID(context.Background(), uuid.Must(uuid.NewV4()), a.ID)
	require.ErrorIs(t, err, catalog.ErrProductNotFound)
}
