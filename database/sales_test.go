package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chikondi-pos/models"
)

func TestCreateSale(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	t.Run("new sale starts unsynced with a timestamp", func(t *testing.T) {
		sale := &models.Sale{
			ProductName: "Sugar 1kg",
			Quantity:    2,
			Total:       1700,
			Items: []models.SaleItem{
				{Name: "Sugar 1kg", Quantity: 2, Price: 850, Total: 1700},
			},
		}

		id, err := repo.CreateSale(sale)
		require.NoError(t, err)
		assert.Greater(t, id, int64(0))

		got, err := repo.GetSale(id)
		require.NoError(t, err)
		assert.False(t, got.Synced)
		assert.NotZero(t, got.Timestamp)
		assert.Len(t, got.Items, 1)
		assert.Equal(t, "Sugar 1kg", got.Items[0].Name)
	})

	t.Run("negative total is rejected", func(t *testing.T) {
		before, err := repo.ListSales()
		require.NoError(t, err)

		_, err = repo.CreateSale(&models.Sale{Total: -5})
		assert.Error(t, err)

		after, err := repo.ListSales()
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})
}

func TestGetSalesByDateRange(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	base := models.Millis(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	timestamps := []int64{base - 1000, base, base + 500, base + 1000, base + 1001}
	for _, ts := range timestamps {
		_, err := repo.CreateSale(&models.Sale{Total: 100, Timestamp: ts})
		require.NoError(t, err)
	}

	t.Run("bounds are inclusive", func(t *testing.T) {
		sales, err := repo.GetSalesByDateRange(base, base+1000)
		require.NoError(t, err)
		require.Len(t, sales, 3)
		assert.Equal(t, base, sales[0].Timestamp)
		assert.Equal(t, base+1000, sales[2].Timestamp)
	})

	t.Run("results ordered by timestamp", func(t *testing.T) {
		sales, err := repo.GetSalesByDateRange(0, base+9999)
		require.NoError(t, err)
		require.Len(t, sales, 5)
		for i := 1; i < len(sales); i++ {
			assert.LessOrEqual(t, sales[i-1].Timestamp, sales[i].Timestamp)
		}
	})

	t.Run("empty range returns nothing", func(t *testing.T) {
		sales, err := repo.GetSalesByDateRange(base+5000, base+6000)
		require.NoError(t, err)
		assert.Empty(t, sales)
	})
}

func TestDeleteSale(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	id, err := repo.CreateSale(&models.Sale{Total: 250})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteSale(id))

	_, err = repo.GetSale(id)
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.DeleteSale(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetSalesByCustomer(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	custID, err := repo.CreateCustomer(&models.Customer{Name: "Chisomo"})
	require.NoError(t, err)

	_, err = repo.CreateSale(&models.Sale{Total: 100, CustomerID: custID})
	require.NoError(t, err)
	_, err = repo.CreateSale(&models.Sale{Total: 200})
	require.NoError(t, err)

	sales, err := repo.GetSalesByCustomer(custID)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, float64(100), sales[0].Total)
}
