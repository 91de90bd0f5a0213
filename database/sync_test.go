package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chikondi-pos/models"
)

func TestGetUnsyncedData(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	t.Run("empty store yields empty batch", func(t *testing.T) {
		batch, err := repo.GetUnsyncedData()
		require.NoError(t, err)
		assert.True(t, batch.Empty())
	})

	saleID, err := repo.CreateSale(&models.Sale{Total: 100})
	require.NoError(t, err)
	productID, err := repo.CreateProduct(&models.Product{Name: "Bread", Price: 900, Quantity: 8})
	require.NoError(t, err)
	expenseID, err := repo.CreateExpense(&models.Expense{Description: "transport", Amount: 1500})
	require.NoError(t, err)
	customerID, err := repo.CreateCustomer(&models.Customer{Name: "Dalitso"})
	require.NoError(t, err)

	t.Run("every new record appears in the batch", func(t *testing.T) {
		batch, err := repo.GetUnsyncedData()
		require.NoError(t, err)
		assert.Len(t, batch.Sales, 1)
		assert.Len(t, batch.Inventory, 1)
		assert.Len(t, batch.Expenses, 1)
		assert.Len(t, batch.Customers, 1)
	})

	t.Run("marked records drop out of the batch", func(t *testing.T) {
		require.NoError(t, repo.MarkSynced("sales", saleID))
		require.NoError(t, repo.MarkSynced("inventory", productID))

		batch, err := repo.GetUnsyncedData()
		require.NoError(t, err)
		assert.Empty(t, batch.Sales)
		assert.Empty(t, batch.Inventory)
		assert.Len(t, batch.Expenses, 1)
		assert.Len(t, batch.Customers, 1)

		sale, err := repo.GetSale(saleID)
		require.NoError(t, err)
		assert.True(t, sale.Synced)
	})

	t.Run("count tracks the remaining records", func(t *testing.T) {
		n, err := repo.CountUnsynced()
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		require.NoError(t, repo.MarkSynced("expenses", expenseID))
		require.NoError(t, repo.MarkSynced("customers", customerID))

		n, err = repo.CountUnsynced()
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestMarkSynced(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	t.Run("unknown collection", func(t *testing.T) {
		err := repo.MarkSynced("users", 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing id", func(t *testing.T) {
		err := repo.MarkSynced("sales", 31337)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateFlipsSyncedFlag(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	id, err := repo.CreateProduct(&models.Product{Name: "Matches", Price: 200, Quantity: 50})
	require.NoError(t, err)
	require.NoError(t, repo.MarkSynced("inventory", id))

	qty := 45
	_, err = repo.UpdateProduct(id, models.ProductUpdate{Quantity: &qty})
	require.NoError(t, err)

	batch, err := repo.GetUnsyncedData()
	require.NoError(t, err)
	require.Len(t, batch.Inventory, 1)
	assert.Equal(t, id, batch.Inventory[0].ID)
}
