package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chikondi-pos/models"
)

func TestCreateProduct(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	t.Run("defaults are applied", func(t *testing.T) {
		id, err := repo.CreateProduct(&models.Product{
			Name:     "Cooking Oil 500ml",
			Price:    1200,
			Quantity: 20,
		})
		require.NoError(t, err)

		p, err := repo.GetProduct(id)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultLowStockAlert, p.LowStockAlert)
		assert.False(t, p.Synced)
		assert.NotZero(t, p.CreatedAt)
		assert.Zero(t, p.UpdatedAt)
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		_, err := repo.CreateProduct(&models.Product{Price: 100})
		assert.Error(t, err)
	})

	t.Run("negative price is rejected", func(t *testing.T) {
		_, err := repo.CreateProduct(&models.Product{Name: "Bad", Price: -1})
		assert.Error(t, err)
	})
}

func TestUpdateProduct(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	id, err := repo.CreateProduct(&models.Product{
		Name:     "Rice 2kg",
		Price:    3500,
		Quantity: 15,
		Category: "staples",
	})
	require.NoError(t, err)

	// Mark synced to verify the update flips it back
	require.NoError(t, repo.MarkSynced("inventory", id))

	t.Run("partial update only touches given fields", func(t *testing.T) {
		newPrice := 3800.0
		p, err := repo.UpdateProduct(id, models.ProductUpdate{Price: &newPrice})
		require.NoError(t, err)

		assert.Equal(t, 3800.0, p.Price)
		assert.Equal(t, "Rice 2kg", p.Name)
		assert.Equal(t, 15, p.Quantity)
		assert.Equal(t, "staples", p.Category)
		assert.False(t, p.Synced)
		assert.NotZero(t, p.UpdatedAt)
	})

	t.Run("missing id returns not found", func(t *testing.T) {
		name := "Ghost"
		_, err := repo.UpdateProduct(99999, models.ProductUpdate{Name: &name})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("merge cannot violate validation", func(t *testing.T) {
		neg := -10.0
		_, err := repo.UpdateProduct(id, models.ProductUpdate{Price: &neg})
		assert.Error(t, err)

		p, err := repo.GetProduct(id)
		require.NoError(t, err)
		assert.Equal(t, 3800.0, p.Price)
	})
}

func TestAdjustStock(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	id, err := repo.CreateProduct(&models.Product{Name: "Salt", Price: 300, Quantity: 3})
	require.NoError(t, err)

	p, err := repo.AdjustStock(id, -2)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Quantity)

	// Never below zero
	p, err = repo.AdjustStock(id, -10)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Quantity)
}

func TestDeleteProduct(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	id, err := repo.CreateProduct(&models.Product{Name: "Soap", Price: 700, Quantity: 10})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteProduct(id))
	assert.ErrorIs(t, repo.DeleteProduct(id), ErrNotFound)
}
