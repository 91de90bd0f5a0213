package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chikondi-pos/models"
	"chikondi-pos/reports"
	"chikondi-pos/session"
)

func TestFullOfflineFlow(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "app-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"synced":{"sales":1,"inventory":1,"expenses":1,"customers":1}}`))
	}))
	defer backend.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	a, err := New(filepath.Join(tmpDir, "pos.db"), tmpDir, backend.URL, time.Hour, logger)
	require.NoError(t, err)
	defer a.Close()

	// First run: nobody is set up yet
	state, err := a.Session.CurrentState()
	require.NoError(t, err)
	require.Equal(t, session.StateNewUser, state)

	_, err = a.Session.Setup("Chikondi Shop", "4729", "MWK")
	require.NoError(t, err)

	// A day of trading, all offline
	productID, err := a.Repo.CreateProduct(&models.Product{Name: "Sugar 1kg", Price: 850, Quantity: 30})
	require.NoError(t, err)

	customerID, err := a.Repo.CreateCustomer(&models.Customer{Name: "Chisomo"})
	require.NoError(t, err)

	_, err = a.Repo.CreateSale(&models.Sale{
		ProductID:  productID,
		CustomerID: customerID,
		Quantity:   2,
		Total:      1700,
		Items:      []models.SaleItem{{Name: "Sugar 1kg", Quantity: 2, Price: 850, Total: 1700}},
	})
	require.NoError(t, err)

	_, err = a.Repo.AdjustStock(productID, -2)
	require.NoError(t, err)

	_, err = a.Repo.RecordCustomerPurchase(customerID, 1700, time.Now())
	require.NoError(t, err)

	_, err = a.Repo.CreateExpense(&models.Expense{Description: "minibus fare", Amount: 500})
	require.NoError(t, err)

	// Reports come straight off the local store
	sales, err := a.Repo.ListSales()
	require.NoError(t, err)
	expenses, err := a.Repo.ListExpenses()
	require.NoError(t, err)
	products, err := a.Repo.ListProducts()
	require.NoError(t, err)

	stats := reports.ComputeTodayStats(sales, expenses, products, time.Now())
	assert.Equal(t, 1700.0, stats.SalesTotal)
	assert.Equal(t, 500.0, stats.ExpensesTotal)
	assert.Equal(t, 1200.0, stats.Profit)

	// Connectivity returns: one sync pass clears the backlog
	n, err := a.Repo.CountUnsynced()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = a.Syncer.SyncNow(context.Background())
	require.NoError(t, err)

	n, err = a.Repo.CountUnsynced()
	require.NoError(t, err)
	assert.Zero(t, n)
}
