package database

import (
	"fmt"

	"chikondi-pos/models"
)

// GetUnsyncedData collects every record still flagged unsynced, grouped by
// collection. Within a collection records come back in insertion order so
// the server sees them in the order they happened.
func (r *Repository) GetUnsyncedData() (*models.SyncBatch, error) {
	batch := &models.SyncBatch{}

	rows, err := r.db.Query(`
		SELECT id, product_id, product_name, customer_id, quantity,
		       amount, total, payment_method, items, timestamp, synced
		FROM sales WHERE synced = 0 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("unsynced sales: %w", err)
	}
	batch.Sales, err = collectSales(rows)
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("unsynced sales: %w", err)
	}

	rows, err = r.db.Query(`
		SELECT id, name, price, quantity, low_stock_alert,
		       category, created_at, updated_at, synced
		FROM inventory WHERE synced = 0 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("unsynced inventory: %w", err)
	}
	batch.Inventory, err = collectProducts(rows)
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("unsynced inventory: %w", err)
	}

	rows, err = r.db.Query(`
		SELECT id, description, amount, category, timestamp, synced
		FROM expenses WHERE synced = 0 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("unsynced expenses: %w", err)
	}
	batch.Expenses, err = collectExpenses(rows)
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("unsynced expenses: %w", err)
	}

	rows, err = r.db.Query(selectCustomer + ` WHERE synced = 0 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("unsynced customers: %w", err)
	}
	batch.Customers, err = collectCustomers(rows)
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("unsynced customers: %w", err)
	}

	return batch, nil
}

// MarkSynced flips one record's synced flag after the server confirmed it.
// Unknown collections and missing ids return ErrNotFound.
func (r *Repository) MarkSynced(collection string, id int64) error {
	table, ok := syncTables[collection]
	if !ok {
		return fmt.Errorf("%w: collection %q", ErrNotFound, collection)
	}

	res, err := r.db.Exec(fmt.Sprintf(`UPDATE %s SET synced = 1 WHERE id = ?`, table), id)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", ErrNotFound, collection, id)
	}
	return nil
}

// CountUnsynced reports how many records still await sync across all
// collections.
func (r *Repository) CountUnsynced() (int, error) {
	var total int
	for _, table := range syncTables {
		var n int
		err := r.db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE synced = 0`, table)).Scan(&n)
		if err != nil {
			return 0, fmt.Errorf("count unsynced: %w", err)
		}
		total += n
	}
	return total, nil
}

// syncTables maps wire collection names to their tables. The user singleton
// never syncs; it stays on the device.
var syncTables = map[string]string{
	"sales":     "sales",
	"inventory": "inventory",
	"expenses":  "expenses",
	"customers": "customers",
}
