package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chikondi-pos/models"
)

// CreateSale records a completed transaction. The record always starts
// unsynced; the timestamp defaults to now when the caller left it zero and is
// immutable afterwards.
func (r *Repository) CreateSale(s *models.Sale) (int64, error) {
	if err := r.validate.Validate(s); err != nil {
		return 0, err
	}

	if s.Timestamp == 0 {
		s.Timestamp = models.Millis(time.Now())
	}
	s.Synced = false

	items, err := marshalJSON(s.Items)
	if err != nil {
		return 0, fmt.Errorf("create sale: encode items: %w", err)
	}

	res, err := r.db.Exec(`
		INSERT INTO sales (product_id, product_name, customer_id, quantity,
		                   amount, total, payment_method, items, timestamp, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		s.ProductID, s.ProductName, s.CustomerID, s.Quantity,
		s.Amount, s.Total, s.PaymentMethod, items, s.Timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("create sale: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create sale: %w", err)
	}
	s.ID = id
	return id, nil
}

// GetSale fetches a single sale by id.
func (r *Repository) GetSale(id int64) (*models.Sale, error) {
	row := r.db.QueryRow(`
		SELECT id, product_id, product_name, customer_id, quantity,
		       amount, total, payment_method, items, timestamp, synced
		FROM sales WHERE id = ?`, id)

	s, err := scanSale(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: sale %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// ListSales returns every sale ordered by timestamp ascending.
func (r *Repository) ListSales() ([]models.Sale, error) {
	rows, err := r.db.Query(`
		SELECT id, product_id, product_name, customer_id, quantity,
		       amount, total, payment_method, items, timestamp, synced
		FROM sales ORDER BY timestamp ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	return collectSales(rows)
}

// GetSalesByDateRange returns sales with from <= timestamp <= to, ordered by
// timestamp ascending. Both bounds are inclusive Unix milliseconds.
func (r *Repository) GetSalesByDateRange(from, to int64) ([]models.Sale, error) {
	rows, err := r.db.Query(`
		SELECT id, product_id, product_name, customer_id, quantity,
		       amount, total, payment_method, items, timestamp, synced
		FROM sales WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC, id ASC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales by date range: %w", err)
	}
	defer rows.Close()

	return collectSales(rows)
}

// GetSalesByCustomer returns every sale linked to a customer, newest first.
func (r *Repository) GetSalesByCustomer(customerID int64) ([]models.Sale, error) {
	rows, err := r.db.Query(`
		SELECT id, product_id, product_name, customer_id, quantity,
		       amount, total, payment_method, items, timestamp, synced
		FROM sales WHERE customer_id = ?
		ORDER BY timestamp DESC, id DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("sales by customer: %w", err)
	}
	defer rows.Close()

	return collectSales(rows)
}

// DeleteSale removes a sale. Deleting an id that does not exist returns
// ErrNotFound.
func (r *Repository) DeleteSale(id int64) error {
	res, err := r.db.Exec(`DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: sale %d", ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSale(row rowScanner) (*models.Sale, error) {
	var (
		s          models.Sale
		productID  sql.NullInt64
		customerID sql.NullInt64
		items      sql.NullString
		synced     int
	)

	err := row.Scan(&s.ID, &productID, &s.ProductName, &customerID, &s.Quantity,
		&s.Amount, &s.Total, &s.PaymentMethod, &items, &s.Timestamp, &synced)
	if err != nil {
		return nil, err
	}

	s.ProductID = productID.Int64
	s.CustomerID = customerID.Int64
	s.Synced = synced != 0
	if items.Valid {
		if err := unmarshalJSON(items.String, &s.Items); err != nil {
			return nil, fmt.Errorf("decode sale items: %w", err)
		}
	}
	return &s, nil
}

func collectSales(rows *sql.Rows) ([]models.Sale, error) {
	var sales []models.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *s)
	}
	return sales, rows.Err()
}
