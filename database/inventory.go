package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chikondi-pos/models"
)

// CreateProduct adds an inventory entry. A zero low-stock threshold is
// stored as the default so old records and new reads agree.
func (r *Repository) CreateProduct(p *models.Product) (int64, error) {
	if err := r.validate.Validate(p); err != nil {
		return 0, err
	}

	if p.CreatedAt == 0 {
		p.CreatedAt = models.Millis(time.Now())
	}
	if p.LowStockAlert == 0 {
		p.LowStockAlert = models.DefaultLowStockAlert
	}
	p.Synced = false

	res, err := r.db.Exec(`
		INSERT INTO inventory (name, price, quantity, low_stock_alert,
		                       category, created_at, updated_at, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		p.Name, p.Price, p.Quantity, p.LowStockAlert,
		p.Category, p.CreatedAt, nullableMillis(p.UpdatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}
	p.ID = id
	return id, nil
}

// GetProduct fetches a single product by id.
func (r *Repository) GetProduct(id int64) (*models.Product, error) {
	row := r.db.QueryRow(`
		SELECT id, name, price, quantity, low_stock_alert,
		       category, created_at, updated_at, synced
		FROM inventory WHERE id = ?`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListProducts returns every product ordered by name.
func (r *Repository) ListProducts() ([]models.Product, error) {
	rows, err := r.db.Query(`
		SELECT id, name, price, quantity, low_stock_alert,
		       category, created_at, updated_at, synced
		FROM inventory ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// UpdateProduct merges the non-nil fields of the update into an existing
// product, bumps updated_at and flags the record unsynced. Missing ids
// return ErrNotFound.
func (r *Repository) UpdateProduct(id int64, upd models.ProductUpdate) (*models.Product, error) {
	if err := r.validate.Validate(&upd); err != nil {
		return nil, err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		SELECT id, name, price, quantity, low_stock_alert,
		       category, created_at, updated_at, synced
		FROM inventory WHERE id = ?`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Quantity != nil {
		p.Quantity = *upd.Quantity
	}
	if upd.LowStockAlert != nil {
		p.LowStockAlert = *upd.LowStockAlert
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}

	if err := r.validate.Validate(p); err != nil {
		return nil, err
	}

	p.UpdatedAt = models.Millis(time.Now())
	p.Synced = false

	_, err = tx.Exec(`
		UPDATE inventory SET name = ?, price = ?, quantity = ?,
		       low_stock_alert = ?, category = ?, updated_at = ?, synced = 0
		WHERE id = ?`,
		p.Name, p.Price, p.Quantity, p.LowStockAlert, p.Category, p.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// AdjustStock changes a product's quantity by a signed delta, typically after
// a sale. Stock never goes below zero.
func (r *Repository) AdjustStock(id int64, delta int) (*models.Product, error) {
	p, err := r.GetProduct(id)
	if err != nil {
		return nil, err
	}

	quantity := p.Quantity + delta
	if quantity < 0 {
		quantity = 0
	}
	return r.UpdateProduct(id, models.ProductUpdate{Quantity: &quantity})
}

// DeleteProduct removes a product. Missing ids return ErrNotFound.
func (r *Repository) DeleteProduct(id int64) error {
	res, err := r.db.Exec(`DELETE FROM inventory WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return nil
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		p         models.Product
		updatedAt sql.NullInt64
		synced    int
	)

	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.LowStockAlert,
		&p.Category, &p.CreatedAt, &updatedAt, &synced)
	if err != nil {
		return nil, err
	}

	p.UpdatedAt = updatedAt.Int64
	p.Synced = synced != 0
	return &p, nil
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}
