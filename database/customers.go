package database

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"chikondi-pos/models"
)

// LoyaltyPointsPerUnit is how much purchase value earns one loyalty point.
const LoyaltyPointsPerUnit = 100

// ErrInsufficientPoints means a redemption asked for more points than the
// customer holds. The balance is left untouched.
var ErrInsufficientPoints = errors.New("insufficient loyalty points")

// CreateCustomer adds a customer. Name is mandatory; a rejected record must
// not change the store. CreatedAt and LastVisit default to now.
func (r *Repository) CreateCustomer(c *models.Customer) (int64, error) {
	if err := r.validate.Validate(c); err != nil {
		return 0, err
	}

	now := models.Millis(time.Now())
	if c.CreatedAt == 0 {
		c.CreatedAt = now
	}
	if c.LastVisit == 0 {
		c.LastVisit = c.CreatedAt
	}
	c.Synced = false

	tags, err := marshalJSON(c.Tags)
	if err != nil {
		return 0, fmt.Errorf("create customer: encode tags: %w", err)
	}

	res, err := r.db.Exec(`
		INSERT INTO customers (name, phone, email, address, notes, tags,
		                       created_at, last_visit, total_purchases,
		                       total_transactions, average_transaction,
		                       loyalty_points, credit_balance, debt_balance, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		c.Name, c.Phone, c.Email, c.Address, c.Notes, tags,
		c.CreatedAt, c.LastVisit, c.TotalPurchases,
		c.TotalTransactions, c.AverageTransaction,
		c.LoyaltyPoints, c.CreditBalance, c.DebtBalance,
	)
	if err != nil {
		return 0, fmt.Errorf("create customer: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create customer: %w", err)
	}
	c.ID = id
	return id, nil
}

// GetCustomer fetches a single customer by id.
func (r *Repository) GetCustomer(id int64) (*models.Customer, error) {
	row := r.db.QueryRow(selectCustomer+` WHERE id = ?`, id)

	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: customer %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// ListCustomers returns every customer ordered by name.
func (r *Repository) ListCustomers() ([]models.Customer, error) {
	rows, err := r.db.Query(selectCustomer + ` ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	return collectCustomers(rows)
}

// SearchCustomers returns customers whose name, phone or email contains the
// query, case-insensitive. An empty query returns everyone.
func (r *Repository) SearchCustomers(query string) ([]models.Customer, error) {
	customers, err := r.ListCustomers()
	if err != nil {
		return nil, err
	}
	if query == "" {
		return customers, nil
	}

	q := strings.ToLower(query)
	var matched []models.Customer
	for _, c := range customers {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Phone), q) ||
			strings.Contains(strings.ToLower(c.Email), q) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

// UpdateCustomer merges the non-nil fields of the update into an existing
// customer, flags the record unsynced. Missing ids return ErrNotFound.
func (r *Repository) UpdateCustomer(id int64, upd models.CustomerUpdate) (*models.Customer, error) {
	if err := r.validate.Validate(&upd); err != nil {
		return nil, err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(selectCustomer+` WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: customer %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}

	applyCustomerUpdate(c, upd)

	if err := r.validate.Validate(c); err != nil {
		return nil, err
	}
	c.Synced = false

	if err := writeCustomer(tx, c); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return c, nil
}

// RecordCustomerPurchase folds a completed sale into the customer's running
// stats: last visit, purchase totals, derived average, and loyalty points at
// one point per 100 currency units.
func (r *Repository) RecordCustomerPurchase(id int64, amount float64, at time.Time) (*models.Customer, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("record purchase: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(selectCustomer+` WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: customer %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("record purchase: %w", err)
	}

	c.LastVisit = models.Millis(at)
	c.TotalPurchases += amount
	c.TotalTransactions++
	c.AverageTransaction = c.TotalPurchases / float64(c.TotalTransactions)
	c.LoyaltyPoints += int(amount / LoyaltyPointsPerUnit)
	c.Synced = false

	if err := writeCustomer(tx, c); err != nil {
		return nil, fmt.Errorf("record purchase: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("record purchase: %w", err)
	}
	return c, nil
}

// AddLoyaltyPoints grants extra points outside the purchase flow.
func (r *Repository) AddLoyaltyPoints(id int64, points int) (*models.Customer, error) {
	return r.adjustLoyalty(id, points, false)
}

// RedeemLoyaltyPoints spends points. Redeeming more than the balance fails
// with ErrInsufficientPoints and leaves the balance untouched.
func (r *Repository) RedeemLoyaltyPoints(id int64, points int) (*models.Customer, error) {
	return r.adjustLoyalty(id, -points, true)
}

func (r *Repository) adjustLoyalty(id int64, delta int, checkBalance bool) (*models.Customer, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("adjust loyalty: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(selectCustomer+` WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: customer %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("adjust loyalty: %w", err)
	}

	if checkBalance && c.LoyaltyPoints+delta < 0 {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientPoints, c.LoyaltyPoints, -delta)
	}

	c.LoyaltyPoints += delta
	c.Synced = false

	if err := writeCustomer(tx, c); err != nil {
		return nil, fmt.Errorf("adjust loyalty: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("adjust loyalty: %w", err)
	}
	return c, nil
}

// AdjustCustomerCredit moves a customer's credit or debt balance. A positive
// amount adds prepaid credit, first paying down any outstanding debt; a
// negative amount records new debt, first consuming any credit.
func (r *Repository) AdjustCustomerCredit(id int64, amount float64) (*models.Customer, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("adjust credit: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(selectCustomer+` WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: customer %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("adjust credit: %w", err)
	}

	net := c.CreditBalance - c.DebtBalance + amount
	if net >= 0 {
		c.CreditBalance = net
		c.DebtBalance = 0
	} else {
		c.CreditBalance = 0
		c.DebtBalance = -net
	}
	c.Synced = false

	if err := writeCustomer(tx, c); err != nil {
		return nil, fmt.Errorf("adjust credit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("adjust credit: %w", err)
	}
	return c, nil
}

// TopCustomers returns the n biggest spenders, highest total first.
func (r *Repository) TopCustomers(n int) ([]models.Customer, error) {
	customers, err := r.ListCustomers()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(customers, func(i, j int) bool {
		return customers[i].TotalPurchases > customers[j].TotalPurchases
	})
	if n > 0 && len(customers) > n {
		customers = customers[:n]
	}
	return customers, nil
}

// DeleteCustomer removes a customer. Missing ids return ErrNotFound. Sales
// that referenced the customer keep their dangling customer_id.
func (r *Repository) DeleteCustomer(id int64) error {
	res, err := r.db.Exec(`DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: customer %d", ErrNotFound, id)
	}
	return nil
}

const selectCustomer = `
	SELECT id, name, phone, email, address, notes, tags,
	       created_at, last_visit, total_purchases, total_transactions,
	       average_transaction, loyalty_points, credit_balance,
	       debt_balance, synced
	FROM customers`

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func writeCustomer(tx execer, c *models.Customer) error {
	tags, err := marshalJSON(c.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE customers SET name = ?, phone = ?, email = ?, address = ?,
		       notes = ?, tags = ?, last_visit = ?, total_purchases = ?,
		       total_transactions = ?, average_transaction = ?,
		       loyalty_points = ?, credit_balance = ?, debt_balance = ?,
		       synced = ?
		WHERE id = ?`,
		c.Name, c.Phone, c.Email, c.Address,
		c.Notes, tags, c.LastVisit, c.TotalPurchases,
		c.TotalTransactions, c.AverageTransaction,
		c.LoyaltyPoints, c.CreditBalance, c.DebtBalance,
		boolToInt(c.Synced), c.ID,
	)
	return err
}

func applyCustomerUpdate(c *models.Customer, upd models.CustomerUpdate) {
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Phone != nil {
		c.Phone = *upd.Phone
	}
	if upd.Email != nil {
		c.Email = *upd.Email
	}
	if upd.Address != nil {
		c.Address = *upd.Address
	}
	if upd.Notes != nil {
		c.Notes = *upd.Notes
	}
	if upd.Tags != nil {
		c.Tags = *upd.Tags
	}
	if upd.LastVisit != nil {
		c.LastVisit = *upd.LastVisit
	}
	if upd.TotalPurchases != nil {
		c.TotalPurchases = *upd.TotalPurchases
	}
	if upd.TotalTransactions != nil {
		c.TotalTransactions = *upd.TotalTransactions
	}
	if upd.AverageTransaction != nil {
		c.AverageTransaction = *upd.AverageTransaction
	}
	if upd.LoyaltyPoints != nil {
		c.LoyaltyPoints = *upd.LoyaltyPoints
	}
	if upd.CreditBalance != nil {
		c.CreditBalance = *upd.CreditBalance
	}
	if upd.DebtBalance != nil {
		c.DebtBalance = *upd.DebtBalance
	}
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var (
		c      models.Customer
		tags   sql.NullString
		synced int
	)

	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Notes,
		&tags, &c.CreatedAt, &c.LastVisit, &c.TotalPurchases,
		&c.TotalTransactions, &c.AverageTransaction, &c.LoyaltyPoints,
		&c.CreditBalance, &c.DebtBalance, &synced)
	if err != nil {
		return nil, err
	}

	c.Synced = synced != 0
	if tags.Valid {
		if err := unmarshalJSON(tags.String, &c.Tags); err != nil {
			return nil, fmt.Errorf("decode customer tags: %w", err)
		}
	}
	return &c, nil
}

func collectCustomers(rows *sql.Rows) ([]models.Customer, error) {
	var customers []models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}
