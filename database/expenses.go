package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chikondi-pos/models"
)

// CreateExpense records money spent. Amount must be positive; the record
// always starts unsynced.
func (r *Repository) CreateExpense(e *models.Expense) (int64, error) {
	if err := r.validate.Validate(e); err != nil {
		return 0, err
	}

	if e.Timestamp == 0 {
		e.Timestamp = models.Millis(time.Now())
	}
	e.Synced = false

	res, err := r.db.Exec(`
		INSERT INTO expenses (description, amount, category, timestamp, synced)
		VALUES (?, ?, ?, ?, 0)`,
		e.Description, e.Amount, e.Category, e.Timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}
	e.ID = id
	return id, nil
}

// GetExpense fetches a single expense by id.
func (r *Repository) GetExpense(id int64) (*models.Expense, error) {
	row := r.db.QueryRow(`
		SELECT id, description, amount, category, timestamp, synced
		FROM expenses WHERE id = ?`, id)

	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns every expense ordered by timestamp ascending.
func (r *Repository) ListExpenses() ([]models.Expense, error) {
	rows, err := r.db.Query(`
		SELECT id, description, amount, category, timestamp, synced
		FROM expenses ORDER BY timestamp ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

// GetExpensesByDateRange returns expenses with from <= timestamp <= to.
func (r *Repository) GetExpensesByDateRange(from, to int64) ([]models.Expense, error) {
	rows, err := r.db.Query(`
		SELECT id, description, amount, category, timestamp, synced
		FROM expenses WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC, id ASC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("expenses by date range: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

// DeleteExpense removes an expense. Missing ids return ErrNotFound.
func (r *Repository) DeleteExpense(id int64) error {
	res, err := r.db.Exec(`DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: expense %d", ErrNotFound, id)
	}
	return nil
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	var (
		e      models.Expense
		synced int
	)

	err := row.Scan(&e.ID, &e.Description, &e.Amount, &e.Category, &e.Timestamp, &synced)
	if err != nil {
		return nil, err
	}

	e.Synced = synced != 0
	return &e, nil
}

func collectExpenses(rows *sql.Rows) ([]models.Expense, error) {
	var expenses []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}
