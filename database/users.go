package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chikondi-pos/models"
)

// GetUser returns the singleton shop owner account, or ErrNotFound if no
// account has been stored.
func (r *Repository) GetUser() (*models.User, error) {
	var (
		u            models.User
		lastPinReset sql.NullInt64
	)

	err := r.db.QueryRow(`
		SELECT id, shop_name, pin_hash, currency, security_question,
		       security_answer, created_at, last_pin_reset, pin_reset_count
		FROM user WHERE id = ?`, models.UserID).Scan(
		&u.ID, &u.ShopName, &u.PinHash, &u.Currency, &u.SecurityQuestion,
		&u.SecurityAnswer, &u.CreatedAt, &lastPinReset, &u.PinResetCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if lastPinReset.Valid {
		u.LastPinReset = lastPinReset.Int64
	}
	return &u, nil
}

// SetUser stores the shop owner account, replacing any previous record. The
// id is forced to the singleton key regardless of what the caller set.
func (r *Repository) SetUser(u *models.User) error {
	if err := r.validate.Validate(u); err != nil {
		return err
	}

	u.ID = models.UserID
	if u.CreatedAt == 0 {
		u.CreatedAt = models.Millis(time.Now())
	}

	_, err := r.db.Exec(`
		INSERT INTO user (id, shop_name, pin_hash, currency, security_question,
		                  security_answer, created_at, last_pin_reset, pin_reset_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			shop_name = excluded.shop_name,
			pin_hash = excluded.pin_hash,
			currency = excluded.currency,
			security_question = excluded.security_question,
			security_answer = excluded.security_answer,
			created_at = excluded.created_at,
			last_pin_reset = excluded.last_pin_reset,
			pin_reset_count = excluded.pin_reset_count`,
		u.ID, u.ShopName, u.PinHash, u.Currency, u.SecurityQuestion,
		u.SecurityAnswer, u.CreatedAt, nullableMillis(u.LastPinReset), u.PinResetCount,
	)
	if err != nil {
		return fmt.Errorf("set user: %w", err)
	}
	return nil
}

// ClearUser removes the stored account. Clearing an empty store is not an
// error; logout must be idempotent.
func (r *Repository) ClearUser() error {
	if _, err := r.db.Exec(`DELETE FROM user WHERE id = ?`, models.UserID); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}
	return nil
}

func nullableMillis(ms int64) interface{} {
	if ms == 0 {
		return nil
	}
	return ms
}
