package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// schemaVersion is the target schema. Upgrades only ever add collections and
// indexes; existing rows are never rewritten or dropped. Defensive reads
// resolve missing fields to defaults at the repository boundary instead.
const schemaVersion = 2

type DB struct {
	*sql.DB
}

// Manager owns the single physical store handle. Open is idempotent: every
// caller gets the same handle, and concurrent first opens are serialized so
// only one migration pass runs.
type Manager struct {
	mu   sync.Mutex
	path string
	db   *DB
}

func NewManager(dbPath string) *Manager {
	return &Manager{path: dbPath}
}

// Open returns the cached handle, opening and migrating the store on first
// use. Any failure is reported as ErrStoreUnavailable.
func (m *Manager) Open() (*DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		return m.db, nil
	}

	db, err := open(m.path)
	if err != nil {
		return nil, err
	}

	m.db = db
	return m.db, nil
}

// Reset discards the cached handle so the next Open attempts a fresh
// connection. The caller owns deciding to retry; nothing here loops.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		m.db.Close()
		m.db = nil
	}
}

// Close shuts the store down for good.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}

func open(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create database directory: %v", ErrStoreUnavailable, err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", ErrStoreUnavailable, err)
	}

	// One shared connection; SQLite serializes writers internally.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enable WAL mode: %v", ErrStoreUnavailable, err)
	}

	wrapped := &DB{db}
	if err := wrapped.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return wrapped, nil
}

// migrate brings the store up to schemaVersion, creating any collections and
// indexes that do not yet exist. Downgrades are refused rather than resolved.
func (db *DB) migrate() error {
	var current int
	if err := db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("%w: read schema version: %v", ErrStoreUnavailable, err)
	}

	if current > schemaVersion {
		return fmt.Errorf("%w: store is at schema version %d, this build supports up to %d", ErrStoreUnavailable, current, schemaVersion)
	}

	if current < 1 {
		if err := db.applyV1(); err != nil {
			return err
		}
	}
	if current < 2 {
		if err := db.applyV2(); err != nil {
			return err
		}
	}

	if current < schemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("%w: record schema version: %v", ErrStoreUnavailable, err)
		}
	}

	return nil
}

// applyV1 creates the original collections: user, sales, inventory, expenses.
func (db *DB) applyV1() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS user (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			shop_name TEXT NOT NULL,
			pin_hash TEXT NOT NULL,
			currency TEXT NOT NULL DEFAULT 'MWK',
			security_question TEXT,
			security_answer TEXT,
			created_at INTEGER NOT NULL,
			last_pin_reset INTEGER,
			pin_reset_count INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS sales (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id INTEGER,
			product_name TEXT,
			customer_id INTEGER,
			quantity INTEGER NOT NULL DEFAULT 0,
			amount REAL NOT NULL DEFAULT 0,
			total REAL NOT NULL DEFAULT 0,
			payment_method TEXT,
			items TEXT,
			timestamp INTEGER NOT NULL,
			synced INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS inventory (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			price REAL NOT NULL DEFAULT 0,
			quantity INTEGER NOT NULL DEFAULT 0,
			low_stock_alert INTEGER NOT NULL DEFAULT 5,
			category TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER,
			synced INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			description TEXT NOT NULL,
			amount REAL NOT NULL,
			category TEXT,
			timestamp INTEGER NOT NULL,
			synced INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sales_timestamp ON sales(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_synced ON sales(synced) WHERE synced = 0`,
		`CREATE INDEX IF NOT EXISTS idx_sales_customer ON sales(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_inventory_name ON inventory(name)`,
		`CREATE INDEX IF NOT EXISTS idx_inventory_synced ON inventory(synced) WHERE synced = 0`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_timestamp ON expenses(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_synced ON expenses(synced) WHERE synced = 0`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("%w: migration to v1 failed: %v", ErrStoreUnavailable, err)
		}
	}

	return nil
}

// applyV2 adds the customers collection.
func (db *DB) applyV2() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			phone TEXT,
			email TEXT,
			address TEXT,
			notes TEXT,
			tags TEXT,
			created_at INTEGER NOT NULL,
			last_visit INTEGER NOT NULL,
			total_purchases REAL NOT NULL DEFAULT 0,
			total_transactions INTEGER NOT NULL DEFAULT 0,
			average_transaction REAL NOT NULL DEFAULT 0,
			loyalty_points INTEGER NOT NULL DEFAULT 0,
			credit_balance REAL NOT NULL DEFAULT 0,
			debt_balance REAL NOT NULL DEFAULT 0,
			synced INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_customers_name ON customers(name)`,
		`CREATE INDEX IF NOT EXISTS idx_customers_created ON customers(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_customers_last_visit ON customers(last_visit)`,
		`CREATE INDEX IF NOT EXISTS idx_customers_synced ON customers(synced) WHERE synced = 0`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("%w: migration to v2 failed: %v", ErrStoreUnavailable, err)
		}
	}

	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
