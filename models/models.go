package models

import "time"

// DefaultLowStockAlert is applied when a product is stored without an
// explicit low-stock threshold.
const DefaultLowStockAlert = 5

// UserID is the fixed key of the singleton user record. The shop owner is
// the only account; absence of the record means "logged out" or "never set
// up" (distinguished by the ProcessConfig ever-setup flag).
const UserID = 1

// User is the shop owner account. The PIN is stored only as a salted
// argon2id hash, never as the raw digits.
type User struct {
	ID               int64  `json:"id"`
	ShopName         string `json:"shopName" validate:"required"`
	PinHash          string `json:"-"`
	Currency         string `json:"currency" validate:"omitempty,currencycode"`
	SecurityQuestion string `json:"securityQuestion,omitempty"`
	SecurityAnswer   string `json:"securityAnswer,omitempty"`
	CreatedAt        int64  `json:"createdAt"`
	LastPinReset     int64  `json:"lastPinReset,omitempty"`
	PinResetCount    int    `json:"pinResetCount"`
}

// SaleItem is one line of a multi-item sale.
type SaleItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

// Sale is a completed transaction. Timestamp is immutable after creation.
type Sale struct {
	ID            int64      `json:"id"`
	ProductID     int64      `json:"productId,omitempty"`
	ProductName   string     `json:"productName,omitempty"`
	CustomerID    int64      `json:"customerId,omitempty"`
	Quantity      int        `json:"quantity"`
	Amount        float64    `json:"amount"`
	Total         float64    `json:"total" validate:"gte=0"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	Items         []SaleItem `json:"items,omitempty"`
	Timestamp     int64      `json:"timestamp"`
	Synced        bool       `json:"synced"`
}

// Product is an inventory entry. Quantity is current stock on hand.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name" validate:"required"`
	Price         float64 `json:"price" validate:"gte=0"`
	Quantity      int     `json:"quantity" validate:"gte=0"`
	LowStockAlert int     `json:"lowStockAlert"`
	Category      string  `json:"category,omitempty"`
	CreatedAt     int64   `json:"createdAt"`
	UpdatedAt     int64   `json:"updatedAt,omitempty"`
	Synced        bool    `json:"synced"`
}

// IsLowStock reports whether stock has reached the alert threshold.
// The boundary is inclusive: quantity equal to the threshold counts.
func (p Product) IsLowStock() bool {
	alert := p.LowStockAlert
	if alert == 0 {
		alert = DefaultLowStockAlert
	}
	return p.Quantity <= alert
}

// Expense is money spent by the shop.
type Expense struct {
	ID          int64   `json:"id"`
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Category    string  `json:"category,omitempty"`
	Timestamp   int64   `json:"timestamp"`
	Synced      bool    `json:"synced"`
}

// Customer is a repeat buyer tracked for loyalty and segmentation.
// AverageTransaction is derived: TotalPurchases / TotalTransactions when
// there is at least one transaction, 0 otherwise.
type Customer struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name" validate:"required"`
	Phone              string   `json:"phone,omitempty"`
	Email              string   `json:"email,omitempty" validate:"omitempty,email"`
	Address            string   `json:"address,omitempty"`
	Notes              string   `json:"notes,omitempty"`
	Tags               []string `json:"tags,omitempty"`
	CreatedAt          int64    `json:"createdAt"`
	LastVisit          int64    `json:"lastVisit"`
	TotalPurchases     float64  `json:"totalPurchases"`
	TotalTransactions  int      `json:"totalTransactions"`
	AverageTransaction float64  `json:"averageTransaction"`
	LoyaltyPoints      int      `json:"loyaltyPoints"`
	CreditBalance      float64  `json:"creditBalance"`
	DebtBalance        float64  `json:"debtBalance"`
	Synced             bool     `json:"synced"`
}

// Millis converts a time to the Unix-millisecond representation used for
// every stored and wire timestamp.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
