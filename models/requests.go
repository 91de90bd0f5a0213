package models

// ProductUpdate is a partial update: nil fields are left untouched.
type ProductUpdate struct {
	Name          *string  `json:"name,omitempty"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Quantity      *int     `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	LowStockAlert *int     `json:"lowStockAlert,omitempty"`
	Category      *string  `json:"category,omitempty"`
}

// CustomerUpdate is a partial update: nil fields are left untouched.
type CustomerUpdate struct {
	Name               *string   `json:"name,omitempty"`
	Phone              *string   `json:"phone,omitempty"`
	Email              *string   `json:"email,omitempty" validate:"omitempty,email"`
	Address            *string   `json:"address,omitempty"`
	Notes              *string   `json:"notes,omitempty"`
	Tags               *[]string `json:"tags,omitempty"`
	LastVisit          *int64    `json:"lastVisit,omitempty"`
	TotalPurchases     *float64  `json:"totalPurchases,omitempty"`
	TotalTransactions  *int      `json:"totalTransactions,omitempty"`
	AverageTransaction *float64  `json:"averageTransaction,omitempty"`
	LoyaltyPoints      *int      `json:"loyaltyPoints,omitempty"`
	CreditBalance      *float64  `json:"creditBalance,omitempty"`
	DebtBalance        *float64  `json:"debtBalance,omitempty"`
}

// SyncBatch carries every record still flagged unsynced, grouped by
// collection. It is the POST /api/sync request body.
type SyncBatch struct {
	Sales     []Sale     `json:"sales"`
	Inventory []Product  `json:"inventory"`
	Expenses  []Expense  `json:"expenses"`
	Customers []Customer `json:"customers"`
}

// Empty reports whether there is nothing to push.
func (b SyncBatch) Empty() bool {
	return len(b.Sales) == 0 && len(b.Inventory) == 0 && len(b.Expenses) == 0 && len(b.Customers) == 0
}

// SyncCounts summarizes how many records a sync run accepted per collection.
type SyncCounts struct {
	Sales     int `json:"sales"`
	Inventory int `json:"inventory"`
	Expenses  int `json:"expenses"`
	Customers int `json:"customers"`
}

// Total sums the per-collection counts.
func (c SyncCounts) Total() int {
	return c.Sales + c.Inventory + c.Expenses + c.Customers
}

// SyncResponse is the sync endpoint's reply.
type SyncResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message,omitempty"`
	Error     string     `json:"error,omitempty"`
	Synced    SyncCounts `json:"synced"`
	Timestamp string     `json:"timestamp,omitempty"`
}
