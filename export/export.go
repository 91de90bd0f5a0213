package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"chikondi-pos/models"
)

// Snapshot is a full backup of the store's business data, suitable for
// re-import. The owner account is excluded; credentials never leave the
// device.
type Snapshot struct {
	ExportedAt int64             `json:"exportedAt"`
	Version    int               `json:"version"`
	Sales      []models.Sale     `json:"sales"`
	Inventory  []models.Product  `json:"inventory"`
	Expenses   []models.Expense  `json:"expenses"`
	Customers  []models.Customer `json:"customers"`
}

// WriteSnapshot serializes a full backup as indented JSON.
func WriteSnapshot(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot parses a backup previously written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return &snap, nil
}

// WriteSalesCSV writes sales as a spreadsheet-friendly CSV with a header
// row. Timestamps are formatted in the given location.
func WriteSalesCSV(w io.Writer, sales []models.Sale, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Product", "Quantity", "Total", "Payment Method", "Synced"}); err != nil {
		return fmt.Errorf("write sales csv: %w", err)
	}

	for _, s := range sales {
		record := []string{
			time.UnixMilli(s.Timestamp).In(loc).Format("2006-01-02 15:04:05"),
			s.ProductName,
			strconv.Itoa(s.Quantity),
			formatAmount(s.Total),
			s.PaymentMethod,
			strconv.FormatBool(s.Synced),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write sales csv: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write sales csv: %w", err)
	}
	return nil
}

// WriteExpensesCSV writes expenses as CSV with a header row.
func WriteExpensesCSV(w io.Writer, expenses []models.Expense, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Description", "Category", "Amount", "Synced"}); err != nil {
		return fmt.Errorf("write expenses csv: %w", err)
	}

	for _, e := range expenses {
		record := []string{
			time.UnixMilli(e.Timestamp).In(loc).Format("2006-01-02 15:04:05"),
			e.Description,
			e.Category,
			formatAmount(e.Amount),
			strconv.FormatBool(e.Synced),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write expenses csv: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write expenses csv: %w", err)
	}
	return nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
