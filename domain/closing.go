package domain

// Expense is a cash outflow recorded against a register during the day.
type Expense struct {
	ID         int64   `db:"id" json:"id"`
	RegisterID int64   `db:"register_id" json:"register_id"`
	Amount     float64 `db:"amount" json:"amount"`
	Motive     string  `db:"motive" json:"motive"`
	CreatedAt  string  `db:"created_at" json:"created_at"`
}

// MethodTotal is the aggregated collection for one payment method, in
// first-seen order. Amounts keeps the itemized contributions for display.
type MethodTotal struct {
	Method  string    `json:"method"`
	Total   float64   `json:"total"`
	Amounts []float64 `json:"amounts"`
}

// Closing is the end-of-day reconciliation record for one register. Once
// submitted it is immutable except for the counted cash and status, which an
// admin may patch later.
type Closing struct {
	ID              int64         `db:"id" json:"id"`
	RegisterID      int64         `db:"register_id" json:"register_id"`
	RegisterName    string        `db:"register_name" json:"register_name"`
	Date            string        `db:"date" json:"date"`
	TotalSales      float64       `db:"total_sales" json:"total_sales"`
	TotalCollected  float64       `db:"total_collected" json:"total_collected"`
	TotalOnAccount  float64       `db:"total_on_account" json:"total_on_account"`
	GrossCash       float64       `db:"gross_cash" json:"gross_cash"`
	TotalExpenses   float64       `db:"total_expenses" json:"total_expenses"`
	NetCash         float64       `db:"net_cash" json:"net_cash"`
	CountedCash     *float64      `db:"counted_cash" json:"counted_cash,omitempty"`
	Difference      *float64      `db:"difference" json:"difference,omitempty"`
	Status          ClosingStatus `db:"status" json:"status"`
	CreatedAt       string        `db:"created_at" json:"created_at"`
	MethodBreakdown []MethodTotal `json:"method_breakdown,omitempty"`
	Expenses        []Expense     `json:"expenses,omitempty"`
}
