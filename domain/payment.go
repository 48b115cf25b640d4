package domain

// Payment method sentinels. MethodNone buckets records with no method so
// their amounts are never silently dropped; MethodDeferred marks a
// pay-another-day event and is not a real collection method.
const (
	MethodNone     = "NO METHOD"
	MethodDeferred = "DEFERRED"
	MethodCash     = "CASH"
)

// Payment is a single collection event. It exists to be aggregated and is
// never mutated after creation.
type Payment struct {
	ID        int64   `db:"id" json:"id"`
	OrderID   *int64  `db:"order_id" json:"order_id,omitempty"`
	Method    string  `db:"method" json:"method"`
	Amount    float64 `db:"amount" json:"amount"`
	CreatedAt string  `db:"created_at" json:"created_at"`
}
