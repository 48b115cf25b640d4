package domain

import (
	"cajaflow/internal/money"
)

type Order struct {
	ID         int64       `db:"id" json:"id"`
	Number     int64       `db:"number" json:"number"`
	RegisterID int64       `db:"register_id" json:"register_id"`
	PartnerID  *int64      `db:"partner_id" json:"partner_id,omitempty"`
	UserID     *int64      `db:"user_id" json:"user_id,omitempty"`
	Total      float64     `db:"total" json:"total"`
	Paid       float64     `db:"paid" json:"paid"`
	Remaining  float64     `db:"remaining" json:"remaining"`
	Method     *string     `db:"method" json:"method,omitempty"`
	Status     OrderStatus `db:"status" json:"status"`
	CreatedAt  string      `db:"created_at" json:"created_at"`
	Items      []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ID        int64   `db:"id" json:"id"`
	OrderID   int64   `db:"order_id" json:"order_id"`
	ProductID int64   `db:"product_id" json:"product_id"`
	Quantity  int64   `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
	Subtotal  float64 `db:"subtotal" json:"subtotal"`
}

// ApplyPayment applies a payment event to an order and returns the updated
// copy. A deferred payment leaves the amounts untouched and only moves the
// order to DEFERRED with the sentinel method recorded. Otherwise the paid
// amount grows by amount (rounded to two decimals after the addition), the
// remaining balance shrinks accordingly, and the order lands on PAID when
// nothing remains or PARTIALLY_PAID when something does.
func (o Order) ApplyPayment(amount float64, method string, deferred bool) (Order, error) {
	if o.Status.Settled() {
		return Order{}, Validationf("order %d is not payable in status %s", o.Number, o.Status)
	}

	if deferred {
		m := MethodDeferred
		o.Method = &m
		o.Status = StatusDeferred
		return o, nil
	}

	if amount <= 0 {
		return Order{}, Validationf("payment amount must be positive, got %.2f", amount)
	}

	paid := money.Add2(o.Paid, amount)
	if paid > o.Total+money.Epsilon {
		return Order{}, Validationf("payment of %.2f exceeds remaining balance %.2f", amount, o.Remaining)
	}

	o.Paid = paid
	o.Remaining = money.Sub2(o.Total, paid)
	if o.Remaining < 0 {
		o.Remaining = 0
	}
	if o.Remaining == 0 {
		o.Status = StatusPaid
	} else {
		o.Status = StatusPartiallyPaid
	}
	if method != "" {
		o.Method = &method
	}
	return o, nil
}

// MarkRunningAccountDelivered confirms delivery of a running-account order.
// Confirming an already delivered order is a no-op, not an error.
func (o Order) MarkRunningAccountDelivered() (Order, error) {
	switch o.Status {
	case StatusDelivered:
		return o, nil
	case StatusRunningAccount:
		o.Status = StatusDelivered
		return o, nil
	default:
		return Order{}, Validationf("order %d is not on a running account (status %s)", o.Number, o.Status)
	}
}
