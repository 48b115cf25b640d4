package domain

import "fmt"

// OrderStatus is a closed enumeration of order lifecycle states.
// Transitions are one-directional except PARTIALLY_PAID -> PAID and
// DEFERRED/PARTIALLY_PAID -> PARTIALLY_PAID (further partial payment).
type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusPaid           OrderStatus = "PAID"
	StatusDeferred       OrderStatus = "DEFERRED"
	StatusRunningAccount OrderStatus = "RUNNING_ACCOUNT"
	StatusPartiallyPaid  OrderStatus = "PARTIALLY_PAID"
	StatusDelivered      OrderStatus = "DELIVERED"
)

// ParseStatus validates a raw status string coming from a request or the
// database. Unknown values are rejected rather than passed through.
func ParseStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	switch s {
	case StatusPending, StatusPaid, StatusDeferred, StatusRunningAccount, StatusPartiallyPaid, StatusDelivered:
		return s, nil
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

// Settled reports whether no further payment can be applied to an order in
// this status.
func (s OrderStatus) Settled() bool {
	return s == StatusPaid || s == StatusDelivered || s == StatusRunningAccount
}

// ClosingStatus is the lifecycle of a cash-register closing record.
type ClosingStatus string

const (
	ClosingOpen    ClosingStatus = "OPEN"
	ClosingPending ClosingStatus = "PENDING"
	ClosingClosed  ClosingStatus = "CLOSED"
)
