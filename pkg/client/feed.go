package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"cajaflow/domain"
	"cajaflow/internal/ledger"
	"cajaflow/internal/money"
	"cajaflow/internal/stream"
)

// Feed is the in-memory order collection kept current by the listener. A
// snapshot replaces the collection wholesale; created orders are prepended
// and marked fresh for highlighting; updates patch in place by id; deletions
// remove by id and drop the highlight. Every mutation is a no-op when the
// target id is absent, so replayed or stale events never desynchronize the
// collection.
type Feed struct {
	mu     sync.Mutex
	orders []domain.Order
	fresh  map[int64]bool
}

func NewFeed() *Feed {
	return &Feed{fresh: make(map[int64]bool)}
}

// Apply dispatches one wire message into the collection. A malformed
// payload returns an error and leaves the collection untouched.
func (f *Feed) Apply(msg stream.Message) error {
	switch msg.Tipo {
	case stream.KindSnapshot:
		var orders []domain.Order
		if err := json.Unmarshal(msg.Data, &orders); err != nil {
			return fmt.Errorf("malformed snapshot: %w", err)
		}
		f.ApplySnapshot(orders)
	case stream.KindCreated:
		var order domain.Order
		if err := json.Unmarshal(msg.Data, &order); err != nil {
			return fmt.Errorf("malformed created event: %w", err)
		}
		f.ApplyCreated(order)
	case stream.KindUpdated:
		var order domain.Order
		if err := json.Unmarshal(msg.Data, &order); err != nil {
			return fmt.Errorf("malformed updated event: %w", err)
		}
		f.ApplyUpdated(order)
	case stream.KindDeleted:
		var deleted stream.Deleted
		if err := json.Unmarshal(msg.Data, &deleted); err != nil {
			return fmt.Errorf("malformed deleted event: %w", err)
		}
		f.ApplyDeleted(deleted.ID)
	default:
		return fmt.Errorf("unknown message kind %q", msg.Tipo)
	}
	return nil
}

func (f *Feed) ApplySnapshot(orders []domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append([]domain.Order(nil), orders...)
	f.fresh = make(map[int64]bool)
}

func (f *Feed) ApplyCreated(order domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == order.ID {
			return
		}
	}
	f.orders = append([]domain.Order{order}, f.orders...)
	f.fresh[order.ID] = true
}

func (f *Feed) ApplyUpdated(order domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.orders {
		if f.orders[i].ID == order.ID {
			f.orders[i] = order
			return
		}
	}
}

func (f *Feed) ApplyDeleted(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			break
		}
	}
	delete(f.fresh, id)
}

// Orders returns a copy of the collection, newest first.
func (f *Feed) Orders() []domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Order(nil), f.orders...)
}

// IsNew reports whether an order arrived after the snapshot and has not been
// deleted since.
func (f *Feed) IsNew(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fresh[id]
}

func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

// TotalCollected sums the paid amounts across the collection.
func (f *Feed) TotalCollected() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total float64
	for _, o := range f.orders {
		total = money.Add2(total, o.Paid)
	}
	return total
}

// MethodTotals aggregates the collected amounts by recorded payment method.
func (f *Feed) MethodTotals() []domain.MethodTotal {
	f.mu.Lock()
	defer f.mu.Unlock()
	var payments []domain.Payment
	for _, o := range f.orders {
		if o.Paid <= 0 {
			continue
		}
		method := ""
		if o.Method != nil {
			method = *o.Method
		}
		orderID := o.ID
		payments = append(payments, domain.Payment{OrderID: &orderID, Method: method, Amount: o.Paid})
	}
	return ledger.AggregateByMethod(payments)
}
