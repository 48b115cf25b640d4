package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"cajaflow/domain"
	"cajaflow/internal/stream"
)

func message(t *testing.T, kind string, data any) stream.Message {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return stream.Message{Tipo: kind, Data: raw}
}

func TestFeedSnapshotReplacesWholesale(t *testing.T) {
	feed := NewFeed()
	feed.ApplyCreated(domain.Order{ID: 99, Total: 1})

	require.NoError(t, feed.Apply(message(t, stream.KindSnapshot, []domain.Order{
		{ID: 1, Total: 500}, {ID: 2, Total: 300}, {ID: 3, Total: 100},
	})))

	require.Equal(t, 3, feed.Len())
	require.False(t, feed.IsNew(99))
	require.False(t, feed.IsNew(1))
}

func TestFeedDeleteIsIdempotent(t *testing.T) {
	feed := NewFeed()
	feed.ApplySnapshot([]domain.Order{
		{ID: 1, Total: 500}, {ID: 2, Total: 300}, {ID: 3, Total: 100},
	})

	require.NoError(t, feed.Apply(message(t, stream.KindDeleted, stream.Deleted{ID: 2})))
	require.Equal(t, 2, feed.Len())

	// A replayed deletion is a no-op, not an error.
	require.NoError(t, feed.Apply(message(t, stream.KindDeleted, stream.Deleted{ID: 2})))
	require.Equal(t, 2, feed.Len())
}

func TestFeedCreatedPrependsAndHighlights(t *testing.T) {
	feed := NewFeed()
	feed.ApplySnapshot([]domain.Order{{ID: 1, Total: 500}})

	feed.ApplyCreated(domain.Order{ID: 2, Total: 200})
	orders := feed.Orders()
	require.Equal(t, int64(2), orders[0].ID)
	require.True(t, feed.IsNew(2))

	// A duplicate created event does not double the order.
	feed.ApplyCreated(domain.Order{ID: 2, Total: 200})
	require.Equal(t, 2, feed.Len())

	feed.ApplyDeleted(2)
	require.False(t, feed.IsNew(2))
}

func TestFeedUpdateUnknownOrderIsNoop(t *testing.T) {
	feed := NewFeed()
	feed.ApplySnapshot([]domain.Order{{ID: 1, Total: 500}})

	feed.ApplyUpdated(domain.Order{ID: 77, Total: 1})
	require.Equal(t, 1, feed.Len())
	require.Equal(t, int64(1), feed.Orders()[0].ID)
}

func TestFeedMalformedMessages(t *testing.T) {
	feed := NewFeed()
	feed.ApplySnapshot([]domain.Order{{ID: 1, Total: 500}})

	require.Error(t, feed.Apply(stream.Message{Tipo: stream.KindCreated, Data: json.RawMessage(`"garbage"`)}))
	require.Error(t, feed.Apply(stream.Message{Tipo: "drop", Data: json.RawMessage(`{}`)}))
	require.Equal(t, 1, feed.Len())
}

// The end-to-end reduction the register view performs: snapshot, a new sale,
// then a full payment on the first order.
func TestFeedRegisterDayScenario(t *testing.T) {
	feed := NewFeed()

	require.NoError(t, feed.Apply(message(t, stream.KindSnapshot, []domain.Order{
		{ID: 1, Number: 1, Total: 500, Paid: 0, Remaining: 500, Status: domain.StatusPending},
		{ID: 2, Number: 2, Total: 300, Paid: 300, Remaining: 0, Status: domain.StatusPaid},
	})))
	require.NoError(t, feed.Apply(message(t, stream.KindCreated,
		domain.Order{ID: 3, Number: 3, Total: 200, Paid: 0, Remaining: 200, Status: domain.StatusPending})))

	first := feed.Orders()[1]
	require.Equal(t, int64(1), first.ID)
	paid, err := first.ApplyPayment(500, "CASH", false)
	require.NoError(t, err)
	require.NoError(t, feed.Apply(message(t, stream.KindUpdated, paid)))

	require.Equal(t, 3, feed.Len())
	require.Equal(t, 800.0, feed.TotalCollected())

	totals := feed.MethodTotals()
	require.Len(t, totals, 2)
	require.Equal(t, "CASH", totals[0].Method)
	require.Equal(t, 500.0, totals[0].Total)
	require.Equal(t, domain.MethodNone, totals[1].Method)
	require.Equal(t, 300.0, totals[1].Total)
}
