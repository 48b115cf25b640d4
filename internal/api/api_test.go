package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cajaflow/domain"
	"cajaflow/internal/database"
	"cajaflow/internal/migrations"
	"cajaflow/internal/stream"
	"cajaflow/pkg/client"
)

func newTestEnv(t *testing.T) (*httptest.Server, *client.Client) {
	t.Helper()

	db := database.Connect(":memory:")
	t.Cleanup(func() { db.Close() })
	migrations.Run(db)

	zlog := zap.NewNop()
	hub := stream.NewHub(SnapshotLoader(db), zlog)
	handler := New(db, "test_secret", hub, zlog)

	srv := httptest.NewServer(handler.Router())
	t.Cleanup(srv.Close)

	return srv, client.New(srv.URL)
}

func registerAdmin(t *testing.T, c *client.Client) domain.Session {
	t.Helper()
	session, err := c.Register(client.RegisterRequest{
		Username: "ana", Email: "ana@cajaflow.test", Password: "secret", Role: domain.RoleAdmin,
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	return session
}

func seedCatalog(t *testing.T, c *client.Client) (registerID, flourID, oilID int64) {
	t.Helper()
	var err error
	registerID, err = c.CreateRegister("Caja Principal", "Sucursal Centro")
	require.NoError(t, err)
	flourID, err = c.CreateProduct("Harina", "Almacen", 200)
	require.NoError(t, err)
	oilID, err = c.CreateProduct("Aceite", "Almacen", 300)
	require.NoError(t, err)
	return registerID, flourID, oilID
}

func TestSaleLifecycle(t *testing.T) {
	_, c := newTestEnv(t)
	registerAdmin(t, c)
	registerID, flourID, oilID := seedCatalog(t, c)

	sale, err := c.CreateSale(client.SaleRequest{
		RegisterID: registerID,
		Items: []client.SaleItem{
			{ProductID: flourID, Quantity: 2},
			{ProductID: oilID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), sale.Number)
	require.Equal(t, 700.0, sale.Total)
	require.Equal(t, 700.0, sale.Remaining)
	require.Equal(t, domain.StatusPending, sale.Status)
	require.Len(t, sale.Items, 2)

	partial, err := c.ApplyPayment(sale.ID, 200, "CASH", false)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPartiallyPaid, partial.Status)
	require.Equal(t, 500.0, partial.Remaining)

	var serr *domain.ServerError
	_, err = c.ApplyPayment(sale.ID, 501, "CASH", false)
	require.ErrorAs(t, err, &serr)
	require.Equal(t, http.StatusBadRequest, serr.Status)

	full, err := c.ApplyPayment(sale.ID, 500, "CASH", false)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, full.Status)
	require.Equal(t, 0.0, full.Remaining)

	deferredSale, err := c.CreateSale(client.SaleRequest{
		RegisterID: registerID,
		Items:      []client.SaleItem{{ProductID: flourID, Quantity: 1}},
	})
	require.NoError(t, err)
	deferred, err := c.ApplyPayment(deferredSale.ID, 0, "", true)
	require.NoError(t, err)
	require.Equal(t, domain.StatusDeferred, deferred.Status)
	require.Equal(t, domain.MethodDeferred, *deferred.Method)
	require.Equal(t, 200.0, deferred.Remaining)

	pending, err := c.PendingDeliveries(registerID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, deferredSale.ID, pending[0].ID)
}

func TestRunningAccountFlow(t *testing.T) {
	_, c := newTestEnv(t)
	registerAdmin(t, c)
	registerID, flourID, _ := seedCatalog(t, c)

	partnerID, err := c.CreatePartner("Almacen Don Pedro", "Av. Siempreviva 742", "555-0100")
	require.NoError(t, err)

	sale, err := c.CreateSale(client.SaleRequest{
		RegisterID: registerID,
		PartnerID:  &partnerID,
		Items:      []client.SaleItem{{ProductID: flourID, Quantity: 3}},
		OnAccount:  true,
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusRunningAccount, sale.Status)

	summary, err := c.AccountSummary(partnerID)
	require.NoError(t, err)
	require.Len(t, summary.OpenOrders, 1)
	require.Equal(t, 600.0, summary.TotalOwed)
	require.Equal(t, 0.0, summary.TotalDelivered)

	delivered, err := c.MarkDelivered(sale.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusDelivered, delivered.Status)

	// Re-confirming is a no-op.
	again, err := c.MarkDelivered(sale.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusDelivered, again.Status)

	summary, err = c.AccountSummary(partnerID)
	require.NoError(t, err)
	require.Empty(t, summary.OpenOrders)
	require.Equal(t, 0.0, summary.TotalOwed)
	require.Equal(t, 600.0, summary.TotalDelivered)
}

func TestClosingFlow(t *testing.T) {
	_, c := newTestEnv(t)
	registerAdmin(t, c)
	registerID, flourID, oilID := seedCatalog(t, c)

	sale, err := c.CreateSale(client.SaleRequest{
		RegisterID: registerID,
		Items: []client.SaleItem{
			{ProductID: flourID, Quantity: 2},
			{ProductID: oilID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	_, err = c.ApplyPayment(sale.ID, 700, "CASH", false)
	require.NoError(t, err)

	cardSale, err := c.CreateSale(client.SaleRequest{
		RegisterID: registerID,
		Items:      []client.SaleItem{{ProductID: oilID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = c.ApplyPayment(cardSale.ID, 300, "CARD", false)
	require.NoError(t, err)

	_, err = c.CreateExpense(registerID, 100, "nafta")
	require.NoError(t, err)

	closing, err := c.OpenClosing(client.ClosingRequest{RegisterID: registerID})
	require.NoError(t, err)
	require.Equal(t, domain.ClosingPending, closing.Status)
	require.Equal(t, 1000.0, closing.TotalSales)
	require.Equal(t, 1000.0, closing.TotalCollected)
	require.Equal(t, 700.0, closing.GrossCash)
	require.Equal(t, 100.0, closing.TotalExpenses)
	require.Equal(t, 600.0, closing.NetCash)
	require.Len(t, closing.MethodBreakdown, 2)

	// A second pending closing for the same register and day is rejected.
	var cerr *domain.ConflictError
	_, err = c.OpenClosing(client.ClosingRequest{RegisterID: registerID})
	require.ErrorAs(t, err, &cerr)

	counted := 550.0
	patched, err := c.PatchClosing(closing.ID, &counted, true)
	require.NoError(t, err)
	require.Equal(t, domain.ClosingClosed, patched.Status)
	require.NotNil(t, patched.Difference)
	require.Equal(t, -50.0, *patched.Difference)

	// Once finalized the day can be closed again.
	_, err = c.OpenClosing(client.ClosingRequest{RegisterID: registerID})
	require.NoError(t, err)
}

func TestUnauthorizedTaxonomy(t *testing.T) {
	srv, c := newTestEnv(t)

	// No token at all.
	var uerr *domain.UnauthorizedError
	_, err := c.PendingDeliveries(1)
	require.ErrorAs(t, err, &uerr)
	require.Equal(t, domain.ReasonNoToken, uerr.Reason)
	require.Equal(t, domain.Session{}, c.Session())

	// Garbage token.
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/registers", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLiveFeed(t *testing.T) {
	srv, c := newTestEnv(t)
	session := registerAdmin(t, c)
	registerID, flourID, _ := seedCatalog(t, c)

	existing, err := c.CreateSale(client.SaleRequest{
		RegisterID: registerID,
		Items:      []client.SaleItem{{ProductID: flourID, Quantity: 1}},
	})
	require.NoError(t, err)

	feed := client.NewFeed()
	listener := client.NewListener(srv.URL, registerID, session, feed, zap.NewNop())
	require.NoError(t, listener.Connect(context.Background()))
	t.Cleanup(func() { listener.Close() })

	require.Eventually(t, func() bool { return feed.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, client.StateConnected, listener.State())
	require.Equal(t, existing.ID, feed.Orders()[0].ID)

	created, err := c.CreateSale(client.SaleRequest{
		RegisterID: registerID,
		Items:      []client.SaleItem{{ProductID: flourID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return feed.Len() == 2 && feed.IsNew(created.ID) },
		2*time.Second, 10*time.Millisecond)

	_, err = c.ApplyPayment(existing.ID, 200, "CASH", false)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		for _, o := range feed.Orders() {
			if o.ID == existing.ID && o.Status == domain.StatusPaid {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, 200.0, feed.TotalCollected())

	require.NoError(t, c.DeleteSale(created.ID))
	require.Eventually(t, func() bool { return feed.Len() == 1 && !feed.IsNew(created.ID) },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, listener.Close())
	select {
	case <-listener.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop after close")
	}
	require.Equal(t, client.StateDisconnected, listener.State())
}
