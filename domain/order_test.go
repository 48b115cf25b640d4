package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func pendingOrder(total float64) Order {
	return Order{ID: 1, Number: 10, RegisterID: 1, Total: total, Remaining: total, Status: StatusPending}
}

func TestApplyPaymentFull(t *testing.T) {
	order, err := pendingOrder(500).ApplyPayment(500, "CASH", false)
	require.NoError(t, err)
	require.Equal(t, 500.0, order.Paid)
	require.Equal(t, 0.0, order.Remaining)
	require.Equal(t, StatusPaid, order.Status)
	require.Equal(t, "CASH", *order.Method)
}

func TestApplyPaymentPartial(t *testing.T) {
	order, err := pendingOrder(500).ApplyPayment(200, "CASH", false)
	require.NoError(t, err)
	require.Equal(t, 200.0, order.Paid)
	require.Equal(t, 300.0, order.Remaining)
	require.Equal(t, StatusPartiallyPaid, order.Status)
}

func TestApplyPaymentSequenceReachesPaid(t *testing.T) {
	// Any sequence of amounts summing exactly to the total must end on PAID
	// with nothing remaining, including awkward cent splits.
	sequences := [][]float64{
		{100},
		{50, 50},
		{33.33, 33.33, 33.34},
		{0.01, 99.99},
		{10, 20, 30, 40},
	}
	for _, amounts := range sequences {
		order := pendingOrder(100)
		var err error
		for _, amount := range amounts {
			order, err = order.ApplyPayment(amount, "CASH", false)
			require.NoError(t, err)
		}
		require.Equal(t, StatusPaid, order.Status, "sequence %v", amounts)
		require.Equal(t, 0.0, order.Remaining, "sequence %v", amounts)
	}
}

func TestApplyPaymentRejectsNonPositiveAmount(t *testing.T) {
	var verr *ValidationError

	_, err := pendingOrder(100).ApplyPayment(0, "CASH", false)
	require.ErrorAs(t, err, &verr)

	_, err = pendingOrder(100).ApplyPayment(-5, "CASH", false)
	require.ErrorAs(t, err, &verr)
}

func TestApplyPaymentRejectsOverpayment(t *testing.T) {
	order, err := pendingOrder(100).ApplyPayment(90, "CASH", false)
	require.NoError(t, err)

	var verr *ValidationError
	_, err = order.ApplyPayment(10.01, "CASH", false)
	require.ErrorAs(t, err, &verr)

	// Exactly the remaining amount is fine.
	order, err = order.ApplyPayment(10, "CASH", false)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, order.Status)
}

func TestApplyPaymentRejectsSettledOrder(t *testing.T) {
	paid, err := pendingOrder(100).ApplyPayment(100, "CASH", false)
	require.NoError(t, err)

	var verr *ValidationError
	_, err = paid.ApplyPayment(10, "CASH", false)
	require.ErrorAs(t, err, &verr)

	_, err = paid.ApplyPayment(0, "", true)
	require.ErrorAs(t, err, &verr)
}

func TestApplyPaymentDeferred(t *testing.T) {
	order, err := pendingOrder(500).ApplyPayment(0, "", true)
	require.NoError(t, err)
	require.Equal(t, 0.0, order.Paid)
	require.Equal(t, 500.0, order.Remaining)
	require.Equal(t, StatusDeferred, order.Status)
	require.Equal(t, MethodDeferred, *order.Method)

	// A deferred order can still take real payments later.
	order, err = order.ApplyPayment(500, "CASH", false)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, order.Status)
}

func TestMarkRunningAccountDeliveredIdempotent(t *testing.T) {
	order := Order{ID: 2, Number: 11, Total: 700, Remaining: 700, Status: StatusRunningAccount}

	once, err := order.MarkRunningAccountDelivered()
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, once.Status)

	twice, err := once.MarkRunningAccountDelivered()
	require.NoError(t, err)
	require.Equal(t, once, twice)
}

func TestMarkRunningAccountDeliveredRejectsOtherStatuses(t *testing.T) {
	var verr *ValidationError
	_, err := pendingOrder(100).MarkRunningAccountDelivered()
	require.ErrorAs(t, err, &verr)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("PARTIALLY_PAID")
	require.NoError(t, err)
	require.Equal(t, StatusPartiallyPaid, s)

	_, err = ParseStatus("3")
	require.Error(t, err)
}
