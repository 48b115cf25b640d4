// Package ledger turns raw payment and expense records into the aggregated
// figures a closing is built from.
package ledger

import (
	"strings"

	"cajaflow/domain"
	"cajaflow/internal/money"
)

// AggregateByMethod groups payments by method name in first-seen order,
// summing totals and keeping the itemized amounts. Records without a method
// land in the NO METHOD bucket rather than being dropped. The per-method sum
// does not depend on input order; only the itemization does.
func AggregateByMethod(payments []domain.Payment) []domain.MethodTotal {
	index := make(map[string]int, len(payments))
	var totals []domain.MethodTotal

	for _, p := range payments {
		method := strings.TrimSpace(p.Method)
		if method == "" {
			method = domain.MethodNone
		}
		i, ok := index[method]
		if !ok {
			i = len(totals)
			index[method] = i
			totals = append(totals, domain.MethodTotal{Method: method})
		}
		totals[i].Total = money.Add2(totals[i].Total, p.Amount)
		totals[i].Amounts = append(totals[i].Amounts, p.Amount)
	}
	return totals
}

// CollectedTotal sums every aggregated method except the deferred sentinel,
// which marks money promised, not money in hand.
func CollectedTotal(totals []domain.MethodTotal) float64 {
	var sum float64
	for _, t := range totals {
		if t.Method == domain.MethodDeferred {
			continue
		}
		sum = money.Add2(sum, t.Total)
	}
	return sum
}
