package commission

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// OrderInput is one commissionable order as seen by the engine.
type OrderInput struct {
	ID           int64
	Date         time.Time
	CustomerName string
	CustomerType string
	Source       string
	Amount       decimal.Decimal
}

// LogEntry is one per-order audit row. CommissionAmount is the pre-cutoff
// commission; CutOffAmount is the slice of it absorbed by the monthly
// cut-off.
type LogEntry struct {
	OrderID          int64
	OrderDate        time.Time
	CustomerName     string
	CustomerType     string
	Source           string
	OrderAmount      decimal.Decimal
	CommissionRate   decimal.Decimal
	CommissionAmount decimal.Decimal
	CutOffApplied    bool
	CutOffAmount     decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// BuildLogs expands a freelancer period into per-order audit rows. The
// cut-off is a threshold on cumulative monthly sales, not per order, so it is
// exhausted deterministically: orders run in date-ascending order (order ID
// breaks ties) and the earliest orders absorb the cut-off until the
// threshold amount is spent. Date ascending is the house default tie-break;
// the read API may re-sort for presentation.
func BuildLogs(orders []OrderInput, rate, cutOff decimal.Decimal) []LogEntry {
	sorted := make([]OrderInput, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	remaining := cutOff
	logs := make([]LogEntry, 0, len(sorted))
	for _, order := range sorted {
		commission := order.Amount.Mul(rate).Div(oneHundred)

		consumed := decimal.Zero
		if remaining.GreaterThan(decimal.Zero) {
			consumed = decimal.Min(remaining, order.Amount)
			remaining = remaining.Sub(consumed)
		}
		cutAmount := consumed.Mul(rate).Div(oneHundred)

		logs = append(logs, LogEntry{
			OrderID:          order.ID,
			OrderDate:        order.Date,
			CustomerName:     order.CustomerName,
			CustomerType:     order.CustomerType,
			Source:           order.Source,
			OrderAmount:      order.Amount,
			CommissionRate:   rate,
			CommissionAmount: commission,
			CutOffApplied:    consumed.GreaterThan(decimal.Zero),
			CutOffAmount:     cutAmount,
		})
	}
	return logs
}
