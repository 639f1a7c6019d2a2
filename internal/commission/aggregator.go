package commission

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"wikenfarma-system/internal/database/models"
)

// RevenueBreakdown is the per-period sales picture for one informatore.
// GestLine and direct_sales order tags both land in DirectSales; they are
// one revenue stream with two ingestion paths.
type RevenueBreakdown struct {
	IqviaSales           decimal.Decimal
	WikenshipSales       decimal.Decimal
	DirectSales          decimal.Decimal
	TotalSales           decimal.Decimal
	AvgSalesLast12Months decimal.Decimal
	MonthlyVisits        int
}

// Aggregator reads order and visit data; it never writes. Absence of data
// yields a zeroed breakdown, the normal case for new hires.
type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return &ValidationError{Field: "month", Reason: "must be between 1 and 12"}
	}
	if year < 2000 || year > 2100 {
		return &ValidationError{Field: "year", Reason: "out of range"}
	}
	return nil
}

// periodBounds returns the half-open [start, end) window of a calendar month.
func periodBounds(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// monthsAvailable counts calendar months from the hire month through the
// target month, clamped to [1, 12]. The trailing average divides by this,
// never by zero.
func monthsAvailable(hire time.Time, month, year int) int {
	months := (year-hire.Year())*12 + (month - int(hire.Month())) + 1
	if months < 1 {
		return 1
	}
	if months > 12 {
		return 12
	}
	return months
}

// TrailingAverage is the simple average of windowTotal over the months the
// informatore has been active within the window.
func TrailingAverage(windowTotal decimal.Decimal, months int) decimal.Decimal {
	if months < 1 {
		months = 1
	}
	return windowTotal.Div(decimal.NewFromInt(int64(months)))
}

// sourceTotal is one row of the per-source SUM query.
type sourceTotal struct {
	Source string
	Total  string
}

// parseAggregate reads one SUM column. An empty value means the query matched
// no rows; anything else that fails to parse is a corrupt amount column and
// must surface, never silently understate sales.
func parseAggregate(value, field string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Reason: "aggregate is not a valid amount: " + value}
	}
	return amount, nil
}

// applySourceTotals folds the per-source rows into the breakdown. GestLine
// and direct_sales tags land in the same stream; unknown tags are skipped.
func applySourceTotals(breakdown *RevenueBreakdown, rows []sourceTotal) error {
	for _, row := range rows {
		total, err := parseAggregate(row.Total, "total_amount")
		if err != nil {
			return err
		}
		switch row.Source {
		case models.SourceIQVIA:
			breakdown.IqviaSales = breakdown.IqviaSales.Add(total)
		case models.SourceWikenship:
			breakdown.WikenshipSales = breakdown.WikenshipSales.Add(total)
		case models.SourceGestline, models.SourceDirectSales:
			breakdown.DirectSales = breakdown.DirectSales.Add(total)
		}
	}
	breakdown.TotalSales = breakdown.IqviaSales.
		Add(breakdown.WikenshipSales).
		Add(breakdown.DirectSales)
	return nil
}

func (a *Aggregator) Breakdown(ctx context.Context, inf *models.Informatore, month, year int) (*RevenueBreakdown, error) {
	if err := ValidatePeriod(month, year); err != nil {
		return nil, err
	}
	start, end := periodBounds(month, year)

	var sourceTotals []sourceTotal
	err := a.db.WithContext(ctx).Model(&models.Order{}).
		Select("source, COALESCE(SUM(total_amount), 0) as total").
		Where("informatore_id = ? AND order_date >= ? AND order_date < ?", inf.ID, start, end).
		Group("source").
		Scan(&sourceTotals).Error
	if err != nil {
		return nil, err
	}

	breakdown := &RevenueBreakdown{
		IqviaSales:           decimal.Zero,
		WikenshipSales:       decimal.Zero,
		DirectSales:          decimal.Zero,
		TotalSales:           decimal.Zero,
		AvgSalesLast12Months: decimal.Zero,
	}
	if err := applySourceTotals(breakdown, sourceTotals); err != nil {
		return nil, err
	}

	var visitCount int64
	err = a.db.WithContext(ctx).Model(&models.Visit{}).
		Where("informatore_id = ? AND visit_date >= ? AND visit_date < ?", inf.ID, start, end).
		Count(&visitCount).Error
	if err != nil {
		return nil, err
	}
	breakdown.MonthlyVisits = int(visitCount)

	windowStart := start.AddDate(0, -11, 0)
	var windowTotal struct {
		Total string
	}
	err = a.db.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0) as total").
		Where("informatore_id = ? AND order_date >= ? AND order_date < ?", inf.ID, windowStart, end).
		Scan(&windowTotal).Error
	if err != nil {
		return nil, err
	}
	total, err := parseAggregate(windowTotal.Total, "total_amount")
	if err != nil {
		return nil, err
	}

	hire := start
	if inf.HireDate != nil {
		hire = *inf.HireDate
	} else if inf.CreatedAt != nil {
		hire = *inf.CreatedAt
	}
	breakdown.AvgSalesLast12Months = TrailingAverage(total, monthsAvailable(hire, month, year))

	return breakdown, nil
}

// MonthlySales returns the total commissionable sales for one month, the
// growth-bonus basis for the following month.
func (a *Aggregator) MonthlySales(ctx context.Context, informatoreID int64, month, year int) (decimal.Decimal, error) {
	start, end := periodBounds(month, year)
	var row struct {
		Total string
	}
	err := a.db.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0) as total").
		Where("informatore_id = ? AND order_date >= ? AND order_date < ?", informatoreID, start, end).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return parseAggregate(row.Total, "total_amount")
}

// OrdersForPeriod loads the contributing orders date-ascending for the log
// builder.
func (a *Aggregator) OrdersForPeriod(ctx context.Context, informatoreID int64, month, year int) ([]OrderInput, error) {
	start, end := periodBounds(month, year)
	var orders []models.Order
	err := a.db.WithContext(ctx).
		Where("informatore_id = ? AND order_date >= ? AND order_date < ?", informatoreID, start, end).
		Order("order_date asc, id asc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	inputs := make([]OrderInput, 0, len(orders))
	for _, order := range orders {
		amount, err := decimal.NewFromString(order.TotalAmount)
		if err != nil {
			return nil, &ValidationError{Field: "order_amount", Reason: "order " + order.CustomerName + " has a malformed amount"}
		}
		inputs = append(inputs, OrderInput{
			ID:           order.ID,
			Date:         timeOrZero(order.OrderDate),
			CustomerName: order.CustomerName,
			CustomerType: order.CustomerType,
			Source:       order.Source,
			Amount:       amount,
		})
	}
	return inputs, nil
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
