package models

import "time"

const (
	StatusDraft      = "draft"
	StatusCalculated = "calculated"
	StatusApproved   = "approved"
	StatusPaid       = "paid"
)

// Compensation is the monthly pay record for one informatore. One row per
// (informatore, month, year); recalculation overwrites it in place.
//
// Invariant: totalGross = fixedSalary + iqviaCommission + wikenshipCommission
// + directSalesCommission + performanceBonus + teamCommission - visitPenalty
// - cutOffReduction, floored at zero. Per-source commission columns hold the
// pre-cutoff amounts; the cut-off is carried explicitly in CutOffReduction.
type Compensation struct {
	ID            int64 `gorm:"primaryKey;autoIncrement"`
	InformatoreID int64 `gorm:"not null;uniqueIndex:idx_compensation_period"`
	Month         int   `gorm:"not null;uniqueIndex:idx_compensation_period"`
	Year          int   `gorm:"not null;uniqueIndex:idx_compensation_period"`

	FixedSalary           string `gorm:"type:decimal(18,2);not null"`
	IqviaCommission       string `gorm:"type:decimal(18,2);not null"`
	WikenshipCommission   string `gorm:"type:decimal(18,2);not null"`
	DirectSalesCommission string `gorm:"type:decimal(18,2);not null"`
	PerformanceBonus      string `gorm:"type:decimal(18,2);not null"`
	VisitPenalty          string `gorm:"type:decimal(18,2);not null"`
	CutOffReduction       string `gorm:"type:decimal(18,2);not null"`
	TeamCommission        string `gorm:"type:decimal(18,2);not null"`
	TotalGross            string `gorm:"type:decimal(18,2);not null"`
	TotalNet              string `gorm:"type:decimal(18,2);not null"`

	TotalSales           string `gorm:"type:decimal(18,2);not null"`
	AvgSalesLast12Months string `gorm:"type:decimal(18,2);not null"`
	MonthlyVisits        int    `gorm:"not null"`

	Status string `gorm:"type:varchar(16);index;not null"`
	// Stale marks a capo_area record whose subordinates were recalculated
	// after this row was computed.
	Stale        bool  `gorm:"default:false"`
	CalculatedBy int64 `gorm:"not null"`
	ApprovedBy   *int64
	PaidBy       *int64
	Notes        *string `gorm:"type:text"`
	CalculatedAt *time.Time
	PaidAt       *time.Time
	CreatedAt    *time.Time `gorm:"autoCreateTime"`
	UpdatedAt    *time.Time `gorm:"autoUpdateTime"`

	Informatore    *Informatore    `gorm:"foreignKey:InformatoreID"`
	CommissionLogs []CommissionLog `gorm:"foreignKey:CompensationID"`
}

// CommissionLog is the per-order audit row behind a freelancer compensation.
// Immutable once written; regenerated wholesale on recalculation.
type CommissionLog struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"`
	CompensationID int64      `gorm:"index;not null"`
	InformatoreID  int64      `gorm:"index;not null"`
	Month          int        `gorm:"not null"`
	Year           int        `gorm:"not null"`
	OrderID        int64      `gorm:"not null"`
	OrderDate      *time.Time `gorm:"not null"`
	CustomerName   string     `gorm:"not null"`
	CustomerType   string     `gorm:"type:varchar(16);not null"`
	Source         string     `gorm:"type:varchar(16);not null"`
	OrderAmount    string     `gorm:"type:decimal(18,2);not null"`
	CommissionRate string     `gorm:"type:decimal(5,2);not null"`
	// Pre-cutoff commission for this order; CutOffAmount records how much of
	// it the cumulative cut-off absorbed.
	CommissionAmount string     `gorm:"type:decimal(18,2);not null"`
	CutOffApplied    bool       `gorm:"not null"`
	CutOffAmount     string     `gorm:"type:decimal(18,2);not null"`
	CreatedAt        *time.Time `gorm:"autoCreateTime"`
}

// BonusMalus is an ad-hoc admin adjustment for one period. Positive amounts
// feed the performance bonus, negative amounts the visit penalty; the next
// calculation for the period consumes it.
type BonusMalus struct {
	ID            int64      `gorm:"primaryKey;autoIncrement"`
	InformatoreID int64      `gorm:"index;not null"`
	Month         int        `gorm:"not null"`
	Year          int        `gorm:"not null"`
	Amount        string     `gorm:"type:decimal(18,2);not null"`
	Reason        string     `gorm:"type:text;not null"`
	CreatedBy     int64      `gorm:"not null"`
	CreatedAt     *time.Time `gorm:"autoCreateTime"`
}

func (BonusMalus) TableName() string {
	return "bonus_malus"
}
