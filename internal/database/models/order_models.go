package models

import "time"

const (
	SourceIQVIA       = "iqvia"
	SourceWikenship   = "wikenship"
	SourceGestline    = "gestline"
	SourceDirectSales = "direct_sales"

	CustomerPrivate  = "private"
	CustomerPharmacy = "pharmacy"
)

// Order is the commissionable revenue record fed by the external channels
// (IQVIA/PharmaEVO imports, WIKENSHIP e-commerce, GestLine direct sales).
// Attribution to an informatore is set by the owning subsystem at creation.
type Order struct {
	ID            int64      `gorm:"primaryKey;autoIncrement"`
	InformatoreID int64      `gorm:"index;not null"`
	Source        string     `gorm:"type:varchar(16);index;not null"`
	OrderDate     *time.Time `gorm:"index;not null"`
	CustomerName  string     `gorm:"not null"`
	CustomerType  string     `gorm:"type:varchar(16);not null"`
	TotalAmount   string     `gorm:"type:decimal(18,2);not null"`
	Reference     *string    `gorm:"type:varchar(64)"`
	CreatedAt     *time.Time `gorm:"autoCreateTime"`
	UpdatedAt     *time.Time `gorm:"autoUpdateTime"`
}

// Visit is a recorded medical-rep visit; the monthly count feeds the
// visit-penalty rule.
type Visit struct {
	ID            int64      `gorm:"primaryKey;autoIncrement"`
	InformatoreID int64      `gorm:"index;not null"`
	VisitDate     *time.Time `gorm:"index;not null"`
	DoctorName    string     `gorm:"not null"`
	Notes         *string    `gorm:"type:text"`
	CreatedAt     *time.Time `gorm:"autoCreateTime"`
}
