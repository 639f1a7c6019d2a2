package models

import "time"

const (
	EmploymentEmployee   = "employee"
	EmploymentFreelancer = "freelancer"

	RoleInformatore = "informatore"
	RoleCapoArea    = "capo_area"

	UserTypeAdmin       = "admin"
	UserTypeInformatore = "informatore"
)

type User struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	Username      string `gorm:"uniqueIndex;not null"`
	Email         string `gorm:"uniqueIndex;not null"`
	Password      string `gorm:"not null"`
	Firstname     string `gorm:"not null"`
	Lastname      string `gorm:"not null"`
	UserType      string `gorm:"type:varchar(16);not null"`
	InformatoreID *int64 `gorm:"index"`
	IsActive      bool   `gorm:"default:true"`
	LastLogin     *time.Time
	CreatedAt     *time.Time `gorm:"autoCreateTime"`
	UpdatedAt     *time.Time `gorm:"autoUpdateTime"`

	Informatore *Informatore `gorm:"foreignKey:InformatoreID"`
}

// Informatore is a pharmaceutical sales representative (ISF). Freelancer
// profiles carry the commission fields; employee profiles leave them nil.
// Profiles are never deleted while orders reference them, only deactivated.
type Informatore struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	FirstName      string `gorm:"not null"`
	LastName       string `gorm:"not null"`
	Email          string `gorm:"uniqueIndex;not null"`
	Phone          string
	EmploymentType string `gorm:"type:varchar(16);index;not null"`
	Role           string `gorm:"type:varchar(16);not null"`
	Area           string `gorm:"type:varchar(64);index"`
	CapoAreaID     *int64 `gorm:"index"`
	FixedSalary    string `gorm:"type:decimal(18,2);not null"`
	// Percent rate applied to each revenue source, freelancer only.
	CommissionRate *string `gorm:"type:decimal(5,2)"`
	// Monthly cumulative sales threshold below which no commission accrues.
	CutOffAmount *string `gorm:"type:decimal(18,2)"`
	// Override percent on subordinate commissions, capo_area only.
	TeamOverrideRate *string `gorm:"type:decimal(5,2)"`
	HireDate         *time.Time
	IsActive         bool       `gorm:"default:true"`
	CreatedAt        *time.Time `gorm:"autoCreateTime"`
	UpdatedAt        *time.Time `gorm:"autoUpdateTime"`

	CapoArea     *Informatore  `gorm:"foreignKey:CapoAreaID"`
	Subordinates []Informatore `gorm:"foreignKey:CapoAreaID"`
}

func (Informatore) TableName() string {
	return "informatori"
}
