package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Tenant struct {
	gorm.Model
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber" gorm:"index"`
	Email       string `json:"email"`
	NationalID  string `json:"nationalId"`
}

// Lease ties a tenant to a unit for a period; invoices are raised against it.
type Lease struct {
	gorm.Model
	UnitID      uint            `json:"unitId" gorm:"index;not null"`
	Unit        Unit            `json:"unit"`
	TenantID    uint            `json:"tenantId" gorm:"index;not null"`
	Tenant      Tenant          `json:"tenant"`
	MonthlyRent decimal.Decimal `json:"monthlyRent" gorm:"type:numeric(12,2)"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     *time.Time      `json:"endDate"`
	Active      bool            `json:"active" gorm:"default:true"`
}
