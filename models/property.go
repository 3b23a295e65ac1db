package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Property is a building or plot managed for a landlord.
type Property struct {
	gorm.Model
	LandlordID uint   `json:"landlordId" gorm:"index;not null"`
	Landlord   User   `json:"landlord" gorm:"foreignKey:LandlordID"`
	Name       string `json:"name"`
	Location   string `json:"location"`
}

// Unit is a rentable unit inside a property.
type Unit struct {
	gorm.Model
	PropertyID  uint            `json:"propertyId" gorm:"index;not null"`
	Property    Property        `json:"property"`
	UnitNumber  string          `json:"unitNumber"`
	MonthlyRent decimal.Decimal `json:"monthlyRent" gorm:"type:numeric(12,2)"`
}
