package models

import "gorm.io/gorm"

// LandlordPaymentChannel registers a bank paybill destination for a landlord.
// The (BankPaybillNumber, BankAccountNumber) pair resolves to at most one
// active channel; inbound bank-routed payments are attributed through it.
type LandlordPaymentChannel struct {
	gorm.Model
	LandlordID        uint   `json:"landlordId" gorm:"index;not null"`
	Landlord          User   `json:"landlord" gorm:"foreignKey:LandlordID"`
	BankName          string `json:"bankName"`
	BankPaybillNumber string `json:"bankPaybillNumber" gorm:"uniqueIndex:idx_paybill_account;not null"`
	BankAccountNumber string `json:"bankAccountNumber" gorm:"uniqueIndex:idx_paybill_account;not null"`
	Active            bool   `json:"active" gorm:"default:true"`
}
