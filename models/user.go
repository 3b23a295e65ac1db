package models

import "gorm.io/gorm"

// User is a platform account: landlords, caretakers and back-office admins.
type User struct {
	gorm.Model
	FullName     string `json:"fullName"`
	Email        string `json:"email" gorm:"uniqueIndex"`
	PhoneNumber  string `json:"phoneNumber"`
	PasswordHash string `json:"-"`
	Role         string `json:"role" gorm:"default:'landlord'"` // landlord, caretaker, admin
}
