package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RolAdmin    = "Admin"
	RolEmployee = "Employee"
)

// Usuario is an operator of the logbook. Accounts are only created through an
// admin-authorized registration and are never deleted.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"not null"`
	Surname      string    `gorm:"not null"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Phone        string    `gorm:"not null"`
	Role         string    `gorm:"type:varchar(20);not null;default:'Employee'"` // Admin | Employee
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }
