package model

import (
	"time"

	"github.com/google/uuid"
)

// Salida records the departure of the visitor registered by EntradaID.
// The unique index enforces at most one salida per entrada.
type Salida struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EntradaID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	HoraSalida string    `gorm:"type:varchar(5);not null"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time

	Entrada *Entrada `gorm:"foreignKey:EntradaID"`
}

func (Salida) TableName() string { return "salidas" }
