package model

import (
	"time"

	"github.com/google/uuid"
)

// Entrada is a visitor arrival. Numero restarts at 1 every calendar month;
// Periodo ("2006-01") is derived from Fecha and backs the (periodo, numero)
// uniqueness.
type Entrada struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero      int       `gorm:"not null;uniqueIndex:idx_entradas_periodo_numero,priority:2"`
	Periodo     string    `gorm:"type:char(7);not null;uniqueIndex:idx_entradas_periodo_numero,priority:1"`
	Fecha       time.Time `gorm:"type:date;not null;index"`
	HoraEntrada string    `gorm:"type:varchar(5);not null"`
	Nombre      string    `gorm:"not null"`
	DPI         string    `gorm:"column:dpi;type:varchar(13);not null;index"`
	FotoDPI     *string   `gorm:"column:foto_dpi"`
	Motivo      string    `gorm:"not null"`
	Empresa     string    `gorm:"not null"`
	Firma       string    `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Salida is a weak reference: no FK constraint, deleting the entrada leaves it orphaned.
	Salida *Salida `gorm:"foreignKey:EntradaID"`
}

func (Entrada) TableName() string { return "entradas" }

// PeriodoDe formats the month key used by Periodo and the monthly counter.
func PeriodoDe(fecha time.Time) string { return fecha.Format("2006-01") }
