package model

// ContadorMensual holds the last numero handed out for a month.
type ContadorMensual struct {
	Periodo string `gorm:"type:char(7);primaryKey"`
	Ultimo  int    `gorm:"not null;default:0"`
}

func (ContadorMensual) TableName() string { return "contadores_mensuales" }
