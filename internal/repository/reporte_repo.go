package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoRow is an entrada left-joined with its salida.
type MovimientoRow struct {
	ID          uuid.UUID
	Numero      int
	Fecha       time.Time
	HoraEntrada string
	HoraSalida  *string
	Nombre      string
	DPI         string  `gorm:"column:dpi"`
	FotoDPI     *string `gorm:"column:foto_dpi"`
	Motivo      string
	Empresa     string
	Firma       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FilaReporteRow is a completed visit (entrada inner-joined with salida).
type FilaReporteRow struct {
	Numero      int
	Fecha       time.Time
	HoraEntrada string
	HoraSalida  string
	Nombre      string
	DPI         string  `gorm:"column:dpi"`
	FotoDPI     *string `gorm:"column:foto_dpi"`
	Motivo      string
	Empresa     string
	Firma       string
}

type ReporteRepository interface {
	Movimientos(ctx context.Context) ([]MovimientoRow, error)
	FilasMes(ctx context.Context, periodo string) ([]FilaReporteRow, error)
}

type reporteRepo struct{ db *gorm.DB }

func NewReporteRepository(db *gorm.DB) ReporteRepository { return &reporteRepo{db: db} }

func (r *reporteRepo) Movimientos(ctx context.Context) ([]MovimientoRow, error) {
	var rows []MovimientoRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT e.id, e.numero, e.fecha, e.hora_entrada, s.hora_salida,
		       e.nombre, e.dpi, e.foto_dpi, e.motivo, e.empresa, e.firma,
		       e.created_at, e.updated_at
		  FROM entradas e
		  LEFT JOIN salidas s ON s.entrada_id = e.id
		 ORDER BY e.fecha DESC, e.numero DESC`).
		Scan(&rows).Error
	return rows, err
}

// FilasMes drops salidas whose entrada no longer exists through the inner join.
func (r *reporteRepo) FilasMes(ctx context.Context, periodo string) ([]FilaReporteRow, error) {
	var rows []FilaReporteRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT e.numero, e.fecha, e.hora_entrada, s.hora_salida, e.nombre,
		       e.dpi, e.foto_dpi, e.motivo, e.empresa, e.firma
		  FROM salidas s
		  JOIN entradas e ON e.id = s.entrada_id
		 WHERE e.periodo = ?
		 ORDER BY e.numero ASC`, periodo).
		Scan(&rows).Error
	return rows, err
}
