package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/andres1jh8/Registro-Back/internal/dto"
	"github.com/andres1jh8/Registro-Back/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EntradaRepository interface {
	// Create assigns the next numero of the entrada's month and inserts it in
	// the same transaction.
	Create(ctx context.Context, e *model.Entrada) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Entrada, error)
	// Update saves e; when its periodo differs from periodoAnterior a fresh
	// numero is taken from the new month first.
	Update(ctx context.Context, e *model.Entrada, periodoAnterior string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter dto.EntradaFilter) ([]model.Entrada, int64, error)
	MesesConSalida(ctx context.Context) ([]dto.MesResponse, error)
}

type entradaRepo struct{ db *gorm.DB }

func NewEntradaRepository(db *gorm.DB) EntradaRepository { return &entradaRepo{db: db} }

// nextNumeroSQL bumps the month counter under its row lock. The first use of a
// month seeds the counter from whatever entradas already exist.
const nextNumeroSQL = `
INSERT INTO contadores_mensuales (periodo, ultimo)
VALUES (@periodo, COALESCE((SELECT MAX(numero) FROM entradas WHERE periodo = @periodo), 0) + 1)
ON CONFLICT (periodo) DO UPDATE
   SET ultimo = GREATEST(contadores_mensuales.ultimo + 1, EXCLUDED.ultimo)
RETURNING ultimo`

func nextNumero(tx *gorm.DB, periodo string) (int, error) {
	var numero int
	err := tx.Raw(nextNumeroSQL, map[string]interface{}{"periodo": periodo}).Scan(&numero).Error
	if err != nil {
		return 0, fmt.Errorf("siguiente numero %s: %w", periodo, err)
	}
	return numero, nil
}

func (r *entradaRepo) Create(ctx context.Context, e *model.Entrada) error {
	e.Periodo = model.PeriodoDe(e.Fecha)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		numero, err := nextNumero(tx, e.Periodo)
		if err != nil {
			return err
		}
		e.Numero = numero
		return tx.Omit("Salida").Create(e).Error
	})
}

func (r *entradaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Entrada, error) {
	var e model.Entrada
	err := r.db.WithContext(ctx).Preload("Salida").First(&e, "id = ?", id).Error
	return &e, err
}

func (r *entradaRepo) Update(ctx context.Context, e *model.Entrada, periodoAnterior string) error {
	e.Periodo = model.PeriodoDe(e.Fecha)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if e.Periodo != periodoAnterior {
			numero, err := nextNumero(tx, e.Periodo)
			if err != nil {
				return err
			}
			e.Numero = numero
		}
		return tx.Omit("Salida").Save(e).Error
	})
}

func (r *entradaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Entrada{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *entradaRepo) List(ctx context.Context, filter dto.EntradaFilter) ([]model.Entrada, int64, error) {
	var entradas []model.Entrada
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Entrada{})
	if filter.Month > 0 && filter.Year > 0 {
		q = q.Where("periodo = ?", fmt.Sprintf("%04d-%02d", filter.Year, filter.Month))
	}
	if filter.DPI != "" {
		q = q.Where("dpi = ?", filter.DPI)
	}
	if filter.Empresa != "" {
		q = q.Where("empresa ILIKE ?", "%"+escapeLike(filter.Empresa)+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Preload("Salida").Order("fecha ASC, numero ASC")
	if !filter.All {
		q = q.Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit)
	}
	err := q.Find(&entradas).Error
	return entradas, total, err
}

func (r *entradaRepo) MesesConSalida(ctx context.Context) ([]dto.MesResponse, error) {
	var meses []dto.MesResponse
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT
		       EXTRACT(YEAR FROM e.fecha)::int  AS year,
		       EXTRACT(MONTH FROM e.fecha)::int AS month
		  FROM entradas e
		  JOIN salidas s ON s.entrada_id = e.id
		 ORDER BY year DESC, month DESC`).
		Scan(&meses).Error
	return meses, err
}

// escapeLike neutralizes LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
