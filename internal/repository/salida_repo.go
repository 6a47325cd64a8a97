package repository

import (
	"context"

	"github.com/andres1jh8/Registro-Back/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SalidaRepository interface {
	// Create returns gorm.ErrDuplicatedKey when the entrada already has a salida.
	Create(ctx context.Context, s *model.Salida) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Salida, error)
	FindByEntradaID(ctx context.Context, entradaID uuid.UUID) (*model.Salida, error)
	Update(ctx context.Context, s *model.Salida) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page, limit int) ([]model.Salida, int64, error)
}

type salidaRepo struct{ db *gorm.DB }

func NewSalidaRepository(db *gorm.DB) SalidaRepository { return &salidaRepo{db: db} }

func (r *salidaRepo) Create(ctx context.Context, s *model.Salida) error {
	return r.db.WithContext(ctx).Omit("Entrada").Create(s).Error
}

func (r *salidaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Salida, error) {
	var s model.Salida
	err := r.db.WithContext(ctx).Preload("Entrada").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *salidaRepo) FindByEntradaID(ctx context.Context, entradaID uuid.UUID) (*model.Salida, error) {
	var s model.Salida
	err := r.db.WithContext(ctx).Where("entrada_id = ?", entradaID).First(&s).Error
	return &s, err
}

func (r *salidaRepo) Update(ctx context.Context, s *model.Salida) error {
	return r.db.WithContext(ctx).Model(&model.Salida{}).
		Where("id = ?", s.ID).
		Update("hora_salida", s.HoraSalida).Error
}

func (r *salidaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Salida{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns salidas newest first with their entrada (nil when orphaned).
func (r *salidaRepo) List(ctx context.Context, page, limit int) ([]model.Salida, int64, error) {
	var salidas []model.Salida
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Salida{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Entrada").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&salidas).Error
	return salidas, total, err
}
