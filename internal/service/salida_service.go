package service

import (
	"context"
	"errors"
	"time"

	"github.com/andres1jh8/Registro-Back/internal/apierror"
	"github.com/andres1jh8/Registro-Back/internal/dto"
	"github.com/andres1jh8/Registro-Back/internal/infra"
	"github.com/andres1jh8/Registro-Back/internal/model"
	"github.com/andres1jh8/Registro-Back/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SalidasPorPagina is the fixed page size of GET /salidas.
const SalidasPorPagina = 20

const (
	msgSalidaNoEncontrada = "Salida no encontrada"
	msgEntradaInexistente = "No se encontró la entrada correspondiente"
	msgSalidaDuplicada    = "Ya se registró la salida de esta entrada"
)

type SalidaService interface {
	Crear(ctx context.Context, req dto.CrearSalidaRequest) (*dto.SalidaResponse, error)
	Listar(ctx context.Context, page int) (*dto.SalidaListResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.SalidaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarSalidaRequest) (*dto.SalidaResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	Movimientos(ctx context.Context) ([]dto.MovimientoResponse, error)
}

type salidaService struct {
	repo        repository.SalidaRepository
	entradaRepo repository.EntradaRepository
	reporteRepo repository.ReporteRepository
	cache       *infra.Cache
}

func NewSalidaService(
	repo repository.SalidaRepository,
	entradaRepo repository.EntradaRepository,
	reporteRepo repository.ReporteRepository,
	cache *infra.Cache,
) SalidaService {
	return &salidaService{repo: repo, entradaRepo: entradaRepo, reporteRepo: reporteRepo, cache: cache}
}

func (s *salidaService) Crear(ctx context.Context, req dto.CrearSalidaRequest) (*dto.SalidaResponse, error) {
	entradaID, err := uuid.Parse(req.EntradaID)
	if err != nil {
		return nil, apierror.Validation("Error de validación", map[string]string{"entradaId": "ID de entrada inválido"})
	}

	entrada, err := s.entradaRepo.FindByID(ctx, entradaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound(msgEntradaInexistente)
		}
		return nil, err
	}
	if entrada.Salida != nil {
		return nil, apierror.Conflict(msgSalidaDuplicada)
	}

	salida := &model.Salida{EntradaID: entradaID, HoraSalida: req.HoraSalida}
	if err := s.repo.Create(ctx, salida); err != nil {
		// concurrent request registered the salida first
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict(msgSalidaDuplicada)
		}
		return nil, err
	}
	salida.Entrada = entrada
	s.cache.Invalidate(ctx, cacheKeyMeses, cacheKeyReporte(entrada.Periodo))

	log.Info().Str("salida_id", salida.ID.String()).Str("entrada_id", entradaID.String()).Msg("salida registrada")
	resp := mapSalida(salida)
	return &resp, nil
}

func (s *salidaService) Listar(ctx context.Context, page int) (*dto.SalidaListResponse, error) {
	if page < 1 {
		page = 1
	}
	salidas, total, err := s.repo.List(ctx, page, SalidasPorPagina)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SalidaResponse, len(salidas))
	for i := range salidas {
		data[i] = mapSalida(&salidas[i])
	}
	return &dto.SalidaListResponse{
		Success:    true,
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      SalidasPorPagina,
		TotalPages: dto.TotalPages(total, SalidasPorPagina),
	}, nil
}

func (s *salidaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.SalidaResponse, error) {
	salida, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := mapSalida(salida)
	return &resp, nil
}

func (s *salidaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarSalidaRequest) (*dto.SalidaResponse, error) {
	salida, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	salida.HoraSalida = req.HoraSalida
	if err := s.repo.Update(ctx, salida); err != nil {
		return nil, err
	}
	salida.UpdatedAt = time.Now()
	s.invalidarReporte(ctx, salida)

	resp := mapSalida(salida)
	return &resp, nil
}

func (s *salidaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	salida, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound(msgSalidaNoEncontrada)
		}
		return err
	}
	s.invalidarReporte(ctx, salida)
	log.Info().Str("salida_id", id.String()).Msg("salida eliminada")
	return nil
}

// Movimientos lists every entrada newest first with its horaSalida or null.
func (s *salidaService) Movimientos(ctx context.Context) ([]dto.MovimientoResponse, error) {
	rows, err := s.reporteRepo.Movimientos(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MovimientoResponse, len(rows))
	for i, r := range rows {
		resp[i] = dto.MovimientoResponse{
			ID:          r.ID.String(),
			Numero:      r.Numero,
			Fecha:       r.Fecha.Format(fechaLayout),
			HoraEntrada: r.HoraEntrada,
			HoraSalida:  r.HoraSalida,
			Nombre:      r.Nombre,
			DPI:         r.DPI,
			FotoDPI:     r.FotoDPI,
			Motivo:      r.Motivo,
			Empresa:     r.Empresa,
			Firma:       r.Firma,
			CreatedAt:   r.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}

func (s *salidaService) find(ctx context.Context, id uuid.UUID) (*model.Salida, error) {
	salida, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound(msgSalidaNoEncontrada)
		}
		return nil, err
	}
	return salida, nil
}

func (s *salidaService) invalidarReporte(ctx context.Context, salida *model.Salida) {
	keys := []string{cacheKeyMeses}
	if salida.Entrada != nil {
		keys = append(keys, cacheKeyReporte(salida.Entrada.Periodo))
	}
	s.cache.Invalidate(ctx, keys...)
}

func mapSalida(s *model.Salida) dto.SalidaResponse {
	return dto.SalidaResponse{
		ID:         s.ID.String(),
		EntradaID:  s.EntradaID.String(),
		HoraSalida: s.HoraSalida,
		Entrada:    mapEntradaResumen(s.Entrada),
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  s.UpdatedAt.Format(time.RFC3339),
	}
}
