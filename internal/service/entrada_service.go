package service

import (
	"context"
	"errors"
	"time"

	"github.com/andres1jh8/Registro-Back/internal/apierror"
	"github.com/andres1jh8/Registro-Back/internal/config"
	"github.com/andres1jh8/Registro-Back/internal/dto"
	"github.com/andres1jh8/Registro-Back/internal/infra"
	"github.com/andres1jh8/Registro-Back/internal/model"
	"github.com/andres1jh8/Registro-Back/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	carpetaFirmas = "firmas"
	carpetaDPI    = "dpi"

	msgEntradaNoEncontrada = "Entrada no encontrada"
)

type EntradaService interface {
	Crear(ctx context.Context, req dto.CrearEntradaRequest, imgs dto.ImagenesEntrada) (*dto.EntradaResponse, error)
	Listar(ctx context.Context, filter dto.EntradaFilter) (*dto.EntradaListResponse, error)
	MesesConVisitasCompletas(ctx context.Context) ([]dto.MesResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.EntradaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarEntradaRequest, imgs dto.ImagenesEntrada) (*dto.EntradaResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type entradaService struct {
	repo   repository.EntradaRepository
	images infra.ImageStore
	cache  *infra.Cache
	loc    *time.Location
	now    func() time.Time
}

func NewEntradaService(repo repository.EntradaRepository, images infra.ImageStore, cache *infra.Cache, cfg *config.Config) EntradaService {
	return &entradaService{repo: repo, images: images, cache: cache, loc: cfg.Location(), now: time.Now}
}

func (s *entradaService) Crear(ctx context.Context, req dto.CrearEntradaRequest, imgs dto.ImagenesEntrada) (*dto.EntradaResponse, error) {
	fecha, err := s.parseFecha(req.Fecha)
	if err != nil {
		return nil, err
	}
	if imgs.Firma == nil {
		return nil, apierror.Validation("Error de validación", map[string]string{"firma": "La firma es obligatoria"})
	}

	firma, err := s.upload(ctx, carpetaFirmas, imgs.Firma)
	if err != nil {
		return nil, err
	}
	var fotoDPI *string
	if imgs.FotoDPI != nil {
		ref, err := s.upload(ctx, carpetaDPI, imgs.FotoDPI)
		if err != nil {
			return nil, err
		}
		fotoDPI = &ref
	}

	e := &model.Entrada{
		Fecha:       fecha,
		HoraEntrada: req.HoraEntrada,
		Nombre:      req.Nombre,
		DPI:         req.DPI,
		FotoDPI:     fotoDPI,
		Motivo:      req.Motivo,
		Empresa:     req.Empresa,
		Firma:       firma,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	log.Info().Str("entrada_id", e.ID.String()).Str("periodo", e.Periodo).Int("numero", e.Numero).Msg("entrada registrada")
	resp := mapEntrada(e)
	return &resp, nil
}

func (s *entradaService) Listar(ctx context.Context, filter dto.EntradaFilter) (*dto.EntradaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Month == 0 || filter.Year == 0 {
		filter.Month, filter.Year = 0, 0
	}

	entradas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := make([]dto.EntradaResponse, len(entradas))
	for i := range entradas {
		data[i] = mapEntrada(&entradas[i])
	}

	resp := &dto.EntradaListResponse{
		Success:    true,
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: dto.TotalPages(total, filter.Limit),
		Month:      filter.Month,
		Year:       filter.Year,
		DPI:        filter.DPI,
		Empresa:    filter.Empresa,
	}
	if filter.All {
		resp.Page = 1
		resp.Limit = int(total)
		resp.TotalPages = 1
	}
	return resp, nil
}

func (s *entradaService) MesesConVisitasCompletas(ctx context.Context) ([]dto.MesResponse, error) {
	var meses []dto.MesResponse
	if s.cache.Get(ctx, cacheKeyMeses, &meses) {
		return meses, nil
	}
	meses, err := s.repo.MesesConSalida(ctx)
	if err != nil {
		return nil, err
	}
	if meses == nil {
		meses = []dto.MesResponse{}
	}
	s.cache.Set(ctx, cacheKeyMeses, meses)
	return meses, nil
}

func (s *entradaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.EntradaResponse, error) {
	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := mapEntrada(e)
	return &resp, nil
}

func (s *entradaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarEntradaRequest, imgs dto.ImagenesEntrada) (*dto.EntradaResponse, error) {
	// blank values are absent here; only Crear defaults an empty fecha to today
	req.Normalizar()

	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	periodoAnterior := e.Periodo

	if req.Fecha != nil {
		fecha, err := s.parseFecha(*req.Fecha)
		if err != nil {
			return nil, err
		}
		e.Fecha = fecha
	}
	if req.HoraEntrada != nil {
		if e.Salida != nil && *req.HoraEntrada > e.Salida.HoraSalida {
			return nil, apierror.Validation("Error de validación", map[string]string{
				"horaEntrada": "La hora de entrada no puede ser posterior a la hora de salida (" + e.Salida.HoraSalida + ")",
			})
		}
		e.HoraEntrada = *req.HoraEntrada
	}
	if req.Nombre != nil {
		e.Nombre = *req.Nombre
	}
	if req.DPI != nil {
		e.DPI = *req.DPI
	}
	if req.Motivo != nil {
		e.Motivo = *req.Motivo
	}
	if req.Empresa != nil {
		e.Empresa = *req.Empresa
	}
	if imgs.Firma != nil {
		ref, err := s.upload(ctx, carpetaFirmas, imgs.Firma)
		if err != nil {
			return nil, err
		}
		e.Firma = ref
	}
	if imgs.FotoDPI != nil {
		ref, err := s.upload(ctx, carpetaDPI, imgs.FotoDPI)
		if err != nil {
			return nil, err
		}
		e.FotoDPI = &ref
	}

	if err := s.repo.Update(ctx, e, periodoAnterior); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cacheKeyMeses, cacheKeyReporte(periodoAnterior), cacheKeyReporte(e.Periodo))

	resp := mapEntrada(e)
	return &resp, nil
}

// Eliminar does not cascade: a salida of the removed entrada stays orphaned.
func (s *entradaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	e, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound(msgEntradaNoEncontrada)
		}
		return err
	}
	s.cache.Invalidate(ctx, cacheKeyMeses, cacheKeyReporte(e.Periodo))
	log.Info().Str("entrada_id", id.String()).Msg("entrada eliminada")
	return nil
}

func (s *entradaService) find(ctx context.Context, id uuid.UUID) (*model.Entrada, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound(msgEntradaNoEncontrada)
		}
		return nil, err
	}
	return e, nil
}

// parseFecha accepts YYYY-MM-DD or RFC 3339, normalizes to local midnight and
// rejects future dates. An empty value means today.
func (s *entradaService) parseFecha(raw string) (time.Time, error) {
	today := midnight(s.now().In(s.loc))
	if raw == "" {
		return today, nil
	}

	var t time.Time
	if d, err := time.ParseInLocation(fechaLayout, raw, s.loc); err == nil {
		t = d
	} else if d, err := time.Parse(time.RFC3339, raw); err == nil {
		t = midnight(d.In(s.loc))
	} else {
		return time.Time{}, apierror.Validation("Error de validación", map[string]string{
			"fecha": "La fecha debe tener formato YYYY-MM-DD",
		})
	}
	if t.After(today) {
		return time.Time{}, apierror.Validation("Error de validación", map[string]string{
			"fecha": "La fecha no puede ser futura",
		})
	}
	return t, nil
}

func (s *entradaService) upload(ctx context.Context, folder string, img *dto.Imagen) (string, error) {
	ref, err := s.images.Upload(ctx, folder, img.Nombre, img.ContentType, img.Datos)
	if err != nil {
		log.Error().Err(err).Str("folder", folder).Msg("image upload failed")
		return "", err
	}
	return ref, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func mapEntrada(e *model.Entrada) dto.EntradaResponse {
	salidas := []dto.SalidaResumen{}
	if e.Salida != nil {
		salidas = append(salidas, dto.SalidaResumen{
			ID:         e.Salida.ID.String(),
			HoraSalida: e.Salida.HoraSalida,
			CreatedAt:  e.Salida.CreatedAt.Format(time.RFC3339),
		})
	}
	return dto.EntradaResponse{
		ID:          e.ID.String(),
		Numero:      e.Numero,
		Fecha:       e.Fecha.Format(fechaLayout),
		HoraEntrada: e.HoraEntrada,
		Nombre:      e.Nombre,
		DPI:         e.DPI,
		FotoDPI:     e.FotoDPI,
		Motivo:      e.Motivo,
		Empresa:     e.Empresa,
		Firma:       e.Firma,
		Salidas:     salidas,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}

func mapEntradaResumen(e *model.Entrada) *dto.EntradaResumen {
	if e == nil {
		return nil
	}
	return &dto.EntradaResumen{
		ID:          e.ID.String(),
		Numero:      e.Numero,
		Fecha:       e.Fecha.Format(fechaLayout),
		HoraEntrada: e.HoraEntrada,
		Nombre:      e.Nombre,
		DPI:         e.DPI,
		FotoDPI:     e.FotoDPI,
		Motivo:      e.Motivo,
		Empresa:     e.Empresa,
		Firma:       e.Firma,
	}
}
