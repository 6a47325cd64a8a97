package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/andres1jh8/Registro-Back/internal/apierror"
	"github.com/andres1jh8/Registro-Back/internal/config"
	"github.com/andres1jh8/Registro-Back/internal/dto"
	"github.com/andres1jh8/Registro-Back/internal/infra"
	"github.com/andres1jh8/Registro-Back/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReporteEnqueuer queues the asynchronous e-mail delivery of a report.
type ReporteEnqueuer interface {
	EnqueueReporteEmail(ctx context.Context, job dto.ReporteEmailJob) error
}

// ArchivoReporte is a rendered report on disk. Path is unique per call and
// must be removed by the caller once sent.
type ArchivoReporte struct {
	Path     string
	Filename string
}

type ReporteService interface {
	Mensual(ctx context.Context, anio, mes int) (*dto.ReporteMensualResponse, error)
	GenerarExcel(ctx context.Context, anio, mes int) (*ArchivoReporte, error)
	GenerarPDF(ctx context.Context, anio, mes int) (*ArchivoReporte, error)
	EnviarPorEmail(ctx context.Context, anio, mes int, email string) error
}

type reporteService struct {
	repo     repository.ReporteRepository
	images   infra.ImageFetcher
	cache    *infra.Cache
	enqueuer ReporteEnqueuer
	dir      string
}

func NewReporteService(
	repo repository.ReporteRepository,
	images infra.ImageFetcher,
	cache *infra.Cache,
	enqueuer ReporteEnqueuer,
	cfg *config.Config,
) ReporteService {
	return &reporteService{repo: repo, images: images, cache: cache, enqueuer: enqueuer, dir: cfg.ReportDir}
}

// ValidarPeriodo checks the anio/mes path parameters.
func ValidarPeriodo(anio, mes int) error {
	fields := map[string]string{}
	if anio < 2000 || anio > 2100 {
		fields["anio"] = "El año debe estar entre 2000 y 2100"
	}
	if mes < 1 || mes > 12 {
		fields["mes"] = "El mes debe estar entre 1 y 12"
	}
	if len(fields) > 0 {
		return apierror.Validation("Periodo inválido", fields)
	}
	return nil
}

func (s *reporteService) Mensual(ctx context.Context, anio, mes int) (*dto.ReporteMensualResponse, error) {
	filas, err := s.filas(ctx, anio, mes)
	if err != nil {
		return nil, err
	}
	return &dto.ReporteMensualResponse{
		Success: true,
		Anio:    anio,
		Mes:     mes,
		Total:   len(filas),
		Data:    filas,
	}, nil
}

func (s *reporteService) GenerarExcel(ctx context.Context, anio, mes int) (*ArchivoReporte, error) {
	filas, err := s.filas(ctx, anio, mes)
	if err != nil {
		return nil, err
	}
	archivo := s.archivo(anio, mes, "xlsx")
	if err := infra.GenerateReporteExcel(ctx, filas, s.images, archivo.Path); err != nil {
		return nil, err
	}
	log.Info().Int("anio", anio).Int("mes", mes).Int("filas", len(filas)).Msg("reporte excel generado")
	return archivo, nil
}

func (s *reporteService) GenerarPDF(ctx context.Context, anio, mes int) (*ArchivoReporte, error) {
	filas, err := s.filas(ctx, anio, mes)
	if err != nil {
		return nil, err
	}
	archivo := s.archivo(anio, mes, "pdf")
	if err := infra.GenerateReportePDF(filas, anio, mes, archivo.Path); err != nil {
		return nil, err
	}
	return archivo, nil
}

func (s *reporteService) EnviarPorEmail(ctx context.Context, anio, mes int, email string) error {
	if err := ValidarPeriodo(anio, mes); err != nil {
		return err
	}
	if s.enqueuer == nil {
		return fmt.Errorf("reporte: cola de envío no configurada")
	}
	return s.enqueuer.EnqueueReporteEmail(ctx, dto.ReporteEmailJob{Anio: anio, Mes: mes, Email: email})
}

// filas returns the completed visits of the month, read through the cache.
func (s *reporteService) filas(ctx context.Context, anio, mes int) ([]dto.FilaReporte, error) {
	if err := ValidarPeriodo(anio, mes); err != nil {
		return nil, err
	}
	periodo := periodoDe(anio, mes)
	key := cacheKeyReporte(periodo)

	var filas []dto.FilaReporte
	if s.cache.Get(ctx, key, &filas) {
		return filas, nil
	}

	rows, err := s.repo.FilasMes(ctx, periodo)
	if err != nil {
		return nil, err
	}
	filas = make([]dto.FilaReporte, len(rows))
	for i, r := range rows {
		foto := ""
		if r.FotoDPI != nil {
			foto = *r.FotoDPI
		}
		filas[i] = dto.FilaReporte{
			Numero:      r.Numero,
			Fecha:       r.Fecha.Format(fechaLayout),
			HoraEntrada: r.HoraEntrada,
			HoraSalida:  r.HoraSalida,
			Nombre:      r.Nombre,
			DPI:         r.DPI,
			FotoDPI:     foto,
			Motivo:      r.Motivo,
			Empresa:     r.Empresa,
			Firma:       r.Firma,
		}
	}
	s.cache.Set(ctx, key, filas)
	return filas, nil
}

func (s *reporteService) archivo(anio, mes int, ext string) *ArchivoReporte {
	return &ArchivoReporte{
		Path:     filepath.Join(s.dir, fmt.Sprintf("reporte_%d_%d_%s.%s", anio, mes, uuid.NewString(), ext)),
		Filename: fmt.Sprintf("reporte_%d_%d.%s", anio, mes, ext),
	}
}
