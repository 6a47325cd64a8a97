package worker

// reporte_worker.go
// Renders the monthly workbook and mails it as an attachment.

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/andres1jh8/Registro-Back/internal/apierror"
	"github.com/andres1jh8/Registro-Back/internal/dto"
	"github.com/andres1jh8/Registro-Back/internal/service"

	"github.com/rs/zerolog/log"
)

// Mailer sends a message with one attached file.
type Mailer interface {
	SendAttachment(to, subject, body, attachmentPath, attachmentName string) error
}

type ReporteEmailWorker struct {
	reportes service.ReporteService
	mailer   Mailer
}

func NewReporteEmailWorker(reportes service.ReporteService, mailer Mailer) *ReporteEmailWorker {
	return &ReporteEmailWorker{reportes: reportes, mailer: mailer}
}

func (w *ReporteEmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var job dto.ReporteEmailJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("%w: invalid payload: %v", ErrPermanent, err)
	}
	if job.Email == "" {
		return fmt.Errorf("%w: empty email", ErrPermanent)
	}

	archivo, err := w.reportes.GenerarExcel(ctx, job.Anio, job.Mes)
	if err != nil {
		if apierror.IsKind(err, apierror.KindValidation) {
			return fmt.Errorf("%w: %v", ErrPermanent, err)
		}
		return fmt.Errorf("generar excel: %w", err)
	}
	defer os.Remove(archivo.Path)

	subject := fmt.Sprintf("Reporte mensual de visitas %02d/%d", job.Mes, job.Anio)
	body := fmt.Sprintf("Adjunto el reporte de visitas completadas de %02d/%d (%s).", job.Mes, job.Anio, archivo.Filename)
	if err := w.mailer.SendAttachment(job.Email, subject, body, archivo.Path, archivo.Filename); err != nil {
		return fmt.Errorf("enviar reporte: %w", err)
	}
	log.Info().Str("to", job.Email).Int("anio", job.Anio).Int("mes", job.Mes).Msg("reporte enviado")
	return nil
}
