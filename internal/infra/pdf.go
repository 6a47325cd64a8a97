package infra

// pdf.go: monthly report as a landscape PDF table (go-pdf/fpdf).
// Same rows as the workbook without the images.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andres1jh8/Registro-Back/internal/dto"

	"github.com/go-pdf/fpdf"
)

// GenerateReportePDF writes the monthly report for anio/mes to filePath.
func GenerateReportePDF(filas []dto.FilaReporte, anio, mes int, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("pdf: create report dir: %w", err)
	}

	pdf := fpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(8, 10, 8)
	pdf.SetAutoPageBreak(true, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// columns: No., Fecha, Entrada, Salida, Nombre, DPI, Motivo, Empresa
	widths := []float64{12, 22, 18, 18, 52, 30, 62, 45}
	headers := []string{"No.", "Fecha", "Entrada", "Salida", "Nombre", "DPI", "Motivo", "Empresa"}

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(217, 217, 217)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("Reporte mensual de visitas %02d/%d", mes, anio)), "", 1, "C", false, 0, "")
		pdf.Ln(2)
		drawHeader()
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("Página %d", pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	if len(filas) == 0 {
		pdf.CellFormat(0, 8, tr("Sin visitas completadas en el periodo."), "", 1, "C", false, 0, "")
	}
	for _, fila := range filas {
		cells := []string{
			fmt.Sprintf("%d", fila.Numero), fila.Fecha, fila.HoraEntrada, fila.HoraSalida,
			truncate(fila.Nombre, 32), fila.DPI, truncate(fila.Motivo, 40), truncate(fila.Empresa, 28),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, tr(c), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total: %d", len(filas)), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return fmt.Errorf("pdf: write file: %w", err)
	}
	return nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
