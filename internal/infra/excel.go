package infra

// excel.go: monthly report workbook (excelize).
// One "Reporte Mensual" sheet, landscape legal paper, a header row and one row
// per completed visit. The fotoDPI and firma images are embedded into columns G
// and J when the image store can resolve them; otherwise the reference is left
// as text in the cell.

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/andres1jh8/Registro-Back/internal/dto"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const ReporteSheet = "Reporte Mensual"

// ReporteHeaders is the header row of the monthly workbook.
var ReporteHeaders = []string{
	"No.", "Fecha", "Hora Entrada", "Hora Salida", "Nombre",
	"DPI", "Foto DPI", "Motivo", "Empresa", "Firma",
}

var reporteColWidths = map[string]float64{
	"A": 6, "B": 12, "C": 13, "D": 13, "E": 28,
	"F": 16, "G": 22, "H": 30, "I": 20, "J": 22,
}

const (
	imageRowHeight = 60.0
	fotoDPICol     = 7
	firmaCol       = 10
)

// ImageFetcher resolves an image reference into its bytes.
type ImageFetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// GenerateReporteExcel writes the workbook for filas to filePath.
func GenerateReporteExcel(ctx context.Context, filas []dto.FilaReporte, images ImageFetcher, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("excel: create report dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReporteSheet); err != nil {
		return fmt.Errorf("excel: rename sheet: %w", err)
	}

	orientation := "landscape"
	legal := 5
	if err := f.SetPageLayout(ReporteSheet, &excelize.PageLayoutOptions{
		Orientation: &orientation,
		Size:        &legal,
	}); err != nil {
		return fmt.Errorf("excel: page layout: %w", err)
	}

	for col, width := range reporteColWidths {
		if err := f.SetColWidth(ReporteSheet, col, col, width); err != nil {
			return fmt.Errorf("excel: column width: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9D9D9"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("excel: header style: %w", err)
	}
	for i, h := range ReporteHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ReporteSheet, cell, h); err != nil {
			return fmt.Errorf("excel: header: %w", err)
		}
	}
	if err := f.SetCellStyle(ReporteSheet, "A1", "J1", headerStyle); err != nil {
		return fmt.Errorf("excel: header style: %w", err)
	}

	for i, fila := range filas {
		row := i + 2
		values := []interface{}{
			fila.Numero, fila.Fecha, fila.HoraEntrada, fila.HoraSalida, fila.Nombre,
			fila.DPI, "", fila.Motivo, fila.Empresa, "",
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(ReporteSheet, cell, v); err != nil {
				return fmt.Errorf("excel: row %d: %w", row, err)
			}
		}
		if err := f.SetRowHeight(ReporteSheet, row, imageRowHeight); err != nil {
			return fmt.Errorf("excel: row height: %w", err)
		}
		embedImage(ctx, f, images, fotoDPICol, row, fila.FotoDPI)
		embedImage(ctx, f, images, firmaCol, row, fila.Firma)
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("excel: write file: %w", err)
	}
	return nil
}

// embedImage places the image behind ref into the cell, falling back to the
// reference text when it cannot be fetched or is not a jpeg/png.
func embedImage(ctx context.Context, f *excelize.File, images ImageFetcher, col, row int, ref string) {
	if ref == "" {
		return
	}
	cell, _ := excelize.CoordinatesToCellName(col, row)

	var data []byte
	var err error
	if images != nil {
		data, err = images.Fetch(ctx, ref)
	}
	ext := imageExtension(data)
	if images == nil || err != nil || ext == "" {
		if err != nil {
			log.Debug().Err(err).Str("ref", ref).Msg("excel: image not embedded")
		}
		_ = f.SetCellValue(ReporteSheet, cell, ref)
		return
	}

	err = f.AddPictureFromBytes(ReporteSheet, cell, &excelize.Picture{
		Extension: ext,
		File:      data,
		Format: &excelize.GraphicOptions{
			AutoFit:         true,
			LockAspectRatio: true,
			Positioning:     "oneCell",
			OffsetX:         2,
			OffsetY:         2,
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("ref", ref).Msg("excel: add picture failed")
		_ = f.SetCellValue(ReporteSheet, cell, ref)
	}
}

func imageExtension(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	switch http.DetectContentType(data) {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ""
	}
}
