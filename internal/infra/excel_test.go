package infra

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/andres1jh8/Registro-Back/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type mapFetcher map[string][]byte

func (m mapFetcher) Fetch(_ context.Context, ref string) ([]byte, error) {
	data, ok := m[ref]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func sampleFilas() []dto.FilaReporte {
	return []dto.FilaReporte{
		{
			Numero: 1, Fecha: "2025-03-04", HoraEntrada: "08:10", HoraSalida: "09:00",
			Nombre: "Ana López", DPI: "1234567890123", FotoDPI: "/uploads/dpi/a.png",
			Motivo: "Reunión de seguimiento", Empresa: "SAT", Firma: "/uploads/firmas/a.png",
		},
		{
			Numero: 2, Fecha: "2025-03-05", HoraEntrada: "10:00", HoraSalida: "10:45",
			Nombre: "Luis Pérez", DPI: "9876543210987", FotoDPI: "",
			Motivo: "Entrega de documentos", Empresa: "Claro", Firma: "https://cdn.example.com/firmas/b.png",
		},
	}
}

func TestGenerateReporteExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "reporte.xlsx")
	images := mapFetcher{
		"/uploads/dpi/a.png":    pngBytes(t),
		"/uploads/firmas/a.png": pngBytes(t),
	}

	require.NoError(t, GenerateReporteExcel(context.Background(), sampleFilas(), images, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ReporteSheet}, f.GetSheetList())

	rows, err := f.GetRows(ReporteSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ReporteHeaders, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Ana López", rows[1][4])
	assert.Equal(t, "SAT", rows[1][8])

	pics, err := f.GetPictures(ReporteSheet, "G2")
	require.NoError(t, err)
	assert.Len(t, pics, 1, "foto DPI embedded")
	pics, err = f.GetPictures(ReporteSheet, "J2")
	require.NoError(t, err)
	assert.Len(t, pics, 1, "firma embedded")

	// unresolvable firma stays as its URL
	firma, err := f.GetCellValue(ReporteSheet, "J3")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/firmas/b.png", firma)
	foto, err := f.GetCellValue(ReporteSheet, "G3")
	require.NoError(t, err)
	assert.Empty(t, foto)

	layout, err := f.GetPageLayout(ReporteSheet)
	require.NoError(t, err)
	require.NotNil(t, layout.Orientation)
	assert.Equal(t, "landscape", *layout.Orientation)
}

func TestGenerateReporteExcel_EmptyMonthAndNoStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacio.xlsx")
	require.NoError(t, GenerateReporteExcel(context.Background(), nil, nil, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ReporteSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

func TestGenerateReporteExcel_NonImageBytesFallBackToText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.xlsx")
	filas := sampleFilas()[:1]
	images := mapFetcher{"/uploads/firmas/a.png": []byte("definitely not an image")}

	require.NoError(t, GenerateReporteExcel(context.Background(), filas, images, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(ReporteSheet, "J2")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/firmas/a.png", v)
}
