package infra

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReportePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reporte.pdf")
	require.NoError(t, GenerateReportePDF(sampleFilas(), 2025, 3, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestGenerateReportePDF_EmptyMonth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacio.pdf")
	require.NoError(t, GenerateReportePDF(nil, 2025, 2, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "corto", truncate("corto", 10))
	assert.Equal(t, "Capacitac…", truncate("Capacitación anual", 10))
}
