package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/andres1jh8/Registro-Back/internal/apierror"
	"github.com/andres1jh8/Registro-Back/internal/dto"
	"github.com/andres1jh8/Registro-Back/internal/middleware"
	"github.com/andres1jh8/Registro-Back/internal/model"
	"github.com/andres1jh8/Registro-Back/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Service stubs ────────────────────────────────────────────────────────────

type stubAuthService struct {
	registerErr error
	loginErr    error
	adminErr    error
	lastLogin   dto.LoginRequest
}

var _ service.AuthService = (*stubAuthService)(nil)

func (s *stubAuthService) RegistrarUsuario(_ context.Context, req dto.RegisterRequest) (*dto.UsuarioResponse, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &dto.UsuarioResponse{ID: uuid.NewString(), Username: req.Username, Role: model.RolEmployee}, nil
}

func (s *stubAuthService) Login(_ context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	s.lastLogin = req
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &dto.LoginResponse{Success: true, Token: "signed.jwt.token"}, nil
}

func (s *stubAuthService) VerificarAdmin(_ context.Context, username, _ string) (*model.Usuario, error) {
	if s.adminErr != nil {
		return nil, s.adminErr
	}
	return &model.Usuario{Username: username, Role: model.RolAdmin}, nil
}

type stubEntradaService struct {
	err        error
	lastReq    dto.CrearEntradaRequest
	lastUpdate dto.ActualizarEntradaRequest
	lastImgs   dto.ImagenesEntrada
	lastFilter dto.EntradaFilter
}

var _ service.EntradaService = (*stubEntradaService)(nil)

func (s *stubEntradaService) Crear(_ context.Context, req dto.CrearEntradaRequest, imgs dto.ImagenesEntrada) (*dto.EntradaResponse, error) {
	s.lastReq, s.lastImgs = req, imgs
	if s.err != nil {
		return nil, s.err
	}
	return &dto.EntradaResponse{ID: uuid.NewString(), Numero: 1, Nombre: req.Nombre, Salidas: []dto.SalidaResumen{}}, nil
}

func (s *stubEntradaService) Listar(_ context.Context, filter dto.EntradaFilter) (*dto.EntradaListResponse, error) {
	s.lastFilter = filter
	if s.err != nil {
		return nil, s.err
	}
	return &dto.EntradaListResponse{Success: true, Data: []dto.EntradaResponse{}, Page: filter.Page, Limit: filter.Limit, TotalPages: 1}, nil
}

func (s *stubEntradaService) MesesConVisitasCompletas(context.Context) ([]dto.MesResponse, error) {
	return []dto.MesResponse{{Year: 2025, Month: 3}}, s.err
}

func (s *stubEntradaService) ObtenerPorID(_ context.Context, id uuid.UUID) (*dto.EntradaResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.EntradaResponse{ID: id.String()}, nil
}

func (s *stubEntradaService) Actualizar(_ context.Context, id uuid.UUID, req dto.ActualizarEntradaRequest, imgs dto.ImagenesEntrada) (*dto.EntradaResponse, error) {
	s.lastUpdate, s.lastImgs = req, imgs
	if s.err != nil {
		return nil, s.err
	}
	return &dto.EntradaResponse{ID: id.String()}, nil
}

func (s *stubEntradaService) Eliminar(context.Context, uuid.UUID) error { return s.err }

type stubSalidaService struct {
	err      error
	lastPage int
}

var _ service.SalidaService = (*stubSalidaService)(nil)

func (s *stubSalidaService) Crear(_ context.Context, req dto.CrearSalidaRequest) (*dto.SalidaResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SalidaResponse{ID: uuid.NewString(), EntradaID: req.EntradaID, HoraSalida: req.HoraSalida}, nil
}

func (s *stubSalidaService) Listar(_ context.Context, page int) (*dto.SalidaListResponse, error) {
	s.lastPage = page
	return &dto.SalidaListResponse{Success: true, Data: []dto.SalidaResponse{}, Page: page, Limit: service.SalidasPorPagina, TotalPages: 1}, s.err
}

func (s *stubSalidaService) ObtenerPorID(_ context.Context, id uuid.UUID) (*dto.SalidaResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SalidaResponse{ID: id.String()}, nil
}

func (s *stubSalidaService) Actualizar(_ context.Context, id uuid.UUID, req dto.ActualizarSalidaRequest) (*dto.SalidaResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SalidaResponse{ID: id.String(), HoraSalida: req.HoraSalida}, nil
}

func (s *stubSalidaService) Eliminar(context.Context, uuid.UUID) error { return s.err }

func (s *stubSalidaService) Movimientos(context.Context) ([]dto.MovimientoResponse, error) {
	return []dto.MovimientoResponse{{Numero: 1, HoraEntrada: "08:00"}}, s.err
}

type stubReporteService struct {
	dir      string
	err      error
	emailed  []string
	lastFile string
}

var _ service.ReporteService = (*stubReporteService)(nil)

func (s *stubReporteService) Mensual(_ context.Context, anio, mes int) (*dto.ReporteMensualResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ReporteMensualResponse{Success: true, Anio: anio, Mes: mes, Data: []dto.FilaReporte{}}, nil
}

func (s *stubReporteService) archivo(ext string, data []byte) (*service.ArchivoReporte, error) {
	if s.err != nil {
		return nil, s.err
	}
	path := filepath.Join(s.dir, "tmp_"+uuid.NewString()+"."+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, err
	}
	s.lastFile = path
	return &service.ArchivoReporte{Path: path, Filename: "reporte_2025_3." + ext}, nil
}

func (s *stubReporteService) GenerarExcel(context.Context, int, int) (*service.ArchivoReporte, error) {
	return s.archivo("xlsx", []byte("PK\x03\x04fake"))
}

func (s *stubReporteService) GenerarPDF(context.Context, int, int) (*service.ArchivoReporte, error) {
	return s.archivo("pdf", []byte("%PDF-1.3 fake"))
}

func (s *stubReporteService) EnviarPorEmail(_ context.Context, _, _ int, email string) error {
	if s.err != nil {
		return s.err
	}
	s.emailed = append(s.emailed, email)
	return nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

var errDB = errors.New("pq: connection refused")

var errNotFound = apierror.NotFound("Entrada no encontrada")

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler())
	return r
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func doJSON(r http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func pngFile(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

type formFile struct {
	field, name string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func doMultipart(r http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
