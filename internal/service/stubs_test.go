package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/andres1jh8/Registro-Back/internal/config"
	"github.com/andres1jh8/Registro-Back/internal/dto"
	"github.com/andres1jh8/Registro-Back/internal/model"
	"github.com/andres1jh8/Registro-Back/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── In-memory store shared by the repository stubs ───────────────────────────

type memStore struct {
	mu       sync.Mutex
	entradas map[uuid.UUID]*model.Entrada
	salidas  map[uuid.UUID]*model.Salida
	counters map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		entradas: make(map[uuid.UUID]*model.Entrada),
		salidas:  make(map[uuid.UUID]*model.Salida),
		counters: make(map[string]int),
	}
}

func (m *memStore) salidaDe(entradaID uuid.UUID) *model.Salida {
	for _, s := range m.salidas {
		if s.EntradaID == entradaID {
			cp := *s
			return &cp
		}
	}
	return nil
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

type stubUsuarioRepo struct {
	users     map[string]*model.Usuario
	createErr error
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: make(map[string]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if r.createErr != nil {
		return r.createErr
	}
	u.ID = uuid.New()
	r.users[u.Username] = u
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	if u, ok := r.users[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByLogin(_ context.Context, login string) (*model.Usuario, error) {
	for _, u := range r.users {
		if u.Username == login || strings.EqualFold(u.Email, login) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username || strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.users[u.Username] = u
	return nil
}

// ── Entradas ─────────────────────────────────────────────────────────────────

type stubEntradaRepo struct {
	*memStore
	meses      []dto.MesResponse
	mesesCalls int
	lastFilter dto.EntradaFilter
}

var _ repository.EntradaRepository = (*stubEntradaRepo)(nil)

func (r *stubEntradaRepo) nextNumero(periodo string) int {
	r.counters[periodo]++
	return r.counters[periodo]
}

func (r *stubEntradaRepo) Create(_ context.Context, e *model.Entrada) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = uuid.New()
	e.Periodo = model.PeriodoDe(e.Fecha)
	e.Numero = r.nextNumero(e.Periodo)
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	r.entradas[e.ID] = &cp
	return nil
}

func (r *stubEntradaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Entrada, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entradas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	cp.Salida = r.salidaDe(id)
	return &cp, nil
}

func (r *stubEntradaRepo) Update(_ context.Context, e *model.Entrada, periodoAnterior string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entradas[e.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	e.Periodo = model.PeriodoDe(e.Fecha)
	if e.Periodo != periodoAnterior {
		e.Numero = r.nextNumero(e.Periodo)
	}
	cp := *e
	cp.Salida = nil
	r.entradas[e.ID] = &cp
	return nil
}

func (r *stubEntradaRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entradas[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.entradas, id)
	return nil
}

func (r *stubEntradaRepo) List(_ context.Context, filter dto.EntradaFilter) ([]model.Entrada, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	out := make([]model.Entrada, 0, len(r.entradas))
	for _, e := range r.entradas {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *stubEntradaRepo) MesesConSalida(_ context.Context) ([]dto.MesResponse, error) {
	r.mesesCalls++
	return r.meses, nil
}

// ── Salidas ──────────────────────────────────────────────────────────────────

type stubSalidaRepo struct {
	*memStore
	createErr error
	total     int64
}

var _ repository.SalidaRepository = (*stubSalidaRepo)(nil)

func (r *stubSalidaRepo) Create(_ context.Context, s *model.Salida) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if r.salidaDe(s.EntradaID) != nil {
		return gorm.ErrDuplicatedKey
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	cp.Entrada = nil
	r.salidas[s.ID] = &cp
	return nil
}

func (r *stubSalidaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Salida, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.salidas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	if e, ok := r.entradas[s.EntradaID]; ok {
		ec := *e
		cp.Entrada = &ec
	}
	return &cp, nil
}

func (r *stubSalidaRepo) FindByEntradaID(_ context.Context, entradaID uuid.UUID) (*model.Salida, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.salidaDe(entradaID); s != nil {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSalidaRepo) Update(_ context.Context, s *model.Salida) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.salidas[s.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.HoraSalida = s.HoraSalida
	return nil
}

func (r *stubSalidaRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.salidas[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.salidas, id)
	return nil
}

func (r *stubSalidaRepo) List(_ context.Context, page, limit int) ([]model.Salida, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Salida, 0, len(r.salidas))
	for _, s := range r.salidas {
		out = append(out, *s)
	}
	total := r.total
	if total == 0 {
		total = int64(len(out))
	}
	return out, total, nil
}

// ── Reportes ─────────────────────────────────────────────────────────────────

type stubReporteRepo struct {
	movimientos []repository.MovimientoRow
	filas       []repository.FilaReporteRow
	filasCalls  int
	lastPeriodo string
	err         error
}

var _ repository.ReporteRepository = (*stubReporteRepo)(nil)

func (r *stubReporteRepo) Movimientos(_ context.Context) ([]repository.MovimientoRow, error) {
	return r.movimientos, r.err
}

func (r *stubReporteRepo) FilasMes(_ context.Context, periodo string) ([]repository.FilaReporteRow, error) {
	r.filasCalls++
	r.lastPeriodo = periodo
	return r.filas, r.err
}

// ── Infra doubles ────────────────────────────────────────────────────────────

type uploadCall struct {
	folder, filename, contentType string
}

type stubImageStore struct {
	uploads []uploadCall
	err     error
}

func (s *stubImageStore) Upload(_ context.Context, folder, filename, contentType string, _ []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.uploads = append(s.uploads, uploadCall{folder, filename, contentType})
	return "/uploads/" + folder + "/" + uuid.NewString() + ".png", nil
}

func (s *stubImageStore) Fetch(_ context.Context, _ string) ([]byte, error) {
	return nil, errors.New("not stored")
}

type stubEnqueuer struct {
	jobs []dto.ReporteEmailJob
	err  error
}

func (e *stubEnqueuer) EnqueueReporteEmail(_ context.Context, job dto.ReporteEmailJob) error {
	if e.err != nil {
		return e.err
	}
	e.jobs = append(e.jobs, job)
	return nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newTestCfg() *config.Config {
	return &config.Config{
		JWTSecret:          testSecret,
		JWTExpirationHours: 8,
		Timezone:           "UTC",
	}
}

func fixedNow() time.Time { return time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC) }

func pngImagen() *dto.Imagen {
	return &dto.Imagen{Nombre: "firma.png", ContentType: "image/png", Datos: []byte("\x89PNG\r\n\x1a\n")}
}
