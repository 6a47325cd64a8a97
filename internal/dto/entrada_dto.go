package dto

import "strings"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearEntradaRequest is bound from the multipart form; the firma and fotoDPI
// files travel separately as Imagen values.
type CrearEntradaRequest struct {
	Fecha       string `form:"fecha"       json:"fecha"`
	HoraEntrada string `form:"horaEntrada" json:"horaEntrada" validate:"required,hora"`
	Nombre      string `form:"nombre"      json:"nombre"      validate:"required,min=3,max=150"`
	DPI         string `form:"dpi"         json:"dpi"         validate:"required,dpi"`
	Motivo      string `form:"motivo"      json:"motivo"      validate:"required,min=5,max=500"`
	Empresa     string `form:"empresa"     json:"empresa"     validate:"required,max=150"`
}

// ActualizarEntradaRequest only changes the fields that are present. Firma and
// FotoDPI carry an image as a data URI or plain base64 when it is not sent as
// a file; they are not form-bound because the multipart file shares the name.
type ActualizarEntradaRequest struct {
	Fecha       *string `form:"fecha"       json:"fecha"`
	HoraEntrada *string `form:"horaEntrada" json:"horaEntrada" validate:"omitempty,hora"`
	Nombre      *string `form:"nombre"      json:"nombre"      validate:"omitempty,min=3,max=150"`
	DPI         *string `form:"dpi"         json:"dpi"         validate:"omitempty,dpi"`
	Motivo      *string `form:"motivo"      json:"motivo"      validate:"omitempty,min=5,max=500"`
	Empresa     *string `form:"empresa"     json:"empresa"     validate:"omitempty,min=1,max=150"`
	Firma       *string `form:"-"           json:"firma"`
	FotoDPI     *string `form:"-"           json:"fotoDPI"`
}

// Normalizar trims every supplied value and treats blank ones as absent, so an
// empty form field never overwrites a stored value.
func (r *ActualizarEntradaRequest) Normalizar() {
	for _, f := range []**string{&r.Fecha, &r.HoraEntrada, &r.Nombre, &r.DPI, &r.Motivo, &r.Empresa, &r.Firma, &r.FotoDPI} {
		if *f == nil {
			continue
		}
		v := strings.TrimSpace(**f)
		if v == "" {
			*f = nil
			continue
		}
		*f = &v
	}
}

// Imagen is an uploaded file already read into memory.
type Imagen struct {
	Nombre      string
	ContentType string
	Datos       []byte
}

type ImagenesEntrada struct {
	Firma   *Imagen
	FotoDPI *Imagen
}

// EntradaFilter drives GET /entradas. Month and Year only apply together.
type EntradaFilter struct {
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=10" validate:"min=1,max=100"`
	All     bool   `form:"all"`
	Month   int    `form:"month"            validate:"omitempty,min=1,max=12"`
	Year    int    `form:"year"             validate:"omitempty,min=2000,max=2100"`
	DPI     string `form:"dpi"`
	Empresa string `form:"empresa"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SalidaResumen struct {
	ID         string `json:"id"`
	HoraSalida string `json:"horaSalida"`
	CreatedAt  string `json:"createdAt"`
}

type EntradaResponse struct {
	ID          string          `json:"id"`
	Numero      int             `json:"numero"`
	Fecha       string          `json:"fecha"`
	HoraEntrada string          `json:"horaEntrada"`
	Nombre      string          `json:"nombre"`
	DPI         string          `json:"dpi"`
	FotoDPI     *string         `json:"fotoDPI"`
	Motivo      string          `json:"motivo"`
	Empresa     string          `json:"empresa"`
	Firma       string          `json:"firma"`
	Salidas     []SalidaResumen `json:"salidas"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

type EntradaListResponse struct {
	Success    bool              `json:"success"`
	Data       []EntradaResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
	Month      int               `json:"month,omitempty"`
	Year       int               `json:"year,omitempty"`
	DPI        string            `json:"dpi,omitempty"`
	Empresa    string            `json:"empresa,omitempty"`
}

type MesResponse struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}
