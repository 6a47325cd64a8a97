package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearSalidaRequest struct {
	EntradaID  string `json:"entradaId"  validate:"required,uuid"`
	HoraSalida string `json:"horaSalida" validate:"required,hora"`
}

type ActualizarSalidaRequest struct {
	HoraSalida string `json:"horaSalida" validate:"required,hora"`
}

type SalidaFilter struct {
	Page int `form:"page,default=1" validate:"min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// EntradaResumen is the entrada embedded in a salida (without its salidas).
type EntradaResumen struct {
	ID          string  `json:"id"`
	Numero      int     `json:"numero"`
	Fecha       string  `json:"fecha"`
	HoraEntrada string  `json:"horaEntrada"`
	Nombre      string  `json:"nombre"`
	DPI         string  `json:"dpi"`
	FotoDPI     *string `json:"fotoDPI"`
	Motivo      string  `json:"motivo"`
	Empresa     string  `json:"empresa"`
	Firma       string  `json:"firma"`
}

type SalidaResponse struct {
	ID         string          `json:"id"`
	EntradaID  string          `json:"entradaId"`
	HoraSalida string          `json:"horaSalida"`
	Entrada    *EntradaResumen `json:"entrada,omitempty"`
	CreatedAt  string          `json:"createdAt"`
	UpdatedAt  string          `json:"updatedAt"`
}

type SalidaListResponse struct {
	Success    bool             `json:"success"`
	Data       []SalidaResponse `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

// MovimientoResponse is an entrada paired with its departure time, if any.
type MovimientoResponse struct {
	ID          string  `json:"id"`
	Numero      int     `json:"numero"`
	Fecha       string  `json:"fecha"`
	HoraEntrada string  `json:"horaEntrada"`
	HoraSalida  *string `json:"horaSalida"`
	Nombre      string  `json:"nombre"`
	DPI         string  `json:"dpi"`
	FotoDPI     *string `json:"fotoDPI"`
	Motivo      string  `json:"motivo"`
	Empresa     string  `json:"empresa"`
	Firma       string  `json:"firma"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type MovimientosResponse struct {
	Success bool                 `json:"success"`
	Total   int                  `json:"total"`
	Data    []MovimientoResponse `json:"data"`
}
