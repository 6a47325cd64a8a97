package dto

// FilaReporte is one completed visit in the monthly report.
type FilaReporte struct {
	Numero      int    `json:"numero"`
	Fecha       string `json:"fecha"`
	HoraEntrada string `json:"horaEntrada"`
	HoraSalida  string `json:"horaSalida"`
	Nombre      string `json:"nombre"`
	DPI         string `json:"dpi"`
	FotoDPI     string `json:"fotoDPI"`
	Motivo      string `json:"motivo"`
	Empresa     string `json:"empresa"`
	Firma       string `json:"firma"`
}

type ReporteMensualResponse struct {
	Success bool          `json:"success"`
	Anio    int           `json:"anio"`
	Mes     int           `json:"mes"`
	Total   int           `json:"total"`
	Data    []FilaReporte `json:"data"`
}

type EnviarReporteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ReporteEmailJob is queued for the report e-mail worker.
type ReporteEmailJob struct {
	Anio  int    `json:"anio"`
	Mes   int    `json:"mes"`
	Email string `json:"email"`
}
