package handler

import (
	"net/http"
	"os"
	"strconv"

	"github.com/andres1jh8/Registro-Back/internal/apierror"
	"github.com/andres1jh8/Registro-Back/internal/dto"
	"github.com/andres1jh8/Registro-Back/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// Mensual godoc
// @Summary Reporte mensual de visitas completadas
// @Tags reportes
// @Produce json
// @Param anio path int true "Año"
// @Param mes path int true "Mes (1-12)"
// @Success 200 {object} dto.ReporteMensualResponse
// @Failure 400 {object} apierror.ValidationError
// @Security BearerAuth
// @Router /api/salidas/reporte/{anio}/{mes} [get]
func (h *ReportesHandler) Mensual(c *gin.Context) {
	anio, mes, ok := parsePeriodo(c)
	if !ok {
		return
	}
	resp, err := h.svc.Mensual(c.Request.Context(), anio, mes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Excel godoc
// @Summary Reporte mensual en Excel con imágenes
// @Tags reportes
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param anio path int true "Año"
// @Param mes path int true "Mes (1-12)"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /api/salidas/reporte/excel/{anio}/{mes} [get]
func (h *ReportesHandler) Excel(c *gin.Context) {
	anio, mes, ok := parsePeriodo(c)
	if !ok {
		return
	}
	archivo, err := h.svc.GenerarExcel(c.Request.Context(), anio, mes)
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, archivo, contentTypeXLSX)
}

func (h *ReportesHandler) PDF(c *gin.Context) {
	anio, mes, ok := parsePeriodo(c)
	if !ok {
		return
	}
	archivo, err := h.svc.GenerarPDF(c.Request.Context(), anio, mes)
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, archivo, contentTypePDF)
}

// EnviarEmail queues the workbook for delivery by e-mail.
func (h *ReportesHandler) EnviarEmail(c *gin.Context) {
	anio, mes, ok := parsePeriodo(c)
	if !ok {
		return
	}
	var req dto.EnviarReporteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.EnviarPorEmail(c.Request.Context(), anio, mes, req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.OKMsg("El reporte será enviado a "+req.Email, nil))
}

// sendFile streams the rendered report as a download and removes it afterwards.
func sendFile(c *gin.Context, archivo *service.ArchivoReporte, contentType string) {
	defer func() {
		if err := os.Remove(archivo.Path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", archivo.Path).Msg("no se pudo eliminar el reporte temporal")
		}
	}()
	c.Header("Content-Type", contentType)
	c.FileAttachment(archivo.Path, archivo.Filename)
}

func parsePeriodo(c *gin.Context) (int, int, bool) {
	anio, errA := strconv.Atoi(c.Param("anio"))
	mes, errM := strconv.Atoi(c.Param("mes"))
	if errA != nil || errM != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Año y mes deben ser numéricos"))
		return 0, 0, false
	}
	if err := service.ValidarPeriodo(anio, mes); err != nil {
		respondError(c, err)
		return 0, 0, false
	}
	return anio, mes, true
}
