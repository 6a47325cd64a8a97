package handler

import (
	"net/http"

	"github.com/andres1jh8/Registro-Back/internal/dto"
	"github.com/andres1jh8/Registro-Back/internal/service"

	"github.com/gin-gonic/gin"
)

type SalidasHandler struct{ svc service.SalidaService }

func NewSalidasHandler(svc service.SalidaService) *SalidasHandler { return &SalidasHandler{svc: svc} }

// Crear godoc
// @Summary Registrar salida de una entrada
// @Tags salidas
// @Accept json
// @Produce json
// @Param body body dto.CrearSalidaRequest true "Entrada y hora de salida"
// @Success 201 {object} dto.Respuesta
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Security BearerAuth
// @Router /api/salidas [post]
func (h *SalidasHandler) Crear(c *gin.Context) {
	var req dto.CrearSalidaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OKMsg("Salida registrada correctamente", resp))
}

func (h *SalidasHandler) Listar(c *gin.Context) {
	var filter dto.SalidaFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter.Page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalidasHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(resp))
}

func (h *SalidasHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ActualizarSalidaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKMsg("Salida actualizada correctamente", resp))
}

func (h *SalidasHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKMsg("Salida eliminada correctamente", nil))
}

// Movimientos godoc
// @Summary Entradas con su hora de salida (o null)
// @Tags salidas
// @Produce json
// @Success 200 {object} dto.MovimientosResponse
// @Security BearerAuth
// @Router /api/salidas/movimientos [get]
func (h *SalidasHandler) Movimientos(c *gin.Context) {
	movs, err := h.svc.Movimientos(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MovimientosResponse{Success: true, Total: len(movs), Data: movs})
}
