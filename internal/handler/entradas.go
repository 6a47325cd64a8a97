package handler

import (
	"net/http"
	"strings"

	"github.com/andres1jh8/Registro-Back/internal/dto"
	"github.com/andres1jh8/Registro-Back/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type EntradasHandler struct {
	svc         service.EntradaService
	maxImgBytes int64
}

func NewEntradasHandler(svc service.EntradaService, maxUploadMB int) *EntradasHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 5
	}
	return &EntradasHandler{svc: svc, maxImgBytes: int64(maxUploadMB) << 20}
}

// Crear godoc
// @Summary Registrar entrada de visitante
// @Tags entradas
// @Accept multipart/form-data
// @Produce json
// @Param horaEntrada formData string true "HH:mm"
// @Param nombre formData string true "Nombre del visitante"
// @Param dpi formData string true "DPI (13 dígitos)"
// @Param motivo formData string true "Motivo de la visita"
// @Param empresa formData string true "Empresa"
// @Param fecha formData string false "YYYY-MM-DD (por defecto hoy)"
// @Param firma formData file true "Firma"
// @Param fotoDPI formData file false "Foto del DPI"
// @Success 201 {object} dto.Respuesta
// @Failure 400 {object} apierror.ValidationError
// @Security BearerAuth
// @Router /api/entradas [post]
func (h *EntradasHandler) Crear(c *gin.Context) {
	var req dto.CrearEntradaRequest
	if !bindFormAndValidate(c, &req) {
		return
	}
	imgs, ok := h.imagenes(c)
	if !ok {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req, imgs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OKMsg("Entrada registrada correctamente", resp))
}

// Listar godoc
// @Summary Listar entradas con filtros y paginación
// @Tags entradas
// @Produce json
// @Param page query int false "Página (1)"
// @Param limit query int false "Tamaño de página (10)"
// @Param all query bool false "Sin paginar"
// @Param month query int false "Mes (requiere year)"
// @Param year query int false "Año (requiere month)"
// @Param dpi query string false "DPI exacto"
// @Param empresa query string false "Empresa (contiene, sin distinguir mayúsculas)"
// @Success 200 {object} dto.EntradaListResponse
// @Security BearerAuth
// @Router /api/entradas [get]
func (h *EntradasHandler) Listar(c *gin.Context) {
	var filter dto.EntradaFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Meses lists the months that have at least one completed visit.
func (h *EntradasHandler) Meses(c *gin.Context) {
	meses, err := h.svc.MesesConVisitasCompletas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(meses))
}

func (h *EntradasHandler) ObtenerPorID(c *gin.Context) {
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

func (h *EntradasHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ActualizarEntradaRequest
	if !bindFormAndValidate(c, &req) {
		return
	}
	imgs, ok := h.imagenes(c)
	if !ok {
		return
	}
	if !h.imagenesDesdeValores(c, req, &imgs) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req, imgs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKMsg("Entrada actualizada correctamente", resp))
}

func (h *EntradasHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKMsg("Entrada eliminada correctamente", nil))
}

func (h *EntradasHandler) imagenes(c *gin.Context) (dto.ImagenesEntrada, bool) {
	var imgs dto.ImagenesEntrada
	var err error
	if imgs.Firma, err = readImage(c, "firma", h.maxImgBytes); err != nil {
		respondError(c, err)
		return imgs, false
	}
	if imgs.FotoDPI, err = readImage(c, "fotoDPI", h.maxImgBytes); err != nil {
		respondError(c, err)
		return imgs, false
	}
	return imgs, true
}

// imagenesDesdeValores fills the images that came as base64 values instead of
// files. An uploaded file takes precedence over a value for the same field.
func (h *EntradasHandler) imagenesDesdeValores(c *gin.Context, req dto.ActualizarEntradaRequest, imgs *dto.ImagenesEntrada) bool {
	campos := []struct {
		name  string
		value *string
		dst   **dto.Imagen
	}{
		{"firma", req.Firma, &imgs.Firma},
		{"fotoDPI", req.FotoDPI, &imgs.FotoDPI},
	}
	for _, campo := range campos {
		if *campo.dst != nil {
			continue
		}
		value := ""
		if campo.value != nil {
			value = *campo.value
		} else if c.ContentType() != binding.MIMEJSON {
			value = strings.TrimSpace(c.PostForm(campo.name))
		}
		if value == "" {
			continue
		}
		img, err := decodeImage(campo.name, value, h.maxImgBytes)
		if err != nil {
			respondError(c, err)
			return false
		}
		*campo.dst = img
	}
	return true
}
