package handler

import (
	"net/http"

	"github.com/andres1jh8/Registro-Back/internal/apierror"
	"github.com/andres1jh8/Registro-Back/internal/dto"
	"github.com/andres1jh8/Registro-Back/internal/middleware"
	"github.com/andres1jh8/Registro-Back/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Register godoc
// @Summary Registrar usuario (requiere credenciales de un Admin)
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "Nuevo usuario y credenciales del administrador"
// @Success 201 {object} dto.Respuesta
// @Failure 400 {object} apierror.ValidationError
// @Failure 401 {object} apierror.APIError
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	user, err := h.svc.RegistrarUsuario(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OKMsg("Usuario creado exitosamente con autorización de administrador.", user))
}

// Login godoc
// @Summary Login por username o email
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CheckAdmin answers whether the given credentials belong to an Admin.
func (h *AuthHandler) CheckAdmin(c *gin.Context) {
	var req dto.CheckAdminRequest
	if !bindAndValidate(c, &req) {
		return
	}
	_, err := h.svc.VerificarAdmin(c.Request.Context(), req.UsernameAdmin, req.PasswordAdmin)
	if err != nil {
		appErr, ok := apierror.As(err)
		if !ok || appErr.Kind != apierror.KindUnauthorized {
			respondError(c, err)
			return
		}
		log.Warn().Err(appErr.Err).Str("username", req.UsernameAdmin).Msg("check-admin rechazado")
		c.JSON(appErr.Status(), dto.CheckAdminResponse{Success: false, Valid: false, Message: appErr.Message})
		return
	}
	c.JSON(http.StatusOK, dto.CheckAdminResponse{Success: true, Valid: true})
}

// Test echoes the claims of a valid token.
func (h *AuthHandler) Test(c *gin.Context) {
	c.JSON(http.StatusOK, dto.OKMsg("Token válido", middleware.GetClaims(c)))
}
