package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/andres1jh8/Registro-Back/internal/apierror"
	"github.com/andres1jh8/Registro-Back/internal/dto"
	"github.com/andres1jh8/Registro-Back/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

var (
	horaRe = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
	dpiRe  = regexp.MustCompile(`^\d{13}$`)
)

func init() {
	// report fields by their wire name (json, falling back to form)
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	_ = validate.RegisterValidation("hora", func(fl validator.FieldLevel) bool {
		return horaRe.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("dpi", func(fl validator.FieldLevel) bool {
		return dpiRe.MatchString(fl.Field().String())
	})
}

// validationMessenger lets a request DTO choose the top-level message of its
// validation failures.
type validationMessenger interface {
	ValidationMessage() string
}

// bindAndValidate binds the JSON body and runs the validator tags. It writes
// the error response and returns false when the caller must stop.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Cuerpo de la solicitud inválido"))
		return false
	}
	return validateRequest(c, req)
}

// bindFormAndValidate binds by Content-Type (multipart, urlencoded or JSON).
func bindFormAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Datos del formulario inválidos"))
		return false
	}
	return validateRequest(c, req)
}

func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parámetros de consulta inválidos"))
		return false
	}
	return validateRequest(c, req)
}

// normalizer is implemented by request DTOs that clean up bound values before
// validation.
type normalizer interface {
	Normalizar()
}

func validateRequest(c *gin.Context, req interface{}) bool {
	if n, ok := req.(normalizer); ok {
		n.Normalizar()
	}
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		_ = c.Error(err)
		return false
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = formatFieldError(fe)
	}
	msg := ""
	if m, ok := req.(validationMessenger); ok {
		msg = m.ValidationMessage()
	}
	c.JSON(http.StatusBadRequest, apierror.NewValidation(msg, fields))
	return false
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Este campo es obligatorio"
	case "email":
		return "Debe ser un correo electrónico válido"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Debe tener al menos %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Debe ser mayor o igual a %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Debe tener como máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Debe ser menor o igual a %s", fe.Param())
	case "hora":
		return "Debe tener formato HH:mm (00:00 a 23:59)"
	case "dpi":
		return "El DPI debe tener exactamente 13 dígitos"
	case "uuid":
		return "Debe ser un ID válido"
	}
	return fmt.Sprintf("Valor inválido (%s)", fe.Tag())
}

// respondError writes the envelope for typed application errors; anything
// else is handed to the ErrorHandler middleware as a 500.
func respondError(c *gin.Context, err error) {
	appErr, ok := apierror.As(err)
	if !ok || appErr.Status() == http.StatusInternalServerError {
		_ = c.Error(err)
		return
	}
	if appErr.Err != nil {
		log.Warn().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Err(appErr.Err).
			Msg(appErr.Message)
	}
	if appErr.Kind == apierror.KindValidation {
		c.JSON(appErr.Status(), apierror.NewValidation(appErr.Message, appErr.Fields))
		return
	}
	c.JSON(appErr.Status(), apierror.New(appErr.Message))
}

// parseID reads the :id path parameter.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// readImage loads an optional multipart image. It returns (nil, nil) when the
// field is absent and an apierror validation error when the file is rejected.
func readImage(c *gin.Context, field string, maxBytes int64) (*dto.Imagen, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apierror.Validation("Error de validación", map[string]string{field: "Archivo inválido"})
	}

	reject := func(msg string) error {
		return apierror.Validation("Error de validación", map[string]string{field: msg})
	}
	if !imageExtensions[strings.ToLower(filepath.Ext(fh.Filename))] {
		return nil, reject("Solo se permiten imágenes jpg, jpeg o png")
	}
	if fh.Size > maxBytes {
		return nil, reject(fmt.Sprintf("La imagen supera el máximo de %d MB", maxBytes>>20))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("abrir %s: %w", field, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("leer %s: %w", field, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, reject(fmt.Sprintf("La imagen supera el máximo de %d MB", maxBytes>>20))
	}

	contentType, err := sniffImage(field, data)
	if err != nil {
		return nil, err
	}
	return &dto.Imagen{Nombre: fh.Filename, ContentType: contentType, Datos: data}, nil
}

// decodeImage reads an image sent as a form or JSON value, either a data URI
// ("data:image/png;base64,...") or plain base64.
func decodeImage(field, value string, maxBytes int64) (*dto.Imagen, error) {
	reject := func(msg string) error {
		return apierror.Validation("Error de validación", map[string]string{field: msg})
	}
	if strings.HasPrefix(value, "data:") {
		comma := strings.IndexByte(value, ',')
		if comma < 0 || !strings.HasSuffix(value[:comma], ";base64") {
			return nil, reject("La imagen debe enviarse como archivo o en base64")
		}
		value = value[comma+1:]
	}
	if int64(base64.StdEncoding.DecodedLen(len(value))) > maxBytes+2 {
		return nil, reject(fmt.Sprintf("La imagen supera el máximo de %d MB", maxBytes>>20))
	}
	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, reject("La imagen debe enviarse como archivo o en base64")
	}
	if int64(len(data)) > maxBytes {
		return nil, reject(fmt.Sprintf("La imagen supera el máximo de %d MB", maxBytes>>20))
	}

	contentType, err := sniffImage(field, data)
	if err != nil {
		return nil, err
	}
	ext := ".png"
	if contentType == "image/jpeg" {
		ext = ".jpg"
	}
	return &dto.Imagen{Nombre: field + ext, ContentType: contentType, Datos: data}, nil
}

// sniffImage accepts only jpeg and png content, whatever the file name says.
func sniffImage(field string, data []byte) (string, error) {
	contentType := http.DetectContentType(data)
	if contentType != "image/jpeg" && contentType != "image/png" {
		return "", apierror.Validation("Error de validación", map[string]string{
			field: "El archivo no es una imagen jpg o png válida",
		})
	}
	return contentType, nil
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}
