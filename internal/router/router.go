package router

import (
	"strings"
	"time"

	"github.com/andres1jh8/Registro-Back/internal/config"
	"github.com/andres1jh8/Registro-Back/internal/handler"
	"github.com/andres1jh8/Registro-Back/internal/infra"
	"github.com/andres1jh8/Registro-Back/internal/middleware"
	"github.com/andres1jh8/Registro-Back/internal/model"
	"github.com/andres1jh8/Registro-Back/internal/repository"
	"github.com/andres1jh8/Registro-Back/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the infrastructure pieces built by the composition root.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Images   infra.ImageStore
	Enqueuer service.ReporteEnqueuer
}

// Services groups the business services shared by the HTTP layer and the workers.
type Services struct {
	Auth     service.AuthService
	Entradas service.EntradaService
	Salidas  service.SalidaService
	Reportes service.ReporteService
}

// NewServices wires Service ← Repository ← DB/Redis.
func NewServices(cfg *config.Config, deps Deps) *Services {
	var cache *infra.Cache
	if deps.Redis != nil {
		cache = infra.NewCache(deps.Redis, "registro:", time.Duration(cfg.ReportCacheTTLMinutes)*time.Minute)
	}

	usuarioRepo := repository.NewUsuarioRepository(deps.DB)
	entradaRepo := repository.NewEntradaRepository(deps.DB)
	salidaRepo := repository.NewSalidaRepository(deps.DB)
	reporteRepo := repository.NewReporteRepository(deps.DB)

	return &Services{
		Auth:     service.NewAuthService(usuarioRepo, cfg),
		Entradas: service.NewEntradaService(entradaRepo, deps.Images, cache, cfg),
		Salidas:  service.NewSalidaService(salidaRepo, entradaRepo, reporteRepo, cache),
		Reportes: service.NewReporteService(reporteRepo, deps.Images, cache, deps.Enqueuer, cfg),
	}
}

// New returns a configured Gin engine serving svcs.
func New(cfg *config.Config, deps Deps, svcs *Services) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = int64(cfg.MaxUploadMB*2) << 20

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(600, time.Minute))

	Register(r, cfg, svcs)

	if deps.DB != nil && deps.Redis != nil {
		r.GET("/health", handler.Health(deps.DB, deps.Redis))
	}

	if local, ok := deps.Images.(*infra.LocalStore); ok {
		r.Static(strings.TrimSuffix(infra.LocalURLPrefix, "/"), local.Dir())
	}

	// Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

// Register mounts the /api routes on r.
func Register(r gin.IRouter, cfg *config.Config, svcs *Services) {
	authH := handler.NewAuthHandler(svcs.Auth)
	entradasH := handler.NewEntradasHandler(svcs.Entradas, cfg.MaxUploadMB)
	salidasH := handler.NewSalidasHandler(svcs.Salidas)
	reportesH := handler.NewReportesHandler(svcs.Reportes)

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RolAdmin, model.RolEmployee)
	adminOnly := middleware.RequireRole(model.RolAdmin)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/check-admin", authH.CheckAdmin)
		auth.GET("/test", jwtMW, authH.Test)
	}

	entradas := api.Group("/entradas", jwtMW)
	{
		entradas.POST("", anyRole, entradasH.Crear)
		entradas.GET("", anyRole, entradasH.Listar)
		entradas.GET("/meses", anyRole, entradasH.Meses)
		entradas.GET("/:id", anyRole, entradasH.ObtenerPorID)
		entradas.PUT("/:id", anyRole, entradasH.Actualizar)
		entradas.DELETE("/:id", adminOnly, entradasH.Eliminar)
	}

	salidas := api.Group("/salidas", jwtMW)
	{
		salidas.GET("/movimientos", anyRole, salidasH.Movimientos)
		salidas.GET("/reporte/:anio/:mes", anyRole, reportesH.Mensual)
		salidas.GET("/reporte/excel/:anio/:mes", anyRole, reportesH.Excel)
		salidas.GET("/reporte/pdf/:anio/:mes", anyRole, reportesH.PDF)
		salidas.POST("/reporte/email/:anio/:mes", anyRole, reportesH.EnviarEmail)

		salidas.POST("", anyRole, salidasH.Crear)
		salidas.GET("", anyRole, salidasH.Listar)
		salidas.GET("/:id", anyRole, salidasH.ObtenerPorID)
		salidas.PUT("/:id", anyRole, salidasH.Actualizar)
		salidas.DELETE("/:id", adminOnly, salidasH.Eliminar)
	}
}
