package handlers

import (
	"fmt"
	"net/http"

	"github.com/SscSPs/dental_lab_app/cmd/docs"
	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/middleware"
	"github.com/SscSPs/dental_lab_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	loginLimiter, err := middleware.NewMemoryLimiter(cfg.LoginRateLimit)
	if err != nil {
		return fmt.Errorf("login rate limit: %w", err)
	}
	apiLimiter, err := middleware.NewMemoryLimiter(cfg.APIRateLimit)
	if err != nil {
		return fmt.Errorf("api rate limit: %w", err)
	}

	// Public authentication routes
	registerAuthRoutes(r.Group("/api/v1"), services, middleware.RateLimit(loginLimiter))

	setupAPIV1Routes(r, cfg, services, middleware.RateLimit(apiLimiter))

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the authenticated /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	apiLimit gin.HandlerFunc,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer), apiLimit)

	registerClientRoutes(v1, services.Client, services.Case)
	registerInvoiceRoutes(v1, services.Invoice)
	registerPaymentRoutes(v1, services.Payment, services.Adjustment)
	registerReportingRoutes(v1, services)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
