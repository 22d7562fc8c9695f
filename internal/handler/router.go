package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	domreq "request-desk/internal/domain/request"
	"request-desk/internal/handler/api"
	"request-desk/internal/handler/middleware"
	"request-desk/internal/pkg/config"
	"request-desk/internal/pkg/metrics"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, requestHandler *api.RequestHandler, systemHandler *api.SystemHandler) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, cfg, requestHandler, systemHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	if cfg.Metrics.Enabled {
		engine.Use(middleware.MetricsMiddleware())
	}
	engine.Use(middleware.ErrorHandler())

	engine.HandleMethodNotAllowed = true
	engine.NoRoute(middleware.NotFound())
	engine.NoMethod(middleware.MethodNotAllowed())
}

func setupRoutes(engine *gin.Engine, cfg config.Config, requestHandler *api.RequestHandler, systemHandler *api.SystemHandler) {
	engine.GET("/", systemHandler.Root)
	engine.GET("/health", systemHandler.Health)

	if cfg.Metrics.Enabled {
		engine.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := engine.Group("/api/v1")
	{
		requests := v1.Group("/requests")
		addRoutes(requests, []route{
			{Method: http.MethodPost, Path: "", Handler: requestHandler.Create},
			{Method: http.MethodGet, Path: "", Handler: requestHandler.List},
			{Method: http.MethodGet, Path: "/statistics", Handler: requestHandler.Statistics},
			{Method: http.MethodGet, Path: "/:id", Handler: requestHandler.Get},
			{Method: http.MethodPut, Path: "/:id", Handler: requestHandler.Update},
			{Method: http.MethodPatch, Path: "/:id", Handler: requestHandler.Update},
			{Method: http.MethodDelete, Path: "/:id", Handler: requestHandler.Delete},
			{Method: http.MethodPost, Path: "/:id/review", Handler: requestHandler.Transition(domreq.ActionStartReview)},
			{Method: http.MethodPost, Path: "/:id/approve", Handler: requestHandler.Transition(domreq.ActionApprove)},
			{Method: http.MethodPost, Path: "/:id/reject", Handler: requestHandler.Transition(domreq.ActionReject)},
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: requestHandler.Transition(domreq.ActionCancel)},
		})
	}
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}
