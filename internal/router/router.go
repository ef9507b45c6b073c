package router

import (
	"net/http"
	"time"

	"gym_club_backend/internal/handlers"
	"gym_club_backend/internal/middleware"
	"gym_club_backend/internal/services"
	"gym_club_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth          services.AuthService
	Users         services.UserService
	Memberships   services.MembershipService
	Attendance    services.AttendanceService
	Blog          services.BlogService
	Products      services.ProductService
	Notifications services.NotificationService
	Uploads       services.UploadService
	Dashboard     services.DashboardService
}

// Options configures the engine independent of the services.
type Options struct {
	AllowedOrigins []string
	Production     bool
	DebugEndpoints bool
	Diagnostics    handlers.DiagnosticsFunc
	Metrics        *middleware.Metrics
}

// New builds the gin engine with every route under /api.
func New(svc Services, opts Options) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())
	if opts.Metrics != nil {
		engine.Use(opts.Metrics.Middleware())
	}
	engine.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	engine.NoRoute(func(c *gin.Context) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Ruta no encontrada", c.Request.URL.Path))
	})

	handlers.SetErrorDetails(!opts.Production)
	Setup(engine.Group("/api"), svc, opts)
	return engine
}

// Setup registers the route groups on api.
func Setup(api *gin.RouterGroup, svc Services, opts Options) {
	system := handlers.NewSystemHandler(opts.Diagnostics)
	api.GET("", system.Health)
	api.GET("/docs", system.Docs)
	if opts.Metrics != nil {
		api.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	if opts.DebugEndpoints && opts.Diagnostics != nil {
		api.GET("/diagnostico", system.Diagnostico)
	}

	auth := middleware.AuthMiddleware(svc.Auth)
	optionalAuth := middleware.OptionalAuthMiddleware(svc.Auth)

	SetupAuthRoutes(api, handlers.NewAuthHandler(svc.Auth), auth)
	SetupUserRoutes(api, handlers.NewUserHandler(svc.Users), auth)
	SetupMembershipRoutes(api, handlers.NewMembershipHandler(svc.Memberships), auth)
	SetupAttendanceRoutes(api, handlers.NewAttendanceHandler(svc.Attendance), auth)
	SetupBlogRoutes(api, handlers.NewBlogHandler(svc.Blog), auth, optionalAuth)
	SetupProductRoutes(api, handlers.NewProductHandler(svc.Products), auth)
	SetupUploadRoutes(api, handlers.NewUploadHandler(svc.Uploads), auth)
	SetupNotificationRoutes(api, handlers.NewNotificationHandler(svc.Notifications), auth)
	SetupDashboardRoutes(api, handlers.NewDashboardHandler(svc.Dashboard), auth)
}

// corsConfig allows credentials only for an explicit origin list.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
