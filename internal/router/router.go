package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/visawatch/internal/auth"
	"github.com/monocle-dev/visawatch/internal/handlers"
	"github.com/monocle-dev/visawatch/internal/middleware"
	"github.com/monocle-dev/visawatch/internal/types"
	"go.uber.org/zap"
)

type Options struct {
	Handler        *handlers.Handler
	Signer         *auth.Signer
	Logger         *zap.Logger
	AllowedOrigins []string
	DefaultUserID  uint
}

func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(opts.Logger), middleware.Recovery(opts.Logger))

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = types.AllowedOrigins("", "")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	h := opts.Handler
	user := middleware.ResolveUser(opts.Signer, opts.DefaultUserID)

	r.GET("/ws", h.WebSocket)

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", h.LoginUser)
			authGroup.GET("/me", user, h.Me)
		}

		monitoring := api.Group("/monitoring", user)
		{
			monitoring.GET("/status", h.GetMonitoringStatus)
			monitoring.POST("/check", h.CheckAvailability)
			monitoring.POST("/start", h.StartMonitoring)
			monitoring.POST("/stop", h.StopMonitoring)
			monitoring.GET("/settings", h.GetSettings)
			monitoring.POST("/settings", h.SaveSettings)
		}

		logs := api.Group("/activity-logs", user)
		{
			logs.GET("", h.GetActivityLogs)
			logs.DELETE("", h.ClearActivityLogs)
		}

		api.GET("/system/stats", h.GetSystemStats)

		notifications := api.Group("/notifications/test", user)
		{
			notifications.POST("/email", h.TestEmail)
			notifications.POST("/telegram", h.TestTelegram)
		}
	}

	return r
}
