package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/cppla/forumapp/config"
	"github.com/cppla/forumapp/controllers"
	"github.com/cppla/forumapp/middleware"
	"github.com/cppla/forumapp/services"
	"github.com/cppla/forumapp/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	return SetupRouterWithRegistry(db, prometheus.NewRegistry())
}

// SetupRouterWithRegistry is SetupRouter with a caller supplied metrics registry.
func SetupRouterWithRegistry(db *gorm.DB, reg *prometheus.Registry) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file when GinPath is set, stdout otherwise
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		utils.Sugar.Warnf("gin access logger unavailable: %v", err)
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", utils.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	metrics := middleware.NewMetrics(reg)
	r.Use(cors.New(corsCfg))
	r.Use(metrics.Middleware())
	// Record PV after each request
	r.Use(middleware.PageViewRecorder(db))

	r.Static("/static", cfg.StaticDir)
	r.GET("/", func(c *gin.Context) {
		c.File(strings.TrimRight(cfg.StaticDir, "/") + "/index.html")
	})

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	users := services.NewUserService(db)
	channels := services.NewChannelService(db)
	threads := services.NewThreadService(db)
	comments := services.NewCommentService(db)

	authController := controllers.NewAuthController(users)
	settingsController := controllers.NewSettingsController(users)
	userController := controllers.NewUserController(users)
	channelController := controllers.NewChannelController(channels)
	threadController := controllers.NewThreadController(threads)
	commentController := controllers.NewCommentController(comments)
	statsController := controllers.NewStatsController(services.NewStatsService(db))
	configController := controllers.NewConfigController()

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuth())

	authGroup := api.Group("/auth")
	authGroup.Use(limiter.Middleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Public reads
	api.GET("/stats", statsController.GetStats)
	api.GET("/config/site", configController.GetSite)
	api.GET("/users/:username", userController.Get)
	api.GET("/channels", channelController.List)
	api.GET("/channels/:channel", channelController.Get)
	api.GET("/channels/:channel/threads", threadController.List)
	api.GET("/channels/:channel/threads/:thread", threadController.Get)
	api.GET("/channels/:channel/threads/:thread/comments", commentController.List)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), limiter.Middleware())
	protected.GET("/settings", settingsController.Get)
	protected.PUT("/settings", settingsController.Update)
	protected.POST("/channels", channelController.Create)
	protected.PATCH("/channels/:channel", channelController.Update)
	protected.DELETE("/channels/:channel", channelController.Delete)
	protected.POST("/channels/:channel/bans", channelController.Ban)
	protected.DELETE("/channels/:channel/bans/:username", channelController.Unban)
	protected.POST("/channels/:channel/threads", threadController.Create)
	protected.DELETE("/channels/:channel/threads/:thread", threadController.Delete)
	protected.POST("/channels/:channel/threads/:thread/comments", commentController.Create)
	protected.DELETE("/channels/:channel/threads/:thread/comments/:comment", commentController.Delete)

	admin := protected.Group("")
	admin.Use(middleware.AdminRequired())
	admin.GET("/users", userController.List)
	admin.DELETE("/users/:username", userController.Delete)
	admin.POST("/users/:username/ban", userController.Ban)
	admin.DELETE("/users/:username/ban", userController.Unban)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		if strings.HasPrefix(path, "/static/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "static asset not found"})
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
	})

	return r
}
