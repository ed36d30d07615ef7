package httpapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/govhotline/backend/internal/config"
	"github.com/govhotline/backend/internal/http/handlers"
	"github.com/govhotline/backend/internal/http/middleware"

	_ "github.com/govhotline/backend/docs"
)

func corsConfig(allowed string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.AdminKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if strings.TrimSpace(allowed) == "*" || strings.TrimSpace(allowed) == "" {
		// credentials cannot be combined with a wildcard origin
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	for _, origin := range strings.Split(allowed, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}
	return cfg
}

func Router(cfg config.Config, h *handlers.Handler, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(cors.New(corsConfig(cfg.CORSAllowed)))

	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	admin := middleware.AdminKey(cfg.AdminKey)

	tickets := api.Group("/tickets")
	{
		tickets.POST("", h.CreateTicket)
		tickets.GET("", h.ListTickets)
		tickets.GET("/search", h.SearchTickets)
		tickets.GET("/user/:user_id", h.UserTickets)
		tickets.GET("/:id", h.GetTicket)
		tickets.GET("/:id/similar", h.SimilarTickets)
		tickets.PUT("/:id", admin, h.UpdateTicket)
		tickets.DELETE("/:id", admin, h.DeleteTicket)
	}

	qianfan := api.Group("/qianfan")
	{
		qianfan.POST("/analyze", h.Analyze)
		qianfan.POST("/summary", h.Summary)
		qianfan.GET("/test", h.ProbeModel)
	}

	an := api.Group("/analysis")
	{
		an.GET("/statistics", h.Statistics)
		an.GET("/alerts", h.Alerts)
		an.GET("/alerts/briefing", h.Briefing)
		an.GET("/trends/category", h.CategoryTrends)
		an.GET("/trends/location", h.LocationTrends)
		an.GET("/sentiment-analysis", h.Sentiment)
		an.GET("/department-performance", h.DepartmentPerformance)
		an.GET("/keywords-cloud", h.KeywordCloud)
		an.GET("/export/report", h.ExportReport)
	}

	users := api.Group("/users")
	{
		users.POST("/register", h.Register)
		users.GET("/profile/:id", h.Profile)
		users.POST("/comments", h.CreateComment)
		users.GET("/comments/:ticket_id", h.ListComments)
		users.POST("/ratings", h.CreateRating)
		users.GET("/ratings/:ticket_id", h.GetRating)
		// :id is the user on the list route and the notification on /read
		users.GET("/notifications/:id", h.ListNotifications)
		users.PUT("/notifications/:id/read", h.MarkNotificationRead)
	}

	return r
}
