package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/timetabl/positano/internal/config"
	"github.com/timetabl/positano/internal/handler"
	"github.com/timetabl/positano/internal/middleware"
	"github.com/timetabl/positano/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Lecture *handler.LectureHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── Catalog (read-only) ───────────────────────────────────────────
	// Lecture lists of a whole semester run to megabytes of JSON, so they
	// are compressed; responses may be cached as long as the list cache.
	api := router.Group("/api/v1")
	cacheFor := middleware.CacheControl(int(cfg.ListCacheTTL / time.Second))
	{
		lectures := api.Group("/lectures")
		lectures.GET("", cacheFor, middleware.Brotli(), handlers.Lecture.ListLectures)
		lectures.GET("/:univ/:semester/:litid", cacheFor, handlers.Lecture.GetLecture)
		lectures.GET("/:univ/:semester/:litid/calendar.ics", cacheFor, handlers.Lecture.GetLectureCalendar)

		api.POST("/conflicts", handlers.Lecture.CheckConflicts)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	return router
}
