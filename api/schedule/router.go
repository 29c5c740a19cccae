package schedule

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/minesched/core/logger"
)

// RouterConfig controls NewRouter.
type RouterConfig struct {
	// JWTSecret protects /api routes when non-empty.
	JWTSecret string
	Logger    logger.Logger
}

// NewRouter builds the gin engine serving h.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.NopLogger{}
	}
	r := gin.New()
	r.Use(Recovery(log), RequestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		Success(c, http.StatusOK, "ok", gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	if cfg.JWTSecret != "" {
		api.Use(JWTAuth([]byte(cfg.JWTSecret)))
	}
	sched := api.Group("/schedule")
	{
		sched.POST("/generate", h.Generate)
		sched.GET("/latest", h.Latest)
		sched.GET("/history", h.History)
		sched.GET("/export/:id", h.Export)
		sched.POST("/delays/remove", h.RemoveDelay)
	}
	snaps := api.Group("/snapshots")
	{
		snaps.POST("", h.CreateSnapshot)
		snaps.GET("", h.ListSnapshots)
		snaps.GET("/:id", h.GetSnapshot)
		snaps.DELETE("/:id", h.DeleteSnapshot)
	}
	r.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found")
	})
	return r
}
