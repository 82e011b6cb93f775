package route

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bassista/mkdoc/internal/api/controller"
	"github.com/bassista/mkdoc/internal/api/middleware"
	"github.com/bassista/mkdoc/internal/app"
)

// SetupRoutes registers the preview endpoints on r.
func SetupRoutes(r *gin.Engine, appCtx *app.App) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "UP",
		})
	})

	cfg := appCtx.Config.Server
	publicRouter := r.Group("")
	publicRouter.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))
	publicRouter.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	pc := controller.NewPreviewController(appCtx.Status, appCtx.Repo.Paths().Output)
	publicRouter.GET("/", pc.Page)
	publicRouter.GET("/status", pc.Status)
}

// NewEngine builds the gin engine for the preview server with error
// reporting and recovery installed.
func NewEngine(appCtx *app.App) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorReporting(appCtx.Reporter))
	r.Use(gin.Recovery())
	SetupRoutes(r, appCtx)
	return r
}
