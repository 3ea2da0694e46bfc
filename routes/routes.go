package routes

import (
	"html/template"
	"net/http"
	"time"

	"regwizard/handlers"
	"regwizard/middleware"
	"regwizard/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options carries what the routes need beyond the handlers.
type Options struct {
	AllowedOrigins []string
	Gatherer       prometheus.Gatherer
	Templates      *template.Template
}

// RegisterWizardRoutes registers the wizard session API.
func RegisterWizardRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/wizard")
	{
		api.POST("", middleware.LocationHintMiddleware(), hb.OpenWizardHandler)
		api.GET("/:id", hb.GetWizardHandler)
		api.PATCH("/:id/fields", hb.UpdateFieldHandler)
		api.POST("/:id/touch", hb.TouchFieldHandler)
		api.POST("/:id/next", hb.NextStepHandler)
		api.POST("/:id/prev", hb.PrevStepHandler)
		api.POST("/:id/validate", hb.ValidateFormHandler)
		api.POST("/:id/submit", hb.SubmitHandler)
		api.DELETE("/:id/submit", hb.CancelSubmitHandler)
		api.POST("/:id/reset", hb.ResetHandler)
		api.GET("/:id/export/text", hb.ExportDraftTextHandler)
		api.GET("/:id/export/csv", hb.ExportDraftCSVHandler)
		api.GET("/:id/live", hb.LiveHandler)
	}
}

// RegisterSummaryRoutes registers read access to submitted snapshots.
func RegisterSummaryRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/summaries")
	{
		api.GET("/:ref", hb.GetSummaryHandler)
		api.GET("/:ref/export/text", hb.ExportSummaryTextHandler)
		api.GET("/:ref/export/csv", hb.ExportSummaryCSVHandler)
	}
}

func RegisterThemeRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/theme")
	{
		api.GET("", hb.GetThemeHandler)
		api.POST("/toggle", hb.ToggleThemeHandler)
	}
}

// RegisterPageRoutes registers the server-rendered wizard and summary pages.
func RegisterPageRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/", middleware.LocationHintMiddleware(), hb.WizardPageHandler)
	r.GET("/summary", hb.SummaryPageHandler)
	r.POST("/theme", hb.ThemeFormHandler)

	forms := r.Group("/wizard")
	{
		forms.POST("/save", hb.SaveStepFormHandler)
		forms.POST("/next", hb.NextStepFormHandler)
		forms.POST("/prev", hb.PrevStepFormHandler)
		forms.POST("/submit", hb.SubmitFormHandler)
		forms.POST("/reset", hb.ResetFormHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "backends": utils.GetHealthStatus()})
	})
}

// RegisterMetricsRoute exposes the Prometheus registry.
func RegisterMetricsRoute(r *gin.Engine, g prometheus.Gatherer) {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", handlers.NoticeHeader, middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	if opts.Templates != nil {
		r.SetHTMLTemplate(opts.Templates)
	}

	RegisterWizardRoutes(r, hb)
	RegisterSummaryRoutes(r, hb)
	RegisterThemeRoutes(r, hb)
	RegisterPageRoutes(r, hb)
	RegisterHealthRoute(r)
	RegisterMetricsRoute(r, opts.Gatherer)
}
