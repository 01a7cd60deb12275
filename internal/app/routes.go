package app

import (
	"net/http"
	"time"

	"github.com/content-prism/prism-core/internal/middleware"
	"github.com/content-prism/prism-core/internal/modules/auth/auth"
	"github.com/content-prism/prism-core/internal/modules/content/branding"
	"github.com/content-prism/prism-core/internal/modules/content/source"
	"github.com/content-prism/prism-core/internal/modules/content/template"
	"github.com/content-prism/prism-core/internal/modules/processing/pipeline"
	"github.com/content-prism/prism-core/internal/modules/processing/summary"
	"github.com/content-prism/prism-core/internal/modules/storage/spaces"
	appconfigs "github.com/content-prism/prism-core/internal/modules/system/core/configs"
	"github.com/content-prism/prism-core/internal/modules/system/core/health"
	"github.com/content-prism/prism-core/internal/pkg/bark"
	pkgredis "github.com/content-prism/prism-core/internal/pkg/redis"
	"github.com/content-prism/prism-core/internal/pkg/response"
	"github.com/content-prism/prism-core/internal/pkg/taskqueue"
	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "prism-core",
		"version":  "1.0.0",
		"homepage": "https://github.com/content-prism/prism-core",
		"issues":   "https://github.com/content-prism/prism-core/issues",
	}

	apiPrefix := "/api/v1"

	// Shared services
	cfgSvc := appconfigs.NewService(db)

	// Bark push service for rate-limit alerts.
	barkSvc := bark.New(func() (key, serverURL, siteTitle string) {
		cfg, err := cfgSvc.Get()
		if err != nil {
			return "", "", ""
		}
		return cfg.BarkOptions.Key, cfg.BarkOptions.ServerURL, cfg.Workspace.Name
	})

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(rc.Raw(), barkSvc))
	r.Use(middleware.Idempotence(rc.Raw()))

	taskSvc := taskqueue.NewService(rc)

	// Versioned API
	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth(db))

	// Infrastructure
	health.RegisterRoutes(api, db, rc, a.sched, authMW)

	// App info endpoint
	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(a.cfgStartTime()).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  humanizeDuration(time.Duration(uptimeMs) * time.Millisecond),
		})
	})

	api.GET("/clean_cache", authMW, func(c *gin.Context) {
		cfgSvc.Invalidate()
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// Config
	appconfigs.NewHandler(cfgSvc).RegisterRoutes(api, authMW)

	// Auth
	auth.NewHandler(auth.NewService(db), cfgSvc).RegisterRoutes(api, authMW)

	// Source content and generation inputs
	templateSvc := template.NewService(db)
	brandingSvc := branding.NewService(db)
	source.NewHandler(source.NewService(db)).RegisterRoutes(api, authMW)
	template.NewHandler(templateSvc).RegisterRoutes(api, authMW)
	branding.NewHandler(brandingSvc).RegisterRoutes(api, authMW)

	// Generation pipeline
	pipelineSvc := pipeline.NewService(db, cfgSvc, brandingSvc, templateSvc, taskSvc, a.logger)
	pipeline.NewHandler(pipelineSvc, taskSvc).RegisterRoutes(api, authMW)

	// Summaries
	summary.NewHandler(summary.NewService(db, cfgSvc, taskSvc, a.logger)).RegisterRoutes(api, authMW)

	// Asset storage
	spaces.NewHandler(spaces.NewService(db, cfgSvc, a.logger)).RegisterRoutes(api, authMW)
}
