// Package httpapi exposes the catalog service over HTTP with gin.
package httpapi

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"toolcatalog/internal/app/catalog"
	"toolcatalog/internal/domain"
)

// CatalogService is the subset of the catalog service served over HTTP.
type CatalogService interface {
	List(ctx context.Context, opts catalog.ListOptions) ([]domain.Tool, error)
	Get(ctx context.Context, id int) (domain.Tool, error)
	Compare(ctx context.Context, rawIDs string) ([]domain.Tool, error)
	Categories(ctx context.Context, visibility domain.Visibility) ([]string, error)
	Create(ctx context.Context, input catalog.ToolCreate) (domain.Tool, error)
	Update(ctx context.Context, id int, input catalog.ToolUpdate) (domain.Tool, error)
	Delete(ctx context.Context, id int) error
}

type RouterOptions struct {
	Service      CatalogService
	Logger       *zap.Logger
	Metrics      domain.Metrics
	StaticDir    string
	AdminEnabled bool
}

type handler struct {
	service CatalogService
	logger  *zap.Logger
}

// NewRouter builds the gin engine with the public routes, the admin routes
// when enabled and the static front page when a directory is configured.
func NewRouter(opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NoopMetrics{}
	}

	router := gin.New()
	router.Use(requestID(), accessLog(logger, metrics), recovery(logger))

	h := &handler{service: opts.Service, logger: logger}

	api := router.Group("/api")
	api.GET("/tools", h.listPublic)
	api.GET("/tools/compare", h.compare)
	api.GET("/tools/:id", h.getPublic)
	api.GET("/categories", h.categories)

	if opts.AdminEnabled {
		admin := api.Group("/admin")
		admin.GET("/tools", h.listAdmin)
		admin.POST("/tools", h.create)
		admin.GET("/tools/:id", h.getAdmin)
		admin.PUT("/tools/:id", h.update)
		admin.PATCH("/tools/:id", h.update)
		admin.DELETE("/tools/:id", h.delete)
	}

	if opts.StaticDir != "" {
		mountStatic(router, opts.StaticDir, logger)
	}

	router.NoRoute(func(c *gin.Context) {
		writeError(c, logger, domain.E(domain.CodeNotFound, "http", "Not found", nil))
	})
	return router
}

func mountStatic(router *gin.Engine, dir string, logger *zap.Logger) {
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err == nil {
		router.StaticFile("/", index)
	} else {
		logger.Warn("static index not found", zap.String("path", index))
	}
	router.Static("/static", dir)
}
