package api

import (
	"net/http"
	"time"

	"github.com/Aidin1998/crudgate/internal/infrastructure/server"
	"github.com/Aidin1998/crudgate/internal/items"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func init() {
	// Request bodies are decoded with json.Number so integers survive the
	// round trip to the store.
	binding.EnableDecoderUseNumber = true
}

// Server represents the API server
type Server struct {
	router *gin.Engine
	logger *zap.Logger
	store  items.Store
	health *server.HealthChecker
}

// NewServer creates a new API server backed by store
func NewServer(logger *zap.Logger, store items.Store) *Server {
	s := &Server{
		logger: logger,
		store:  store,
		health: server.NewHealthChecker(logger, 5*time.Second),
	}
	s.health.RegisterPinger("store", store)

	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(requestID())
	router.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		Context: func(c *gin.Context) []zapcore.Field {
			return []zapcore.Field{zap.String("request_id", c.GetString(requestIDKey))}
		},
	}))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(otelgin.Middleware("crudgate"))

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:   []string{"Content-Length", requestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	router.Use(s.errorHandler())

	s.router = router
	s.registerRoutes()
	return s
}

// Router returns the internal Gin engine for testing purposes
func (s *Server) Router() *gin.Engine {
	return s.router
}

// HTTPServer returns an http.Server serving the API on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.health.Handler())
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	itemRoutes := s.router.Group("/items")
	{
		itemRoutes.GET("", s.listItems)
		itemRoutes.GET("/:id", s.getItem)
		itemRoutes.POST("", s.createItem)
		itemRoutes.PUT("/:id", s.updateItem)
		itemRoutes.DELETE("/:id", s.deleteItem)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "The requested resource was not found",
			"path":    c.Request.URL.Path,
		})
	})

	s.router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":   "method_not_allowed",
			"message": "The requested method is not allowed for this resource",
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
		})
	})
}
