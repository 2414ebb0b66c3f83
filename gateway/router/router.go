package router

import (
	"net/http"

	"github.com/RigelNana/gazotheque/gateway/docs"
	"github.com/RigelNana/gazotheque/gateway/handler"
	"github.com/RigelNana/gazotheque/pkg/auth"
	ginMetrics "github.com/RigelNana/gazotheque/pkg/metrics/gin"
	"github.com/RigelNana/gazotheque/pkg/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const serviceName = "gateway"

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Material *handler.MaterialHandler
	Overview *handler.OverviewHandler
}

type Server struct {
	router  *gin.Engine
	issuer  *auth.Issuer
	origins []string
	logger  *logrus.Logger
}

// New builds the gateway engine. An empty origins list allows any origin.
func New(h Handlers, issuer *auth.Issuer, origins []string, logger *logrus.Logger) *Server {
	s := &Server{
		router:  gin.New(),
		issuer:  issuer,
		origins: origins,
		logger:  logger,
	}
	s.setupMiddleware()
	s.setupRoutes(h)
	return s
}

func (s *Server) setupMiddleware() {
	corsConfig := cors.DefaultConfig()
	if len(s.origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.origins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}

	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger(s.logger))
	s.router.Use(cors.New(corsConfig))
	s.router.Use(ginMetrics.PrometheusMiddleware(serviceName))
}

func (s *Server) setupRoutes(h Handlers) {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	})
	docs.RegisterRoutes(s.router)

	api := s.router.Group("/api")

	// public: QR code landing page and session lookup
	public := api.Group("")
	public.Use(auth.OptionalAuth(s.issuer, s.logger))
	{
		public.GET("/public/materials/:id", h.Material.GetPublicMaterial)
		public.GET("/session/me", h.Auth.Me)
		public.POST("/session/logout", h.Auth.Logout)
	}

	protected := api.Group("")
	protected.Use(auth.RequireAuth(s.issuer, s.logger))
	{
		protected.PUT("/account/role", h.User.UpdateRole)
		protected.POST("/account/picture", h.User.UploadPicture)

		protected.GET("/overview", h.Overview.Overview)
		protected.GET("/overview/total", h.Overview.TotalCount)
		protected.GET("/overview/labs", h.Overview.CountByLab)
		protected.GET("/overview/yearly", h.Overview.BarChart)

		protected.GET("/owners", h.Material.ActiveOwners)
		protected.GET("/tags", h.Material.Tags)

		materials := protected.Group("/materials")
		{
			materials.GET("", h.Material.ListMaterials)
			materials.POST("", h.Material.CreateMaterial)
			materials.POST("/refresh", h.Material.RefreshMaterials)
			materials.GET("/latest", h.Material.LatestMaterials)
			materials.GET("/mine", auth.RequireRole("owner", models.RoleAdmin), h.Material.MyMaterials)
			materials.GET("/tags", h.Material.MaterialTags)
			materials.GET("/search-by-tags", h.Material.SearchByTags)
			materials.GET("/:id", h.Material.GetMaterial)
			materials.PUT("/:id", h.Material.UpdateMaterial)
			materials.DELETE("/:id", h.Material.DeleteMaterial)
			materials.GET("/:id/label", h.Material.GetLabel)
		}
	}
}

// Handler exposes the engine for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

const requestIDHeader = "X-Request-ID"

// requestLogger tags every request with an id (kept from the caller when
// present) and logs failures.
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()
		entry := logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
		})
		if userID, ok := c.Get("user_id"); ok {
			entry = entry.WithField("user_id", userID)
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	}
}
