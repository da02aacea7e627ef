package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/cvnova/internal/application/service"
	"github.com/khoahotran/cvnova/pkg/logger"
)

type RouterConfig struct {
	RoutePrefix    string
	AllowedOrigins []string
}

type Handlers struct {
	Auth        *AuthHandler
	CV          *CVHandler
	Shared      *SharedHandler
	Preferences *PreferencesHandler
	Analytics   *AnalyticsHandler
}

func NewRouter(cfg RouterConfig, h Handlers, identity service.IdentityProvider, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		RequestID(),
		Recovery(log),
		Logging(log),
		CORS(cfg.AllowedOrigins),
		ErrorMiddleware(log),
	)

	authMiddleware := AuthMiddleware(identity, log)

	api := router.Group(cfg.RoutePrefix)
	{
		api.GET("/health", Health)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", h.Auth.SignUp)
			authGroup.POST("/signin", h.Auth.SignIn)
			authGroup.GET("/oauth/:provider", h.Auth.OAuth)
			authGroup.GET("/session", authMiddleware, h.Auth.Session)
		}

		api.GET("/shared/:shareId", h.Shared.Get)

		private := api.Group("/")
		private.Use(authMiddleware)
		{
			cvs := private.Group("/cvs")
			{
				cvs.GET("", h.CV.List)
				cvs.POST("", h.CV.Create)
				cvs.PUT("/:id", h.CV.Update)
				cvs.DELETE("/:id", h.CV.Delete)
				cvs.POST("/:id/share", h.CV.Share)
			}

			private.GET("/user/preferences", h.Preferences.Get)
			private.PUT("/user/preferences", h.Preferences.Update)
			private.GET("/analytics/:cvId", h.Analytics.Get)
		}
	}

	return router
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}
