package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cinevault/cinevault/internal/container"
	handlers "github.com/cinevault/cinevault/internal/interface/http"
	"github.com/cinevault/cinevault/internal/interface/middleware"
	"github.com/cinevault/cinevault/pkg/helpers"
)

// AuthModule wires the account endpoints.
// Public (rate-limited per IP+path): register, login, admin-login.
// Protected: change-password, me, favorites.
type AuthModule struct {
	Handler    *handlers.AuthHandler
	JWT        *helpers.JWTManager
	RateMax    int
	RateWindow time.Duration
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager, rateMax int, rateWindow time.Duration) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, RateMax: rateMax, RateWindow: rateWindow}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(container.GetRedis(), m.RateMax, m.RateWindow, middleware.KeyByIPAndPath())

	auth := rg.Group("/auth")
	auth.POST("/register", limiter, m.Handler.Register)
	auth.POST("/login", limiter, m.Handler.Login)
	auth.POST("/admin-login", limiter, m.Handler.AdminLogin)

	protected := auth.Group("/")
	protected.Use(middleware.Auth(m.JWT))
	{
		protected.POST("/change-password", m.Handler.ChangePassword)
		protected.GET("/me", m.Handler.Me)
		protected.GET("/favorites", m.Handler.Favorites)
	}
}
