package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/cinevault/cinevault/internal/interface/http"
	"github.com/cinevault/cinevault/internal/interface/middleware"
	"github.com/cinevault/cinevault/pkg/helpers"
)

// GenreModule wires the genre taxonomy endpoints.
type GenreModule struct {
	Handler *handlers.GenreHandler
	JWT     *helpers.JWTManager
}

func NewGenreModule(h *handlers.GenreHandler, jwt *helpers.JWTManager) *GenreModule {
	return &GenreModule{Handler: h, JWT: jwt}
}

func (m *GenreModule) Register(rg *gin.RouterGroup) {
	genres := rg.Group("/genres")
	genres.GET("", m.Handler.List)
	genres.GET("/:id", m.Handler.Get)

	admin := genres.Group("")
	admin.Use(middleware.Auth(m.JWT), middleware.RequireAdmin())
	{
		admin.POST("", m.Handler.Create)
		admin.PUT("/:id", m.Handler.Update)
		admin.DELETE("/:id", m.Handler.Delete)
	}
}
