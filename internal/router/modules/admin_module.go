package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/cinevault/cinevault/internal/interface/http"
	"github.com/cinevault/cinevault/internal/interface/middleware"
	"github.com/cinevault/cinevault/pkg/helpers"
)

// AdminModule wires the admin-account management endpoints.
type AdminModule struct {
	Handler *handlers.AdminHandler
	JWT     *helpers.JWTManager
}

func NewAdminModule(h *handlers.AdminHandler, jwt *helpers.JWTManager) *AdminModule {
	return &AdminModule{Handler: h, JWT: jwt}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(m.JWT), middleware.RequireAdmin())
	{
		admin.GET("/list", m.Handler.ListAdmins)
		admin.POST("/add-admin", m.Handler.AddAdmin)
		admin.PATCH("/:adminId", m.Handler.UpdateAdmin)
		admin.DELETE("/:adminId", m.Handler.DeleteAdmin)
		admin.GET("/all-users", m.Handler.ListUsers)
	}
}
