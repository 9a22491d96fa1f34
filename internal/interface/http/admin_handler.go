package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/cinevault/cinevault/internal/application"
	"github.com/cinevault/cinevault/pkg/response"
	"github.com/cinevault/cinevault/pkg/validation"
)

type AdminHandler struct {
	Admins *app.AdminService
	Logger *logrus.Logger
}

func NewAdminHandler(admins *app.AdminService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Admins: admins, Logger: logger}
}

type addAdminRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateAdminRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *AdminHandler) ListAdmins(c *gin.Context) {
	admins, err := h.Admins.ListAdmins(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, admins, "admins", nil)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.Admins.ListUsers(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, users, "users", nil)
}

func (h *AdminHandler) AddAdmin(c *gin.Context) {
	var req addAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	admin, err := h.Admins.AddAdmin(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, admin, "admin created", nil)
}

func (h *AdminHandler) UpdateAdmin(c *gin.Context) {
	var req updateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	admin, err := h.Admins.UpdateAdmin(c.Request.Context(), c.Param("adminId"), req.Name, req.Email)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, admin, "admin updated", nil)
}

func (h *AdminHandler) DeleteAdmin(c *gin.Context) {
	if err := h.Admins.DeleteAdmin(c.Request.Context(), c.Param("adminId")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "admin deleted", nil)
}
