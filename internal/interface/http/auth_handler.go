package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/cinevault/cinevault/internal/application"
	"github.com/cinevault/cinevault/internal/infrastructure/captcha"
	"github.com/cinevault/cinevault/pkg/helpers"
	"github.com/cinevault/cinevault/pkg/response"
	"github.com/cinevault/cinevault/pkg/validation"
)

type AuthHandler struct {
	Auth    *app.AuthService
	Movies  *app.MovieService
	Captcha *captcha.Verifier
	Logger  *logrus.Logger

	// legacy AES-GCM password pre-encoding shim
	Passphrase string
	Salt       string
}

func NewAuthHandler(auth *app.AuthService, movies *app.MovieService, verifier *captcha.Verifier, logger *logrus.Logger, passphrase, salt string) *AuthHandler {
	return &AuthHandler{Auth: auth, Movies: movies, Captcha: verifier, Logger: logger, Passphrase: passphrase, Salt: salt}
}

type registerRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required"`
	Password       string `json:"password" binding:"required"`
	RecaptchaToken string `json:"recaptcha_token"`
}

type loginRequest struct {
	Email          string `json:"email" binding:"required"`
	Password       string `json:"password" binding:"required"`
	RecaptchaToken string `json:"recaptcha_token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// password runs the legacy client-side encryption shim: older web clients
// send AES-GCM encrypted, base64 passwords; newer ones send plaintext.
func (h *AuthHandler) password(raw string) string {
	return helpers.TryDecryptPassword(raw, h.Passphrase, h.Salt)
}

func (h *AuthHandler) checkCaptcha(c *gin.Context, token string) bool {
	if h.Captcha.Verify(c.Request.Context(), token) {
		return true
	}
	response.Error[any](c, http.StatusBadRequest, "Captcha verification failed", nil)
	return false
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if !h.checkCaptcha(c, req.RecaptchaToken) {
		return
	}
	user, err := h.Auth.Register(c.Request.Context(), req.Name, req.Email, h.password(req.Password))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, user, "registration successful", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if !h.checkCaptcha(c, req.RecaptchaToken) {
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), req.Email, h.password(req.Password))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"token":            res.Token,
		"password_expired": res.PasswordExpired,
		"user":             res.User,
	}, "login successful", gin.H{"expires_at": res.ExpiresAt})
}

func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Auth.AdminLogin(c.Request.Context(), req.Email, h.password(req.Password))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"token": res.Token,
		"user":  res.User,
	}, "login successful", gin.H{"expires_at": res.ExpiresAt})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString("userID")
	if err := h.Auth.ChangePassword(c.Request.Context(), uid, h.password(req.OldPassword), h.password(req.NewPassword)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.Auth.Profile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user, "profile", nil)
}

func (h *AuthHandler) Favorites(c *gin.Context) {
	movies, err := h.Movies.Favorites(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, movies, "favorite movies", nil)
}
