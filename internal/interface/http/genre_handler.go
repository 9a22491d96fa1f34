package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/cinevault/cinevault/internal/application"
	"github.com/cinevault/cinevault/pkg/response"
)

type GenreHandler struct {
	Genres *app.GenreService
	Logger *logrus.Logger
}

func NewGenreHandler(genres *app.GenreService, logger *logrus.Logger) *GenreHandler {
	return &GenreHandler{Genres: genres, Logger: logger}
}

func (h *GenreHandler) List(c *gin.Context) {
	genres, err := h.Genres.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, genres, "genres", nil)
}

func (h *GenreHandler) Get(c *gin.Context) {
	genre, err := h.Genres.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, genre, "genre", nil)
}

func genreImage(c *gin.Context) *app.CoverUpload {
	file, err := c.FormFile("image")
	if err != nil {
		return nil
	}
	return openUpload(file)
}

func (h *GenreHandler) Create(c *gin.Context) {
	genre, err := h.Genres.Create(c.Request.Context(), c.PostForm("name"), genreImage(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, genre, "genre created", nil)
}

func (h *GenreHandler) Update(c *gin.Context) {
	genre, err := h.Genres.Update(c.Request.Context(), c.Param("id"), c.PostForm("name"), genreImage(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, genre, "genre updated", nil)
}

func (h *GenreHandler) Delete(c *gin.Context) {
	if err := h.Genres.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "genre deleted", nil)
}
