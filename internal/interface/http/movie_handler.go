package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/cinevault/cinevault/internal/application"
	"github.com/cinevault/cinevault/internal/domain/entity"
	repo "github.com/cinevault/cinevault/internal/domain/repository"
	"github.com/cinevault/cinevault/pkg/response"
	"github.com/cinevault/cinevault/pkg/validation"
)

type MovieHandler struct {
	Movies   *app.MovieService
	Payments *app.PaymentService
	Logger   *logrus.Logger
}

func NewMovieHandler(movies *app.MovieService, payments *app.PaymentService, logger *logrus.Logger) *MovieHandler {
	return &MovieHandler{Movies: movies, Payments: payments, Logger: logger}
}

func (h *MovieHandler) List(c *gin.Context) {
	movies, err := h.Movies.List(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, movies, "movies", nil)
}

func (h *MovieHandler) Detail(c *gin.Context) {
	movie, err := h.Movies.Detail(c.Request.Context(), c.GetString("userID"), c.Param("movieId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, movie, "movie detail", nil)
}

func (h *MovieHandler) Search(c *gin.Context) {
	q := repo.SearchQuery{
		Term:    c.Query("term"),
		GenreID: c.Query("genre"),
		SortBy:  c.Query("sortBy"),
		OrderBy: c.Query("orderBy"),
	}
	movies, err := h.Movies.Search(c.Request.Context(), c.GetString("userID"), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, movies, "search results", nil)
}

func (h *MovieHandler) Featured(c *gin.Context) {
	movies, err := h.Movies.Featured(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, movies, "featured movies", nil)
}

func (h *MovieHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	movies, err := h.Movies.Recent(c.Request.Context(), c.GetString("userID"), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, movies, "recent movies", nil)
}

func (h *MovieHandler) TopViewed(c *gin.Context) {
	movies, err := h.Movies.TopViewed(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, movies, "top viewed movies", nil)
}

func (h *MovieHandler) SoonReleasing(c *gin.Context) {
	movies, err := h.Movies.SoonReleasing(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, movies, "soon releasing movies", nil)
}

func (h *MovieHandler) TopRated(c *gin.Context) {
	movies, err := h.Movies.TopRated(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, movies, "top rated movies", nil)
}

func (h *MovieHandler) ByType(c *gin.Context) {
	movies, err := h.Movies.ByType(c.Request.Context(), c.GetString("userID"), c.Param("movieType"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, movies, "movies by type", nil)
}

func (h *MovieHandler) ByGenre(c *gin.Context) {
	movies, err := h.Movies.ByGenre(c.Request.Context(), c.GetString("userID"), c.Param("genreId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, movies, "movies by genre", nil)
}

type rateRequest struct {
	Rating int    `json:"rating" binding:"required"`
	Review string `json:"review"`
}

func (h *MovieHandler) Rate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Movies.Rate(c.Request.Context(), c.GetString("userID"), c.Param("movieId"), req.Rating, req.Review); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"rated": true}, "rating recorded", nil)
}

func (h *MovieHandler) View(c *gin.Context) {
	if err := h.Movies.IncrementView(c.Request.Context(), c.Param("movieId")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"viewed": true}, "view recorded", nil)
}

func (h *MovieHandler) ToggleFavorite(c *gin.Context) {
	favorited, err := h.Movies.ToggleFavorite(c.Request.Context(), c.GetString("userID"), c.Param("movieId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"favorited": favorited}, "favorite toggled", nil)
}

func (h *MovieHandler) Checkout(c *gin.Context) {
	res, err := h.Payments.CreateCheckoutSession(c.Request.Context(), c.GetString("userID"), c.Param("movieId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, "checkout session created", nil)
}

func (h *MovieHandler) VerifyTransaction(c *gin.Context) {
	tx, err := h.Payments.VerifyTransaction(c.Request.Context(), c.GetString("userID"), c.Param("movieId"), c.Query("session_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transaction": tx}, "transaction verified", nil)
}

func (h *MovieHandler) IsPurchased(c *gin.Context) {
	purchased, err := h.Payments.IsPurchased(c.Request.Context(), c.GetString("userID"), c.Param("movieId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"purchased": purchased}, "purchase state", nil)
}

func (h *MovieHandler) Transactions(c *gin.Context) {
	txs, err := h.Payments.ListTransactions(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, txs, "transactions", nil)
}

// movieForm is the multipart payload for admin create/update. Cast arrives
// as a JSON-encoded string field, the cover as a file part.
type movieForm struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description" binding:"required"`
	ReleaseDate string `form:"release_date" binding:"required"`
	GenreID     string `form:"genre_id" binding:"required"`
	TrailerLink string `form:"trailer_link"`
	MovieLink   string `form:"movie_link"`
	Cast        string `form:"cast"`
	Runtime     int    `form:"runtime"`
	MovieType   string `form:"movie_type" binding:"required"`
}

func (f *movieForm) toInput() (app.MovieInput, error) {
	released, err := time.Parse("2006-01-02", f.ReleaseDate)
	if err != nil {
		return app.MovieInput{}, err
	}
	var cast []entity.CastMember
	if f.Cast != "" {
		if err := json.Unmarshal([]byte(f.Cast), &cast); err != nil {
			return app.MovieInput{}, err
		}
	}
	return app.MovieInput{
		Title:       f.Title,
		Description: f.Description,
		ReleaseDate: released,
		GenreID:     f.GenreID,
		TrailerLink: f.TrailerLink,
		MovieLink:   f.MovieLink,
		Cast:        cast,
		Runtime:     f.Runtime,
		MovieType:   f.MovieType,
	}, nil
}

func coverFromForm(c *gin.Context) *app.CoverUpload {
	file, err := c.FormFile("cover_image")
	if err != nil {
		return nil
	}
	return openUpload(file)
}

func openUpload(file *multipart.FileHeader) *app.CoverUpload {
	f, err := file.Open()
	if err != nil {
		return nil
	}
	return &app.CoverUpload{
		Reader:      f,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
	}
}

func (h *MovieHandler) Create(c *gin.Context) {
	var form movieForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	input, err := form.toInput()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}
	movie, err := h.Movies.CreateMovie(c.Request.Context(), input, coverFromForm(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, movie, "movie created", nil)
}

func (h *MovieHandler) Update(c *gin.Context) {
	var form movieForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	input, err := form.toInput()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}
	movie, err := h.Movies.UpdateMovie(c.Request.Context(), c.Param("movieId"), input, coverFromForm(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, movie, "movie updated", nil)
}

func (h *MovieHandler) Delete(c *gin.Context) {
	if err := h.Movies.DeleteMovie(c.Request.Context(), c.Param("movieId")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "movie deleted", nil)
}

type featuredRequest struct {
	Featured *bool `json:"featured" binding:"required"`
}

func (h *MovieHandler) SetFeatured(c *gin.Context) {
	var req featuredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Movies.SetFeatured(c.Request.Context(), c.Param("movieId"), *req.Featured); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"featured": *req.Featured}, "featured flag updated", nil)
}
