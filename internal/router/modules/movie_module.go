package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/cinevault/cinevault/internal/interface/http"
	"github.com/cinevault/cinevault/internal/interface/middleware"
	"github.com/cinevault/cinevault/pkg/helpers"
)

// MovieModule wires the catalog and purchase endpoints.
// Listings use optional auth so purchase annotation works for logged-in
// browsers without requiring login.
type MovieModule struct {
	Handler *handlers.MovieHandler
	JWT     *helpers.JWTManager
}

func NewMovieModule(h *handlers.MovieHandler, jwt *helpers.JWTManager) *MovieModule {
	return &MovieModule{Handler: h, JWT: jwt}
}

func (m *MovieModule) Register(rg *gin.RouterGroup) {
	movies := rg.Group("/movies")

	public := movies.Group("")
	public.Use(middleware.OptionalAuth(m.JWT))
	{
		public.GET("", m.Handler.List)
		public.GET("/search", m.Handler.Search)
		public.GET("/featured-movies", m.Handler.Featured)
		public.GET("/recent", m.Handler.Recent)
		public.GET("/top-viewed", m.Handler.TopViewed)
		public.GET("/soon-releasing", m.Handler.SoonReleasing)
		public.GET("/top-rated", m.Handler.TopRated)
		public.GET("/type/:movieType", m.Handler.ByType)
		public.GET("/genre/:genreId", m.Handler.ByGenre)
		// Static prefixes before the movie id: Gin's router rejects a
		// wildcard segment next to a static one in the same position.
		public.GET("/detail/:movieId", m.Handler.Detail)
	}

	protected := movies.Group("")
	protected.Use(middleware.Auth(m.JWT))
	{
		protected.POST("/:movieId/rate", m.Handler.Rate)
		protected.POST("/:movieId/view", m.Handler.View)
		protected.POST("/:movieId/toggle-favorites", m.Handler.ToggleFavorite)
		protected.POST("/:movieId/checkout", m.Handler.Checkout)
		protected.GET("/verify-transaction/:movieId", m.Handler.VerifyTransaction)
		protected.GET("/is-purchased/:movieId", m.Handler.IsPurchased)
		protected.GET("/transactions/list", m.Handler.Transactions)
	}

	admin := movies.Group("")
	admin.Use(middleware.Auth(m.JWT), middleware.RequireAdmin())
	{
		admin.POST("", m.Handler.Create)
		admin.PUT("/:movieId", m.Handler.Update)
		admin.DELETE("/:movieId", m.Handler.Delete)
		admin.PATCH("/:movieId/featured", m.Handler.SetFeatured)
	}
}
