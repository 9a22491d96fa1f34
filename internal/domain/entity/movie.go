package entity

import "time"

// Movie types
const (
	TypeMovie  = "movie"
	TypeSeries = "series"
)

// CastMember is one entry of a movie's cast list, stored as jsonb.
type CastMember struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type Movie struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	ReleaseDate   time.Time    `json:"release_date"`
	GenreID       string       `json:"genre_id"`
	GenreName     string       `json:"genre"`
	TrailerLink   string       `json:"trailer_link,omitempty"`
	MovieLink     string       `json:"movie_link,omitempty"`
	CoverImageURL string       `json:"cover_image,omitempty"`
	Cast          []CastMember `json:"cast,omitempty"`
	Runtime       int          `json:"runtime"`
	MovieType     string       `json:"movie_type"`
	Featured      bool         `json:"featured"`
	Views         int64        `json:"views"`
	AverageRating float64      `json:"average_rating"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// AnnotatedMovie is a movie enriched with the requesting user's
// purchase/favorite state. Purchased mirrors IsPurchased for backwards
// compatibility with older clients.
type AnnotatedMovie struct {
	Movie
	Purchased   bool         `json:"purchased"`
	IsPurchased bool         `json:"isPurchased"`
	IsFavourite bool         `json:"isFavourite"`
	Transaction *Transaction `json:"transaction,omitempty"`
}

type Rating struct {
	ID        string    `json:"id"`
	MovieID   string    `json:"movie_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
