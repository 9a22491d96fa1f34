// Package search maintains the Elasticsearch movie index. The index is an
// acceleration layer only; every caller must be able to fall back to SQL
// when the cluster is unreachable.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/cinevault/cinevault/internal/domain/entity"
	"github.com/cinevault/cinevault/internal/domain/repository"
)

type MovieIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewMovieIndex(es *elasticsearch.Client, index string) *MovieIndex {
	if index == "" {
		index = "movies"
	}
	return &MovieIndex{es: es, index: index}
}

type movieDoc struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	GenreID       string  `json:"genre_id"`
	GenreName     string  `json:"genre_name"`
	MovieType     string  `json:"movie_type"`
	Featured      bool    `json:"featured"`
	Views         int64   `json:"views"`
	AverageRating float64 `json:"average_rating"`
	ReleaseDate   string  `json:"release_date"`
}

// Index upserts one movie document keyed by the movie id.
func (i *MovieIndex) Index(ctx context.Context, m *entity.Movie) error {
	doc := movieDoc{
		Title:         m.Title,
		Description:   m.Description,
		GenreID:       m.GenreID,
		GenreName:     m.GenreName,
		MovieType:     m.MovieType,
		Featured:      m.Featured,
		Views:         m.Views,
		AverageRating: m.AverageRating,
		ReleaseDate:   m.ReleaseDate.Format("2006-01-02"),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: m.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, i.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch: index %s: %s", m.ID, res.Status())
	}
	return nil
}

// Delete removes a movie document. Missing documents are not an error.
func (i *MovieIndex) Delete(ctx context.Context, movieID string) error {
	req := esapi.DeleteRequest{Index: i.index, DocumentID: movieID}
	res, err := req.Do(ctx, i.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("elasticsearch: delete %s: %s", movieID, res.Status())
	}
	return nil
}

var sortFields = map[string]string{
	"rating":      "average_rating",
	"views":       "views",
	"name":        "title.keyword",
	"releasedate": "release_date",
	"featured":    "featured",
}

// Search runs the catalog query against the index and returns matching
// movie ids in rank order.
func (i *MovieIndex) Search(ctx context.Context, q repository.SearchQuery) ([]string, error) {
	must := make([]map[string]any, 0, 2)
	if q.Term != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":     q.Term,
				"fields":    []string{"title^2", "description"},
				"fuzziness": "AUTO",
			},
		})
	}
	if q.GenreID != "" {
		must = append(must, map[string]any{
			"term": map[string]any{"genre_id": q.GenreID},
		})
	}
	query := map[string]any{
		"_source": false,
		"size":    100,
		"query":   map[string]any{"bool": map[string]any{"must": must}},
	}
	if field, ok := sortFields[strings.ToLower(q.SortBy)]; ok {
		order := "desc"
		if strings.EqualFold(q.OrderBy, "asc") {
			order = "asc"
		}
		query["sort"] = []map[string]any{{field: map[string]any{"order": order}}}
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch: search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
