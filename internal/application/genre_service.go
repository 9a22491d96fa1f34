package application

import (
	"context"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cinevault/cinevault/internal/domain/entity"
	repo "github.com/cinevault/cinevault/internal/domain/repository"
	"github.com/cinevault/cinevault/pkg/apperr"
	"github.com/cinevault/cinevault/pkg/helpers"
)

// GenreService manages the genre taxonomy and its artwork.
type GenreService struct {
	Genres  repo.GenreRepository
	Storage *storage.Client // nil disables image uploads
	Bucket  string
	Logger  *logrus.Logger
}

func NewGenreService(genres repo.GenreRepository, gcs *storage.Client, bucket string, logger *logrus.Logger) *GenreService {
	return &GenreService{Genres: genres, Storage: gcs, Bucket: bucket, Logger: logger}
}

func (s *GenreService) List(ctx context.Context) ([]*entity.Genre, error) {
	return s.Genres.List(ctx)
}

func (s *GenreService) Get(ctx context.Context, id string) (*entity.Genre, error) {
	return s.Genres.GetByID(ctx, id)
}

func (s *GenreService) uploadImage(ctx context.Context, image *CoverUpload) (string, error) {
	if image == nil || image.Reader == nil {
		return "", nil
	}
	if s.Storage == nil {
		return "", apperr.Validation("Image uploads are not configured")
	}
	object := fmt.Sprintf("genres/%s%s", uuid.NewString(), path.Ext(image.Filename))
	url, err := helpers.UploadImage(ctx, s.Storage, s.Bucket, object, image.ContentType, image.Reader)
	if err != nil {
		return "", fmt.Errorf("upload genre image: %w", err)
	}
	return url, nil
}

func (s *GenreService) Create(ctx context.Context, name string, image *CoverUpload) (*entity.Genre, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.ValidationField("name", "Name is required")
	}
	imageURL, err := s.uploadImage(ctx, image)
	if err != nil {
		return nil, err
	}
	g := &entity.Genre{Name: name, ImageURL: imageURL}
	if err := s.Genres.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GenreService) Update(ctx context.Context, id, name string, image *CoverUpload) (*entity.Genre, error) {
	g, err := s.Genres.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		g.Name = name
	}
	imageURL, err := s.uploadImage(ctx, image)
	if err != nil {
		return nil, err
	}
	if imageURL != "" {
		g.ImageURL = imageURL
	}
	if err := s.Genres.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GenreService) Delete(ctx context.Context, id string) error {
	return s.Genres.Delete(ctx, id)
}
