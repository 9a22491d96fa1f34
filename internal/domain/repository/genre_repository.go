package repository

import (
	"context"

	"github.com/cinevault/cinevault/internal/domain/entity"
)

type GenreRepository interface {
	Create(ctx context.Context, g *entity.Genre) error
	GetByID(ctx context.Context, id string) (*entity.Genre, error)
	List(ctx context.Context) ([]*entity.Genre, error)
	Update(ctx context.Context, g *entity.Genre) error
	Delete(ctx context.Context, id string) error
}
