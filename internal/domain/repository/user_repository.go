package repository

import (
	"context"

	"github.com/jhoicas/pipr-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
