package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/pipr-api/internal/domain"
	"github.com/jhoicas/pipr-api/internal/domain/repository"
)

// FacilityResolver obtiene el CEDI asignado al usuario autenticado.
type FacilityResolver struct {
	users repository.UserRepository
}

// NewFacilityResolver construye el resolver sobre el repositorio de usuarios.
func NewFacilityResolver(users repository.UserRepository) *FacilityResolver {
	return &FacilityResolver{users: users}
}

// ResolveFacility devuelve domain.ErrFacilityUnresolved si el usuario no existe
// o no tiene CEDI asignado.
func (r *FacilityResolver) ResolveFacility(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: %w", domain.ErrFacilityUnresolved, domain.ErrUnauthorized)
	}
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("%w: usuario %s no existe", domain.ErrFacilityUnresolved, userID)
		}
		return 0, fmt.Errorf("%w: %w", domain.ErrFacilityUnresolved, err)
	}
	if user == nil || user.CediID == nil {
		return 0, domain.ErrFacilityUnresolved
	}
	return *user.CediID, nil
}
