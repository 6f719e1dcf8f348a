// Package vaccines persists the clinic-scoped vaccine catalog that extracted
// vaccination candidates are resolved against.
package vaccines

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/vetintake/internal/models"
)

// Repository is the catalog store.
type Repository interface {
	// FindByName returns the first catalog entry of the clinic, in creation
	// order, whose name contains name case-insensitively. It returns
	// common.ErrorNotFound when nothing matches.
	FindByName(ctx context.Context, clinicID, name string) (*models.Vaccine, error)

	// Create inserts v, assigning an id, creation time and a dose count of 1
	// when those are unset.
	Create(ctx context.Context, v *models.Vaccine) (*models.Vaccine, error)

	// ListByClinic returns the clinic's catalog in creation order.
	ListByClinic(ctx context.Context, clinicID string) ([]*models.Vaccine, error)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s safe to embed in a LIKE pattern with ESCAPE '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
