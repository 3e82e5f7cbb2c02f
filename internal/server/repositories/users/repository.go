// Package users holds the credential store: registered accounts keyed by a
// unique name and a unique email.
package users

import (
	"context"

	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

// Repository persists users. Implementations enforce name and email
// uniqueness themselves and report a violation as common.ErrorAlreadyExists;
// lookups of unknown names return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByName(ctx context.Context, name string) (*models.User, error)
}
