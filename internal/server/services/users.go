// Package services contains server-side business logic: the credential
// pipeline (UserService) and the upload, retrieval and deletion pipelines
// (FileService).
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/cryptox"
	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

// UserService registers users and checks their passwords. It issues no
// sessions or tokens.
type UserService struct {
	repo users.Repository
	cost int
	log  logging.Logger
	now  func() time.Time
}

// NewUserService constructs a UserService. cost is the bcrypt cost.
func NewUserService(repo users.Repository, cost int, log logging.Logger) *UserService {
	return &UserService{repo: repo, cost: cost, log: log, now: time.Now}
}

// Register creates a user. Uniqueness of name and email is left to the store.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.UserSummary, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, common.Validation("Name, email and password are required")
	}

	hash, err := cryptox.HashPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, cryptox.ErrTooLong) {
			return nil, common.Validation("Password must be at most 72 bytes")
		}
		return nil, common.Storage("Failed to create user", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if _, err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.Conflict("User with this name or email already exists", err)
		}
		return nil, common.Storage("Failed to create user", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user.Summary(), nil
}

// Login checks name and password and returns the public view of the user.
func (s *UserService) Login(ctx context.Context, name, password string) (*models.UserSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return nil, common.Validation("Name and password are required")
	}

	user, err := s.repo.GetUserByName(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound("User not found")
		}
		return nil, common.Storage("Failed to look up user", err)
	}

	if err := cryptox.CheckPassword(user.PasswordHash, []byte(password)); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			s.log.Info(ctx, "login rejected", "user_id", user.ID)
			return nil, common.Authentication("Invalid password")
		}
		return nil, common.Storage("Failed to verify password", err)
	}

	return user.Summary(), nil
}
