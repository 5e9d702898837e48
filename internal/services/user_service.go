package services

import (
	"context"
	"errors"

	db "github.com/deckhand-ai/deckhand/internal/core/database"
	"github.com/deckhand-ai/deckhand/internal/models"
)

type UserService struct {
	dbc db.DbClient
}

func NewUserService(dbc db.DbClient) *UserService {
	return &UserService{dbc: dbc}
}

func (s *UserService) Create(ctx context.Context, u *models.User) error {
	if u == nil || u.Email == "" || u.PasswordHash == "" {
		return errors.New("invalid user payload")
	}
	return s.dbc.CreateUser(ctx, u)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.dbc.GetUserByEmail(ctx, email)
}
