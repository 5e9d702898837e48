package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	db "github.com/deckhand-ai/deckhand/internal/core/database"
	"github.com/deckhand-ai/deckhand/internal/models"
)

type ProjectService struct {
	dbc db.DbClient
}

func NewProjectService(dbc db.DbClient) *ProjectService {
	return &ProjectService{dbc: dbc}
}

func (s *ProjectService) Create(ctx context.Context, userID, name string) (*models.Project, error) {
	if name == "" {
		return nil, errors.New("project name is required")
	}
	p := &models.Project{ID: uuid.NewString(), UserID: userID, Name: name}
	if err := s.dbc.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	return s.dbc.GetProjectByID(ctx, id)
}

func (s *ProjectService) ListByUser(ctx context.Context, userID string) ([]models.Project, error) {
	return s.dbc.ListProjectsByUser(ctx, userID)
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	return s.dbc.DeleteProject(ctx, id)
}
