package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	db "github.com/deckhand-ai/deckhand/internal/core/database"
	"github.com/deckhand-ai/deckhand/internal/models"
)

type ShareLinkService struct {
	dbc           db.DbClient
	defaultBudget int
}

func NewShareLinkService(dbc db.DbClient, defaultBudget int) *ShareLinkService {
	return &ShareLinkService{dbc: dbc, defaultBudget: defaultBudget}
}

// Create issues a new investor link for a project. limitTokens caps the
// cumulative token spend of all conversations on the link; 0 means the
// configured default.
func (s *ShareLinkService) Create(ctx context.Context, projectID string, limitTokens int) (*models.ShareLink, error) {
	project, err := s.dbc.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project not found: %s", projectID)
	}
	if limitTokens <= 0 {
		limitTokens = s.defaultBudget
	}
	link := &models.ShareLink{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Token:       uuid.NewString(),
		LimitTokens: limitTokens,
	}
	if err := s.dbc.CreateShareLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *ShareLinkService) Resolve(ctx context.Context, token string) (*models.ShareLink, error) {
	return s.dbc.GetShareLinkByToken(ctx, token)
}
