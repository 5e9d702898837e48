package db

import (
	"context"

	"github.com/deckhand-ai/deckhand/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a
// specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateProject(ctx context.Context, project *models.Project) error
	GetProjectByID(ctx context.Context, id string) (*models.Project, error)
	ListProjectsByUser(ctx context.Context, userID string) ([]models.Project, error)
	DeleteProject(ctx context.Context, id string) error

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByProject(ctx context.Context, projectID string) ([]models.Document, error)
	// UpdateDocumentStatus records the terminal (or initial) processing
	// state together with the aggregate token and page counts.
	UpdateDocumentStatus(ctx context.Context, id string, status string, tokens int, pageCount int) error
	DeleteDocument(ctx context.Context, id string) error

	// ReplaceDocumentChunks deletes any existing chunks for the document and
	// inserts the given rows in one transaction, keeping chunk indices
	// contiguous and making ingestion all-or-nothing per document.
	ReplaceDocumentChunks(ctx context.Context, documentID string, chunks []models.DocumentChunk) error
	GetChunksByDocument(ctx context.Context, documentID string) ([]models.DocumentChunk, error)
	// SearchProjectChunks returns the chunks of a project's completed
	// documents nearest to queryVec by cosine distance, as ranker candidates.
	SearchProjectChunks(ctx context.Context, projectID string, queryVec []float32, limit int) ([]models.DocumentChunk, error)

	CreateShareLink(ctx context.Context, link *models.ShareLink) error
	GetShareLinkByToken(ctx context.Context, token string) (*models.ShareLink, error)

	CreateConversation(ctx context.Context, conv *models.Conversation) error
	GetConversationByID(ctx context.Context, id string) (*models.Conversation, error)
	AddConversationTokens(ctx context.Context, id string, delta int) error
	AddChatMessage(ctx context.Context, message *models.ChatMessage) error

	Close() error
}
