package models

import (
	"time"
)

// Document processing states.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// User represents a founder account.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Project groups the documents a founder shares with investors.
type Project struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents one uploaded pitch file.
type Document struct {
	ID               string    `db:"id" json:"id"`
	ProjectID        string    `db:"project_id" json:"project_id"`
	FileName         string    `db:"file_name" json:"file_name"`
	OriginalFileName string    `db:"original_file_name" json:"original_file_name"`
	FileSize         int64     `db:"file_size" json:"file_size"`
	ContentType      string    `db:"content_type" json:"content_type"`
	StorageURL       string    `db:"storage_url" json:"storage_url"`
	Source           string    `db:"source" json:"source"` // "upload" for now; integrations later
	Status           string    `db:"status" json:"status"` // processing | completed | failed
	Tokens           int       `db:"tokens" json:"tokens"`
	PageCount        int       `db:"page_count" json:"page_count"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentChunk is one sanitized, embedded span of a document's text.
// ChunkIndex values for a document form a contiguous range from 0 and
// rows are immutable once written.
type DocumentChunk struct {
	ID         string            `db:"id" json:"id"`
	DocumentID string            `db:"document_id" json:"document_id"`
	Text       string            `db:"text" json:"text"`
	Embedding  []float32         `db:"embedding" json:"embedding"` // pgvector column
	Metadata   map[string]string `db:"metadata" json:"metadata"`
	TokenCount int               `db:"token_count" json:"token_count"`
	ChunkIndex int               `db:"chunk_index" json:"chunk_index"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
}

// ShareLink is an investor-facing access token for a project's chat,
// with a total token budget across all of its conversations.
type ShareLink struct {
	ID          string    `db:"id" json:"id"`
	ProjectID   string    `db:"project_id" json:"project_id"`
	Token       string    `db:"token" json:"token"`
	LimitTokens int       `db:"limit_tokens" json:"limit_tokens"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Conversation accumulates token spend for one investor chat session.
type Conversation struct {
	ID          string    `db:"id" json:"id"`
	ShareLinkID string    `db:"share_link_id" json:"share_link_id"`
	TotalTokens int       `db:"total_tokens" json:"total_tokens"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ChatMessage represents an individual chat message (user or assistant).
type ChatMessage struct {
	ID             string    `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	Role           string    `db:"role" json:"role"`       // "user" or "assistant"
	Content        string    `db:"content" json:"content"` // message text
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
