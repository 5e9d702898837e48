package services

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	db "github.com/deckhand-ai/deckhand/internal/core/database"
	"github.com/deckhand-ai/deckhand/internal/core/ingest"
	objectclient "github.com/deckhand-ai/deckhand/internal/core/object-client"
	"github.com/deckhand-ai/deckhand/internal/models"
)

type DocumentService struct {
	dbc      db.DbClient
	storage  objectclient.ObjectClient
	ingestor ingest.Ingestor
	bucket   string
}

func NewDocumentService(dbc db.DbClient, storage objectclient.ObjectClient, ingestor ingest.Ingestor, bucket string) *DocumentService {
	return &DocumentService{dbc: dbc, storage: storage, ingestor: ingestor, bucket: bucket}
}

// Upload stores the raw bytes, creates the document in `processing` state
// and enqueues background ingestion. The caller gets the processing
// acknowledgment immediately; chunking and embedding happen off the
// request path.
func (s *DocumentService) Upload(ctx context.Context, projectID, originalFileName, contentType string, data []byte) (*models.Document, error) {
	project, err := s.dbc.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project not found: %s", projectID)
	}

	docID := uuid.NewString()
	fileName := safeFileName(originalFileName)
	key := s.objectKey(projectID, docID, fileName)

	url, err := s.storage.UploadFile(ctx, s.bucket, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload object: %w", err)
	}

	doc := &models.Document{
		ID:               docID,
		ProjectID:        projectID,
		FileName:         fileName,
		OriginalFileName: originalFileName,
		FileSize:         int64(len(data)),
		ContentType:      contentType,
		StorageURL:       url,
		Source:           "upload",
		Status:           models.StatusProcessing,
	}
	if err := s.dbc.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	s.ingestor.Enqueue(doc.ID)
	log.Info().Str("document_id", doc.ID).Str("project_id", projectID).Str("file", fileName).Msg("document queued for ingestion")
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.dbc.GetDocumentByID(ctx, id)
}

func (s *DocumentService) ListByProject(ctx context.Context, projectID string) ([]models.Document, error) {
	return s.dbc.ListDocumentsByProject(ctx, projectID)
}

// Delete removes the document row (chunks cascade) and its stored object.
// An in-flight ingestion of this document notices the missing row before
// its final write and discards its results.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.dbc.GetDocumentByID(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("document not found: %s", id)
	}
	if err := s.dbc.DeleteDocument(ctx, id); err != nil {
		return err
	}
	bucket, key := objectLocation(doc.StorageURL)
	if err := s.storage.DeleteFile(ctx, bucket, key); err != nil {
		// Row is gone; a leaked object is only storage cost.
		log.Warn().Err(err).Str("document_id", id).Msg("could not delete stored object")
	}
	return nil
}

// objectKey creates a consistent S3 key layout.
func (s *DocumentService) objectKey(projectID, docID, fileName string) string {
	return path.Join("projects", projectID, "documents", docID, fileName)
}

func safeFileName(name string) string {
	name = path.Base(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == "/" {
		name = "upload"
	}
	return name
}

// objectLocation parses bucket and key out of a virtual-hosted S3 URL.
func objectLocation(u string) (bucket, key string) {
	hostPath := strings.SplitN(strings.TrimPrefix(u, "https://"), "/", 2)
	host := hostPath[0]
	if len(hostPath) == 2 {
		key = hostPath[1]
	}
	if i := strings.IndexByte(host, '.'); i >= 0 {
		bucket = host[:i]
	} else {
		bucket = host
	}
	return bucket, key
}
