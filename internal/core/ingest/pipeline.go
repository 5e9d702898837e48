package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/deckhand-ai/deckhand/internal/core/extract"
	"github.com/deckhand-ai/deckhand/internal/core/textutil"
	"github.com/deckhand-ai/deckhand/internal/models"
)

// ProcessOne runs the full pipeline for a single document: fetch, extract,
// chunk, embed, persist. Every failure terminates at the document level —
// the document is marked failed and nothing else is affected.
func (i *DocumentIngestor) ProcessOne(ctx context.Context, docID string) error {
	if !i.begin(docID) {
		log.Debug().Str("document_id", docID).Msg("document already being ingested, skipping")
		return nil
	}
	defer i.end(docID)

	proctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	doc, err := i.dbc.GetDocumentByID(proctx, docID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		// Deleted before processing started; nothing to do.
		return nil
	}

	fail := func(cause error) error {
		if uerr := i.dbc.UpdateDocumentStatus(proctx, docID, models.StatusFailed, 0, 0); uerr != nil {
			log.Error().Err(uerr).Str("document_id", docID).Msg("could not mark document failed")
		}
		return cause
	}

	bucket, key := parseS3URL(doc.StorageURL)
	data, err := i.obj.GetFile(proctx, bucket, key)
	if err != nil {
		return fail(fmt.Errorf("fetch object: %w", err))
	}

	text, err := extract.Extract(data, doc.ContentType)
	if err != nil {
		return fail(err)
	}

	clean := textutil.Sanitize(text)
	pieces := textutil.Chunk(clean, i.cfg.MaxChunkSize)

	rows, totalTokens, err := i.embedChunks(proctx, doc, pieces)
	if err != nil {
		return fail(err)
	}

	// The document may have been deleted while we were embedding. Re-check
	// before the final write and discard the staged rows instead of leaving
	// orphaned chunks behind.
	cur, err := i.dbc.GetDocumentByID(proctx, docID)
	if err != nil {
		return fmt.Errorf("existence check: %w", err)
	}
	if cur == nil {
		log.Info().Str("document_id", docID).Msg("document deleted during ingestion, discarding chunks")
		return nil
	}

	if err := i.dbc.ReplaceDocumentChunks(proctx, docID, rows); err != nil {
		return fail(fmt.Errorf("replace chunks: %w", err))
	}

	if err := i.dbc.UpdateDocumentStatus(proctx, docID, models.StatusCompleted, totalTokens, textutil.EstimatePages(clean)); err != nil {
		return fmt.Errorf("complete document: %w", err)
	}
	log.Info().
		Str("document_id", docID).
		Int("chunks", len(rows)).
		Int("tokens", totalTokens).
		Msg("document ingested")
	return nil
}

// parseS3URL extracts the bucket and key from a virtual-hosted-style S3 URL.
// Example: https://my-bucket.s3.us-east-2.amazonaws.com/path/to/file.pdf
func parseS3URL(u string) (bucket, key string) {
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
