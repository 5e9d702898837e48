package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/deckhand-ai/deckhand/internal/core/textutil"
	"github.com/deckhand-ai/deckhand/internal/models"
)

// embedChunks turns sanitized chunk texts into fully staged chunk rows:
// sequential indices from 0, recomputed token counts, and one embedding per
// chunk. Batches are embedded with bounded concurrency and rows are only
// returned complete — nothing is written here, so a failure anywhere
// discards the whole set (all-or-nothing stays with the caller's single
// transactional write).
func (i *DocumentIngestor) embedChunks(ctx context.Context, doc *models.Document, pieces []string) ([]models.DocumentChunk, int, error) {
	if len(pieces) == 0 {
		return nil, 0, nil
	}

	batch := i.cfg.BatchSize
	if batch <= 0 {
		batch = 16
	}

	rows := make([]models.DocumentChunk, len(pieces))
	now := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2) // small fixed cap on concurrent embedding requests

	for start := 0; start < len(pieces); start += batch {
		start := start
		end := min(start+batch, len(pieces))
		g.Go(func() error {
			texts := pieces[start:end]
			var vecs [][]float32
			err := i.cfg.Retry.Do(gctx, func() error {
				var embErr error
				vecs, embErr = i.embedder.EmbedTexts(gctx, texts)
				return embErr
			})
			if err != nil {
				return fmt.Errorf("embed batch at %d: %w", start, err)
			}
			if len(vecs) != len(texts) {
				return &PermanentError{Err: fmt.Errorf("embed size mismatch: got %d want %d", len(vecs), len(texts))}
			}
			for k, vec := range vecs {
				if i.cfg.EmbedDim > 0 && len(vec) != i.cfg.EmbedDim {
					return &PermanentError{Err: fmt.Errorf("embedding dimension %d, want %d", len(vec), i.cfg.EmbedDim)}
				}
				idx := start + k
				rows[idx] = models.DocumentChunk{
					ID:         uuid.NewString(),
					DocumentID: doc.ID,
					Text:       texts[k],
					Embedding:  vec,
					TokenCount: textutil.EstimateTokens(texts[k]),
					ChunkIndex: idx,
					Metadata: map[string]string{
						"file_name":    doc.FileName,
						"content_type": doc.ContentType,
					},
					CreatedAt: now,
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	total := 0
	for idx := range rows {
		total += rows[idx].TokenCount
	}
	return rows, total, nil
}
