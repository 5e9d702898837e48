package ingest

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/deckhand-ai/deckhand/internal/core"
	db "github.com/deckhand-ai/deckhand/internal/core/database"
	objectclient "github.com/deckhand-ai/deckhand/internal/core/object-client"
)

// Config tunes the ingestion pipeline.
//
// MaxChunkSize: max runes per chunk before sentence-boundary slack.
// BatchSize:    chunks embedded per batch request.
// EmbedDim:     expected embedding dimension; mismatches fail permanently.
// Retry:        policy for transient embedding failures.
type Config struct {
	MaxChunkSize int
	BatchSize    int
	EmbedDim     int
	Retry        RetryPolicy
}

type Ingestor interface {
	Start(ctx context.Context, numWorkers int)
	Enqueue(docID string)
	ProcessOne(ctx context.Context, docID string) error
}

// DocumentIngestor runs the background ingestion pipeline:
// fetch bytes → extract → sanitize+chunk → embed → persist.
//
// jobs is an in-memory queue of document IDs (easy to swap for a broker
// later). inflight serializes processing per document ID while leaving
// distinct documents fully concurrent.
type DocumentIngestor struct {
	dbc      db.DbClient
	obj      objectclient.ObjectClient
	embedder core.EmbeddingProvider
	cfg      Config
	jobs     chan string

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewDocumentIngestor constructs the ingestor with a bounded job queue (64).
func NewDocumentIngestor(dbc db.DbClient, obj objectclient.ObjectClient, emb core.EmbeddingProvider, cfg Config) *DocumentIngestor {
	return &DocumentIngestor{
		dbc: dbc, obj: obj, embedder: emb, cfg: cfg,
		jobs:     make(chan string, 64),
		inflight: make(map[string]struct{}),
	}
}

// Start launches numWorkers goroutines reading from the jobs channel.
func (i *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					log.Debug().Int("worker", w).Msg("ingest worker shutting down")
					return
				case docID := <-i.jobs:
					if err := i.ProcessOne(ctx, docID); err != nil {
						log.Error().Err(err).Str("document_id", docID).Int("worker", w).Msg("document ingestion failed")
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules a document ID for ingestion. Blocks when the queue
// is full.
func (i *DocumentIngestor) Enqueue(docID string) {
	i.jobs <- docID
}

func (i *DocumentIngestor) begin(docID string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, busy := i.inflight[docID]; busy {
		return false
	}
	i.inflight[docID] = struct{}{}
	return true
}

func (i *DocumentIngestor) end(docID string) {
	i.mu.Lock()
	delete(i.inflight, docID)
	i.mu.Unlock()
}
