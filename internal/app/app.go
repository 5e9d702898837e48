package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/deckhand-ai/deckhand/internal/config"
	db "github.com/deckhand-ai/deckhand/internal/core/database"
	"github.com/deckhand-ai/deckhand/internal/core/ingest"
	"github.com/deckhand-ai/deckhand/internal/core/llm"
	objectclient "github.com/deckhand-ai/deckhand/internal/core/object-client"
	"github.com/deckhand-ai/deckhand/internal/services"
)

// App owns every long-lived component: DB pool, object storage client,
// AI clients, the background ingestor and the HTTP server.
type App struct {
	DBClient db.DbClient
	Ingestor ingest.Ingestor
	Server   *Server

	embedder *llm.GeminiEmbedder
	gen      *llm.GeminiLLM
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	initCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(initCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	log.Info().Msg("database initialized and ready")

	objClient, err := objectclient.NewS3Client(initCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	log.Info().Str("bucket", cfg.BucketName).Msg("object client initialized and ready")

	embedder, err := llm.NewGeminiEmbedder(initCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	generator, err := llm.NewGeminiLLM(initCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("init llm: %w", err)
	}

	ingestor := ingest.NewDocumentIngestor(dbClient, objClient, embedder, ingest.Config{
		MaxChunkSize: cfg.MaxChunkSize,
		BatchSize:    cfg.EmbedBatch,
		EmbedDim:     cfg.EmbedDim,
		Retry:        ingest.RetryPolicy{MaxAttempts: cfg.EmbedRetries, BaseDelay: time.Second},
	})
	ingestor.Start(ctx, cfg.IngestWorkers)

	userSvc := services.NewUserService(dbClient)
	projectSvc := services.NewProjectService(dbClient)
	documentSvc := services.NewDocumentService(dbClient, objClient, ingestor, cfg.BucketName)
	linkSvc := services.NewShareLinkService(dbClient, cfg.LinkBudget)
	chatSvc := services.NewChatService(dbClient, embedder, generator, cfg.CandidateLimit)

	server := NewServer(cfg, userSvc, projectSvc, documentSvc, linkSvc, chatSvc)

	return &App{
		DBClient: dbClient,
		Ingestor: ingestor,
		Server:   server,
		embedder: embedder,
		gen:      generator,
	}, nil
}

func (a *App) Close() {
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
	if a.gen != nil {
		_ = a.gen.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
