package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/deckhand-ai/deckhand/internal/core"
	db "github.com/deckhand-ai/deckhand/internal/core/database"
	"github.com/deckhand-ai/deckhand/internal/core/retrieval"
	"github.com/deckhand-ai/deckhand/internal/core/textutil"
	"github.com/deckhand-ai/deckhand/internal/models"
)

var (
	ErrLinkNotFound    = errors.New("share link not found")
	ErrBudgetExhausted = errors.New("token budget exhausted")
)

const systemPrompt = `You are an assistant answering an investor's questions about a startup's pitch documents.
Answer only from the provided document excerpts. If the excerpts do not contain the answer, say so plainly.
Do not invent figures, names or commitments that are not in the excerpts.`

// Answer is the result of one chat turn, including its token accounting.
type Answer struct {
	ConversationID string `json:"conversation_id"`
	Answer         string `json:"answer"`
	ContextTokens  int    `json:"context_tokens"`
	TokensSpent    int    `json:"tokens_spent"`
	TokensLeft     int    `json:"tokens_left"`
}

type ChatService struct {
	dbc            db.DbClient
	embedder       core.EmbeddingProvider
	llm            core.LLMProvider
	candidateLimit int
}

func NewChatService(dbc db.DbClient, embedder core.EmbeddingProvider, llm core.LLMProvider, candidateLimit int) *ChatService {
	return &ChatService{dbc: dbc, embedder: embedder, llm: llm, candidateLimit: candidateLimit}
}

// Ask runs one chat turn on a share link: resolve the link and its
// remaining budget, retrieve relevant chunks under that budget, generate
// an answer and charge the spend to the conversation. conversationID may
// be empty to start a new conversation.
func (s *ChatService) Ask(ctx context.Context, linkToken, conversationID, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, errors.New("question is required")
	}

	link, err := s.dbc.GetShareLinkByToken(ctx, linkToken)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}

	conv, err := s.conversationFor(ctx, link, conversationID)
	if err != nil {
		return nil, err
	}

	remaining := link.LimitTokens - conv.TotalTokens
	if remaining <= 0 {
		return nil, ErrBudgetExhausted
	}

	selected, contextTokens := s.retrieveContext(ctx, link.ProjectID, question, remaining)

	answer, err := s.llm.Generate(ctx, systemPrompt, buildUserPrompt(selected, question))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	spent := contextTokens + textutil.EstimateTokens(question) + textutil.EstimateTokens(answer)
	s.record(ctx, conv.ID, question, answer, spent)

	left := remaining - spent
	if left < 0 {
		left = 0
	}
	return &Answer{
		ConversationID: conv.ID,
		Answer:         answer,
		ContextTokens:  contextTokens,
		TokensSpent:    spent,
		TokensLeft:     left,
	}, nil
}

func (s *ChatService) conversationFor(ctx context.Context, link *models.ShareLink, conversationID string) (*models.Conversation, error) {
	if conversationID == "" {
		conv := &models.Conversation{ID: uuid.NewString(), ShareLinkID: link.ID}
		if err := s.dbc.CreateConversation(ctx, conv); err != nil {
			return nil, err
		}
		return conv, nil
	}
	conv, err := s.dbc.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil || conv.ShareLinkID != link.ID {
		return nil, fmt.Errorf("conversation not found: %s", conversationID)
	}
	return conv, nil
}

// retrieveContext embeds the question and picks the best chunks that fit
// the remaining budget. Retrieval failures degrade to an empty context
// rather than failing the turn.
func (s *ChatService) retrieveContext(ctx context.Context, projectID, question string, budget int) ([]models.DocumentChunk, int) {
	vec, err := s.embedQuestion(ctx, question)
	if err != nil {
		log.Warn().Err(err).Str("project_id", projectID).Msg("question embedding failed, answering without context")
		return nil, 0
	}
	candidates, err := s.dbc.SearchProjectChunks(ctx, projectID, vec, s.candidateLimit)
	if err != nil {
		log.Warn().Err(err).Str("project_id", projectID).Msg("chunk search failed, answering without context")
		return nil, 0
	}
	selected := retrieval.Retrieve(vec, candidates, budget)
	total := 0
	for _, ch := range selected {
		total += ch.TokenCount
	}
	return selected, total
}

func (s *ChatService) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	vecs, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vecs))
	}
	return vecs[0], nil
}

func buildUserPrompt(chunks []models.DocumentChunk, question string) string {
	var b strings.Builder
	if len(chunks) == 0 {
		b.WriteString("No document excerpts are available.\n\n")
	} else {
		b.WriteString("Document excerpts:\n\n")
		for i, ch := range chunks {
			if i > 0 {
				b.WriteString("\n---\n")
			}
			b.WriteString(ch.Text)
		}
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

// record persists both turn messages and charges the spend. These writes
// happen after the answer exists; failures are logged, not surfaced, so
// the investor still gets their answer.
func (s *ChatService) record(ctx context.Context, conversationID, question, answer string, spent int) {
	userMsg := &models.ChatMessage{ID: uuid.NewString(), ConversationID: conversationID, Role: "user", Content: question}
	if err := s.dbc.AddChatMessage(ctx, userMsg); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).Msg("could not persist user message")
	}
	botMsg := &models.ChatMessage{ID: uuid.NewString(), ConversationID: conversationID, Role: "assistant", Content: answer}
	if err := s.dbc.AddChatMessage(ctx, botMsg); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).Msg("could not persist assistant message")
	}
	if err := s.dbc.AddConversationTokens(ctx, conversationID, spent); err != nil {
		log.Error().Err(err).Str("conversation_id", conversationID).Msg("could not charge conversation tokens")
	}
}
