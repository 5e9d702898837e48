package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckhand-ai/deckhand/internal/core/textutil"
	"github.com/deckhand-ai/deckhand/internal/models"
)

// fakeDB implements db.DbClient in memory for pipeline tests.
type fakeDB struct {
	mu         sync.Mutex
	docs       map[string]*models.Document
	chunks     map[string][]models.DocumentChunk
	getCalls   int
	goneAfter  int // after this many GetDocumentByID calls the doc "disappears"
	replaceErr error
}

func newFakeDB(doc *models.Document) *fakeDB {
	return &fakeDB{
		docs:   map[string]*models.Document{doc.ID: doc},
		chunks: map[string][]models.DocumentChunk{},
	}
}

func (f *fakeDB) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.goneAfter > 0 && f.getCalls > f.goneAfter {
		return nil, nil
	}
	return f.docs[id], nil
}

func (f *fakeDB) UpdateDocumentStatus(_ context.Context, id string, status string, tokens int, pageCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return errors.New("document not found")
	}
	d.Status, d.Tokens, d.PageCount = status, tokens, pageCount
	return nil
}

func (f *fakeDB) ReplaceDocumentChunks(_ context.Context, documentID string, chunks []models.DocumentChunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.chunks[documentID] = chunks
	return nil
}

func (f *fakeDB) GetChunksByDocument(_ context.Context, documentID string) ([]models.DocumentChunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chunks[documentID], nil
}

// Unused interface methods.
func (f *fakeDB) CreateUser(context.Context, *models.User) error { return nil }
func (f *fakeDB) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, nil
}
func (f *fakeDB) CreateProject(context.Context, *models.Project) error { return nil }
func (f *fakeDB) GetProjectByID(context.Context, string) (*models.Project, error) {
	return nil, nil
}
func (f *fakeDB) ListProjectsByUser(context.Context, string) ([]models.Project, error) {
	return nil, nil
}
func (f *fakeDB) DeleteProject(context.Context, string) error          { return nil }
func (f *fakeDB) CreateDocument(context.Context, *models.Document) error { return nil }
func (f *fakeDB) ListDocumentsByProject(context.Context, string) ([]models.Document, error) {
	return nil, nil
}
func (f *fakeDB) DeleteDocument(context.Context, string) error { return nil }
func (f *fakeDB) SearchProjectChunks(context.Context, string, []float32, int) ([]models.DocumentChunk, error) {
	return nil, nil
}
func (f *fakeDB) CreateShareLink(context.Context, *models.ShareLink) error { return nil }
func (f *fakeDB) GetShareLinkByToken(context.Context, string) (*models.ShareLink, error) {
	return nil, nil
}
func (f *fakeDB) CreateConversation(context.Context, *models.Conversation) error { return nil }
func (f *fakeDB) GetConversationByID(context.Context, string) (*models.Conversation, error) {
	return nil, nil
}
func (f *fakeDB) AddConversationTokens(context.Context, string, int) error { return nil }
func (f *fakeDB) AddChatMessage(context.Context, *models.ChatMessage) error {
	return nil
}
func (f *fakeDB) Close() error { return nil }

type fakeObject struct {
	data []byte
	err  error
}

func (f *fakeObject) GetFile(context.Context, string, string) ([]byte, error) {
	return f.data, f.err
}
func (f *fakeObject) UploadFile(context.Context, string, string, []byte, string) (string, error) {
	return "", nil
}
func (f *fakeObject) DeleteFile(context.Context, string, string) error { return nil }

type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	dim   int
	err   error // returned for the first failN calls
	failN int
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil && f.calls <= f.failN {
		return nil, f.err
	}
	dim := f.dim
	if dim == 0 {
		dim = 4
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, dim)
		vec[0] = float32(len(texts[i]))
		out[i] = vec
	}
	return out, nil
}

func testDoc(contentType string) *models.Document {
	return &models.Document{
		ID:          "doc-1",
		ProjectID:   "proj-1",
		FileName:    "pitch.txt",
		ContentType: contentType,
		StorageURL:  "https://deckhand-docs.s3.us-east-2.amazonaws.com/p/doc-1/pitch.txt",
		Status:      models.StatusProcessing,
	}
}

func testIngestor(dbc *fakeDB, obj *fakeObject, emb *fakeEmbedder) *DocumentIngestor {
	return NewDocumentIngestor(dbc, obj, emb, Config{
		MaxChunkSize: 40,
		BatchSize:    2,
		EmbedDim:     4,
		Retry:        RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond},
	})
}

func TestProcessOne_Success(t *testing.T) {
	text := "The market is huge. Our traction is strong! Revenue doubled last quarter. The team has shipped before."
	dbc := newFakeDB(testDoc("text/plain"))
	emb := &fakeEmbedder{}
	ing := testIngestor(dbc, &fakeObject{data: []byte(text)}, emb)

	require.NoError(t, ing.ProcessOne(context.Background(), "doc-1"))

	doc := dbc.docs["doc-1"]
	assert.Equal(t, models.StatusCompleted, doc.Status)
	assert.Equal(t, 1, doc.PageCount)

	chunks := dbc.chunks["doc-1"]
	require.NotEmpty(t, chunks)

	wantTokens := 0
	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkIndex, "indices must be contiguous from 0")
		assert.Equal(t, "doc-1", ch.DocumentID)
		assert.Equal(t, textutil.EstimateTokens(ch.Text), ch.TokenCount)
		assert.Len(t, ch.Embedding, 4)
		assert.NotEmpty(t, ch.ID)
		wantTokens += ch.TokenCount
	}
	assert.Equal(t, wantTokens, doc.Tokens)
}

func TestProcessOne_UnsupportedFormatFailsDocument(t *testing.T) {
	dbc := newFakeDB(testDoc("image/png"))
	ing := testIngestor(dbc, &fakeObject{data: []byte{1, 2, 3}}, &fakeEmbedder{})

	err := ing.ProcessOne(context.Background(), "doc-1")
	require.Error(t, err)
	assert.Equal(t, models.StatusFailed, dbc.docs["doc-1"].Status)
	assert.Empty(t, dbc.chunks["doc-1"])
}

func TestProcessOne_TransientEmbedErrorRetriedThenSucceeds(t *testing.T) {
	dbc := newFakeDB(testDoc("text/plain"))
	emb := &fakeEmbedder{err: errors.New("rate limited"), failN: 2}
	ing := testIngestor(dbc, &fakeObject{data: []byte("Just one short sentence.")}, emb)

	require.NoError(t, ing.ProcessOne(context.Background(), "doc-1"))
	assert.Equal(t, models.StatusCompleted, dbc.docs["doc-1"].Status)
	assert.Equal(t, 3, emb.calls)
}

func TestProcessOne_EmbedErrorExhaustsRetriesAndFails(t *testing.T) {
	dbc := newFakeDB(testDoc("text/plain"))
	emb := &fakeEmbedder{err: errors.New("rate limited"), failN: 100}
	ing := testIngestor(dbc, &fakeObject{data: []byte("Just one short sentence.")}, emb)

	err := ing.ProcessOne(context.Background(), "doc-1")
	require.Error(t, err)
	assert.Equal(t, models.StatusFailed, dbc.docs["doc-1"].Status)
	assert.Equal(t, 3, emb.calls)
	assert.Empty(t, dbc.chunks["doc-1"])
}

func TestProcessOne_DimensionMismatchIsPermanent(t *testing.T) {
	dbc := newFakeDB(testDoc("text/plain"))
	emb := &fakeEmbedder{dim: 7}
	ing := testIngestor(dbc, &fakeObject{data: []byte("Just one short sentence.")}, emb)

	err := ing.ProcessOne(context.Background(), "doc-1")
	require.Error(t, err)
	assert.Equal(t, models.StatusFailed, dbc.docs["doc-1"].Status)
	assert.Equal(t, 1, emb.calls, "permanent failures must not be retried")
}

func TestProcessOne_DocumentDeletedMidFlightDiscardsChunks(t *testing.T) {
	dbc := newFakeDB(testDoc("text/plain"))
	dbc.goneAfter = 1 // present at load, gone at the existence re-check
	ing := testIngestor(dbc, &fakeObject{data: []byte("Some sentence here.")}, &fakeEmbedder{})

	require.NoError(t, ing.ProcessOne(context.Background(), "doc-1"))
	assert.Empty(t, dbc.chunks["doc-1"], "no orphaned chunks may be written")
	assert.Equal(t, models.StatusProcessing, dbc.docs["doc-1"].Status)
}

func TestProcessOne_StorageWriteErrorFailsDocument(t *testing.T) {
	dbc := newFakeDB(testDoc("text/plain"))
	dbc.replaceErr = errors.New("disk full")
	ing := testIngestor(dbc, &fakeObject{data: []byte("Some sentence here.")}, &fakeEmbedder{})

	err := ing.ProcessOne(context.Background(), "doc-1")
	require.Error(t, err)
	assert.Equal(t, models.StatusFailed, dbc.docs["doc-1"].Status)
}

func TestProcessOne_MissingDocumentIsNoop(t *testing.T) {
	dbc := newFakeDB(testDoc("text/plain"))
	ing := testIngestor(dbc, &fakeObject{data: []byte("x")}, &fakeEmbedder{})
	require.NoError(t, ing.ProcessOne(context.Background(), "doc-unknown"))
}

func TestProcessOne_EmptyDocumentCompletesWithZeroChunks(t *testing.T) {
	dbc := newFakeDB(testDoc("text/plain"))
	ing := testIngestor(dbc, &fakeObject{data: []byte("   \n\t ")}, &fakeEmbedder{})

	require.NoError(t, ing.ProcessOne(context.Background(), "doc-1"))
	doc := dbc.docs["doc-1"]
	assert.Equal(t, models.StatusCompleted, doc.Status)
	assert.Equal(t, 0, doc.Tokens)
	assert.Equal(t, 0, doc.PageCount)
	assert.Empty(t, dbc.chunks["doc-1"])
}

func TestParseS3URL(t *testing.T) {
	bucket, key := parseS3URL("https://my-bucket.s3.us-east-2.amazonaws.com/path/to/file.pdf")
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "path/to/file.pdf", key)
}
