package summary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pranav-un/kortex/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	docs  map[uuid.UUID]*models.Document
	saved map[uuid.UUID]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:  make(map[uuid.UUID]*models.Document),
		saved: make(map[uuid.UUID]string),
	}
}

func (s *fakeStore) GetDocument(_ context.Context, _, documentID uuid.UUID) (*models.Document, error) {
	doc, ok := s.docs[documentID]
	if !ok {
		return nil, errors.New("document not found")
	}
	return doc, nil
}

func (s *fakeStore) SaveSummary(_ context.Context, documentID uuid.UUID, summary string) error {
	s.saved[documentID] = summary
	return nil
}

type fakeLLM struct {
	resp    string
	err     error
	prompts []string
}

func (l *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	l.prompts = append(l.prompts, prompt)
	if l.err != nil {
		return "", l.err
	}
	return l.resp, nil
}

func (l *fakeLLM) Name() string  { return "fake" }
func (l *fakeLLM) Model() string { return "fake-model" }

func seedDoc(store *fakeStore, text, summary string) *models.Document {
	doc := &models.Document{ID: uuid.New(), Filename: "doc.txt"}
	if text != "" {
		doc.ExtractedText = &text
	}
	if summary != "" {
		doc.Summary = &summary
	}
	store.docs[doc.ID] = doc
	return doc
}

func TestSummarizeReturnsStoredSummary(t *testing.T) {
	store := newFakeStore()
	doc := seedDoc(store, "full text here", "already summarized")
	gen := &fakeLLM{resp: "should not be used"}

	svc := NewService(store, gen)

	result, err := svc.Summarize(context.Background(), uuid.New(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "already summarized", result.Summary)
	assert.False(t, result.Generated)
	assert.Empty(t, gen.prompts)
}

func TestSummarizeGeneratesWhenMissing(t *testing.T) {
	store := newFakeStore()
	doc := seedDoc(store, "the document text", "")
	gen := &fakeLLM{resp: "  a fresh summary \n"}

	svc := NewService(store, gen)

	result, err := svc.Summarize(context.Background(), uuid.New(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "a fresh summary", result.Summary)
	assert.True(t, result.Generated)
	assert.Equal(t, "fake-model", result.Model)
	assert.Equal(t, "a fresh summary", store.saved[doc.ID])

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "the document text")
	assert.Contains(t, gen.prompts[0], "DOCUMENT: doc.txt")
}

func TestRegenerateIgnoresStoredSummary(t *testing.T) {
	store := newFakeStore()
	doc := seedDoc(store, "the document text", "stale summary")
	gen := &fakeLLM{resp: "new summary"}

	svc := NewService(store, gen)

	result, err := svc.Regenerate(context.Background(), uuid.New(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "new summary", result.Summary)
	assert.True(t, result.Generated)
	assert.Equal(t, "new summary", store.saved[doc.ID])
	assert.Len(t, gen.prompts, 1)
}

func TestSummarizeNoTextFails(t *testing.T) {
	store := newFakeStore()
	doc := seedDoc(store, "", "")

	svc := NewService(store, &fakeLLM{resp: "unused"})

	_, err := svc.Summarize(context.Background(), uuid.New(), doc.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text to summarize")
}

func TestSummarizeLLMFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	doc := seedDoc(store, "some text", "")

	svc := NewService(store, &fakeLLM{err: errors.New("model down")})

	_, err := svc.Summarize(context.Background(), uuid.New(), doc.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate summary")
	assert.Empty(t, store.saved)
}

func TestSummarizeTruncatesLongDocuments(t *testing.T) {
	words := make([]string, maxInputWords+50)
	for i := range words {
		words[i] = "word"
	}
	words[len(words)-1] = "sentinel"

	store := newFakeStore()
	doc := seedDoc(store, strings.Join(words, " "), "")
	gen := &fakeLLM{resp: "summary"}

	svc := NewService(store, gen)

	_, err := svc.Summarize(context.Background(), uuid.New(), doc.ID)
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	assert.NotContains(t, gen.prompts[0], "sentinel")
}
