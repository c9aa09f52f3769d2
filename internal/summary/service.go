package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pranav-un/kortex/internal/llm"
	"github.com/pranav-un/kortex/internal/models"
)

var ErrNoText = errors.New("document has no text to summarize")

// maxInputWords caps how much of a document is sent to the model; long
// documents are summarized from their leading text.
const maxInputWords = 4000

const summaryInstruction = `Summarize the following document in 2-3 concise paragraphs. Cover the main topics and key facts; do not add information that is not in the text.`

// Store is the document surface the summarizer needs. *document.Service
// implements it.
type Store interface {
	GetDocument(ctx context.Context, ownerID, documentID uuid.UUID) (*models.Document, error)
	SaveSummary(ctx context.Context, documentID uuid.UUID, summary string) error
}

// Result carries a document summary and whether this call generated it.
type Result struct {
	DocumentID uuid.UUID `json:"document_id"`
	Summary    string    `json:"summary"`
	Model      string    `json:"model"`
	Generated  bool      `json:"generated"`
}

// Service generates and stores per-document summaries through the configured
// LLM provider.
type Service struct {
	store Store
	llm   llm.Provider
}

func NewService(store Store, provider llm.Provider) *Service {
	return &Service{store: store, llm: provider}
}

// Summarize returns the stored summary, generating and saving one first if
// the document has none yet.
func (s *Service) Summarize(ctx context.Context, ownerID, documentID uuid.UUID) (*Result, error) {
	doc, err := s.store.GetDocument(ctx, ownerID, documentID)
	if err != nil {
		return nil, err
	}

	if doc.Summary != nil && *doc.Summary != "" {
		return &Result{
			DocumentID: doc.ID,
			Summary:    *doc.Summary,
			Model:      s.llm.Model(),
		}, nil
	}

	return s.generate(ctx, doc)
}

// Regenerate replaces any stored summary with a freshly generated one.
func (s *Service) Regenerate(ctx context.Context, ownerID, documentID uuid.UUID) (*Result, error) {
	doc, err := s.store.GetDocument(ctx, ownerID, documentID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, doc)
}

func (s *Service) generate(ctx context.Context, doc *models.Document) (*Result, error) {
	if doc.ExtractedText == nil || strings.TrimSpace(*doc.ExtractedText) == "" {
		return nil, fmt.Errorf("document %s: %w", doc.ID, ErrNoText)
	}

	text, err := s.llm.Complete(ctx, renderPrompt(doc.Filename, *doc.ExtractedText))
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}
	text = strings.TrimSpace(text)

	if err := s.store.SaveSummary(ctx, doc.ID, text); err != nil {
		return nil, err
	}

	slog.Info("document summarized", "document_id", doc.ID, "summary_chars", len(text))

	return &Result{
		DocumentID: doc.ID,
		Summary:    text,
		Model:      s.llm.Model(),
		Generated:  true,
	}, nil
}

func renderPrompt(filename, text string) string {
	var sb strings.Builder
	sb.WriteString(summaryInstruction)
	sb.WriteString("\n\nDOCUMENT: ")
	sb.WriteString(filename)
	sb.WriteString("\n---\n")
	sb.WriteString(truncateWords(text, maxInputWords))
	sb.WriteString("\n---\n\nSUMMARY: ")
	return sb.String()
}

func truncateWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:limit], " ")
}
