package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pranav-un/kortex/internal/document"
	"github.com/pranav-un/kortex/internal/rag"
)

type DocumentHandler struct {
	docs     *document.Service
	pipeline *rag.Pipeline
}

func NewDocumentHandler(docs *document.Service, pipeline *rag.Pipeline) *DocumentHandler {
	return &DocumentHandler{docs: docs, pipeline: pipeline}
}

// userID resolves the caller from the X-User-ID header. Authentication is
// handled upstream; the service trusts the gateway-provided identity.
func userID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return uuid.Nil, errors.New("missing X-User-ID header")
	}
	return uuid.Parse(raw)
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

type uploadRequest struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// Upload stores a document's extracted text and runs ingestion synchronously.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Filename == "" || strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "filename and text are required")
		return
	}

	doc, err := h.docs.CreateDocument(r.Context(), uid, req.Filename, req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store document")
		return
	}

	result, err := h.pipeline.ChunkAndEmbed(r.Context(), uid, doc.ID, req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to ingest document")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"document":  doc,
		"ingestion": result,
	})
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	docs, err := h.docs.ListDocuments(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs, "count": len(docs)})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	docID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	doc, err := h.docs.GetDocument(r.Context(), uid, docID)
	if errors.Is(err, document.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Chunks(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	docID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	if _, err := h.docs.GetDocument(r.Context(), uid, docID); err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}

	chunks, err := h.docs.OrderedChunks(r.Context(), docID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load chunks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chunks": chunks, "count": len(chunks)})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	docID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	if err := h.pipeline.DeleteDocumentData(r.Context(), uid, docID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete document data")
		return
	}

	if err := h.docs.DeleteDocument(r.Context(), uid, docID); err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
