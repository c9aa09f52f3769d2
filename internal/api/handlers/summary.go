package handlers

import (
	"errors"
	"net/http"

	"github.com/pranav-un/kortex/internal/document"
	"github.com/pranav-un/kortex/internal/summary"
)

type SummaryHandler struct {
	svc *summary.Service
}

func NewSummaryHandler(svc *summary.Service) *SummaryHandler {
	return &SummaryHandler{svc: svc}
}

// Get returns the document's summary, generating one on first request.
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.svc.Summarize(r.Context(), uid, docID)
	if err != nil {
		writeSummaryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Regenerate discards any stored summary and produces a new one.
func (h *SummaryHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.svc.Regenerate(r.Context(), uid, docID)
	if err != nil {
		writeSummaryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeSummaryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, document.ErrNotFound):
		writeError(w, http.StatusNotFound, "document not found")
	case errors.Is(err, summary.ErrNoText):
		writeError(w, http.StatusUnprocessableEntity, "document has no text to summarize")
	default:
		writeError(w, http.StatusInternalServerError, "failed to summarize document")
	}
}
