package handlers

import (
	"errors"
	"net/http"

	"github.com/pranav-un/kortex/internal/admin"
	"github.com/pranav-un/kortex/internal/document"
)

type AdminHandler struct {
	svc *admin.Service
}

func NewAdminHandler(svc *admin.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) EmbeddingStatus(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	status, err := h.svc.EmbeddingStatus(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to aggregate embedding status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *AdminHandler) RetryEmbeddings(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.svc.RetryEmbeddings(r.Context(), uid, docID)
	if errors.Is(err, document.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retry embeddings")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) ResetCollection(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	if err := h.svc.ResetCollection(r.Context(), uid); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset collection")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *AdminHandler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(h.svc.Uptime().Seconds()),
	})
}
