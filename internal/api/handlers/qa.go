package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pranav-un/kortex/internal/rag"
)

type QAHandler struct {
	pipeline *rag.Pipeline
}

func NewQAHandler(pipeline *rag.Pipeline) *QAHandler {
	return &QAHandler{pipeline: pipeline}
}

type questionRequest struct {
	Question string `json:"question"`
}

func (h *QAHandler) Ask(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.pipeline.Answer(r.Context(), uid, req.Question)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate answer")
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (h *QAHandler) AskInDocument(w http.ResponseWriter, r *http.Request) {
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

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.pipeline.AnswerInDocument(r.Context(), uid, docID, req.Question)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate answer")
		return
	}
	writeJSON(w, http.StatusOK, answer)
}
