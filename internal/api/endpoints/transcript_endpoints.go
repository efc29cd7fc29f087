package endpoints

import (
	"errors"
	"net/http"
	"strconv"

	"chat-widget/internal/model"
	"chat-widget/internal/service/transcript"

	"github.com/go-chi/chi/v5"
)

type TranscriptEndpoints interface {
	Transcript(http.ResponseWriter, *http.Request) error
	Transcripts(http.ResponseWriter, *http.Request) error
}

type TranscriptResponse struct {
	TranscriptID string `json:"transcriptId"`
	SessionID    string `json:"sessionId"`
	VisitorID    string `json:"visitorId,omitempty"`
	Transcript   string `json:"transcript"`
	Size         int    `json:"size"`
	CreatedAt    string `json:"createdAt"`
}

type TranscriptsResponse struct {
	Transcripts []TranscriptResponse `json:"transcripts"`
}

type transcriptEndpoints struct {
	service *transcript.Service
}

func NewTranscriptEndpoints(service *transcript.Service) TranscriptEndpoints {
	return &transcriptEndpoints{service: service}
}

func (h *transcriptEndpoints) Transcript(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleGetTranscript,
	})
}

func (h *transcriptEndpoints) Transcripts(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleListTranscripts,
	})
}

func (h *transcriptEndpoints) handleGetTranscript(w http.ResponseWriter, r *http.Request) error {
	sub, err := subject(r)
	if err != nil {
		return err
	}
	item, err := h.service.Get(r.Context(), sub.TenantKey, chi.URLParam(r, "transcriptID"))
	if err != nil {
		return mapTranscriptServiceError(err)
	}
	return WriteJSON(w, http.StatusOK, transcriptResponse(item))
}

func (h *transcriptEndpoints) handleListTranscripts(w http.ResponseWriter, r *http.Request) error {
	sub, err := subject(r)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.service.ListBySession(r.Context(), sub.TenantKey, r.URL.Query().Get("sessionId"), limit)
	if err != nil {
		return mapTranscriptServiceError(err)
	}
	res := TranscriptsResponse{Transcripts: make([]TranscriptResponse, 0, len(items))}
	for _, item := range items {
		res.Transcripts = append(res.Transcripts, transcriptResponse(item))
	}
	return WriteJSON(w, http.StatusOK, res)
}

func transcriptResponse(item model.TranscriptItem) TranscriptResponse {
	return TranscriptResponse{
		TranscriptID: item.TranscriptID,
		SessionID:    item.SessionID,
		VisitorID:    item.VisitorID,
		Transcript:   item.Transcript,
		Size:         item.Size,
		CreatedAt:    item.CreatedAt,
	}
}

func mapTranscriptServiceError(err error) error {
	var svcErr *transcript.Error
	if !errors.As(err, &svcErr) {
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Internal server error", ErrorLog: err}
	}
	status := http.StatusInternalServerError
	switch svcErr.Code {
	case transcript.ErrorCodeValidation:
		status = http.StatusBadRequest
	case transcript.ErrorCodeNotFound:
		status = http.StatusNotFound
	}
	return &HTTPError{
		StatusCode: status,
		Code:       string(svcErr.Code),
		Message:    svcErr.Message,
		ErrorLog:   svcErr.Err,
	}
}
