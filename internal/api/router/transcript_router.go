package router

import (
	"chat-widget/internal/api"
	"chat-widget/internal/api/endpoints"
	"chat-widget/internal/api/middleware"

	"github.com/go-chi/chi/v5"
)

func TranscriptRoutes(prefix string) api.RouteRegistrar {
	return func(r chi.Router, s *api.APIServer) {
		transcriptEndpoints := endpoints.NewTranscriptEndpoints(s.Transcripts())
		r.HandleFunc(prefix+"/transcripts", s.MakeHTTPHandleFunc(transcriptEndpoints.Transcripts, middleware.ValidateOperatorJWT))
		r.HandleFunc(prefix+"/transcripts/{transcriptID}", s.MakeHTTPHandleFunc(transcriptEndpoints.Transcript, middleware.ValidateOperatorJWT))
	}
}
