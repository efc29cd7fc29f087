package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"chat-widget/internal/api/middleware"
	"chat-widget/internal/queue"
)

type apiFunc func(http.ResponseWriter, *http.Request) error

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// MakeHTTPHandleFunc runs f on the request queue and renders its error.
// authMiddleware wraps f in order.
func (s *APIServer) MakeHTTPHandleFunc(f apiFunc, authMiddleware ...middleware.Middleware) http.HandlerFunc {
	baseHandler := func(w http.ResponseWriter, r *http.Request) {
		errc := make(chan error, 1)

		job := queue.Job{
			Fn: func() error {
				return f(w, r)
			},
			Errc: errc,
		}

		if err := s.requestQueueManager.EnqueueJob(job); err != nil {
			WriteJSON(w, http.StatusServiceUnavailable, ApiError{Error: "Server is shutting down"})
			return
		}

		err := <-errc
		if err != nil {
			s.writeError(w, r, err)
		}
	}

	handler := baseHandler
	for _, m := range authMiddleware {
		handler = m(handler)
	}

	return middleware.Chain(handler, middleware.Logging(s.logger))
}

func (s *APIServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.ErrorLog != nil {
			s.logger.Warn().Err(httpErr.ErrorLog).Str("path", r.URL.Path).Int("status", httpErr.StatusCode).Msg(httpErr.Message)
		}
		WriteJSON(w, httpErr.StatusCode, ApiError{Error: httpErr.Message, Code: httpErr.Code})
		return
	}
	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled endpoint error")
	WriteJSON(w, http.StatusInternalServerError, ApiError{Error: "Internal server error"})
}
