package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"chat-widget/internal/api"
	"chat-widget/internal/api/middleware"
	internaljwt "chat-widget/internal/jwt"
)

type HTTPError = api.HTTPError

type ApiMessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	return api.WriteJSON(w, status, v)
}

func MethodHandler(
	w http.ResponseWriter,
	r *http.Request,
	allowed map[string]func(http.ResponseWriter, *http.Request) error,
) error {
	if handler, ok := allowed[r.Method]; ok {
		return handler(w, r)
	}
	return &HTTPError{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    "Method not allowed.",
		ErrorLog:   fmt.Errorf("method not allowed"),
	}
}

func decodeJSON(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode %s: %w", r.URL.Path, err),
		}
	}
	return nil
}

func subject(r *http.Request) (internaljwt.Subject, error) {
	sub, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		return internaljwt.Subject{}, &HTTPError{StatusCode: http.StatusUnauthorized, Message: "Unauthorized"}
	}
	return sub, nil
}
