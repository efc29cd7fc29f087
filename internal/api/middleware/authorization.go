package middleware

import (
	"context"
	"net/http"
	"strings"

	internaljwt "chat-widget/internal/jwt"
)

type subjectKey struct{}

// SubjectFromContext returns the token subject stored by the JWT middleware.
func SubjectFromContext(ctx context.Context) (internaljwt.Subject, bool) {
	sub, ok := ctx.Value(subjectKey{}).(internaljwt.Subject)
	return sub, ok
}

func WithSubject(ctx context.Context, sub internaljwt.Subject) context.Context {
	return context.WithValue(ctx, subjectKey{}, sub)
}

// ExtractToken reads a bearer token, falling back to the token query
// parameter for clients that cannot set headers on a websocket upgrade.
func ExtractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return r.URL.Query().Get("token")
}

func ValidateJWTMiddleware(role internaljwt.Role) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tokenString := ExtractToken(r)
			if tokenString == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			sub, err := internaljwt.ParseToken(tokenString, role)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next(w, r.WithContext(WithSubject(r.Context(), sub)))
		}
	}
}

var ValidateRendererJWT = ValidateJWTMiddleware(internaljwt.RoleRenderer)
var ValidateOperatorJWT = ValidateJWTMiddleware(internaljwt.RoleOperator)
