package router

import (
	"chat-widget/internal/api"
	"chat-widget/internal/api/endpoints"
	"chat-widget/internal/api/middleware"

	"github.com/go-chi/chi/v5"
)

func SurfaceRoutes(prefix string) api.RouteRegistrar {
	return func(r chi.Router, s *api.APIServer) {
		surfaceEndpoints := endpoints.NewSurfaceEndpoints(s.Hub(), s.Surface(), s.DefaultPlatform())
		r.HandleFunc(prefix+"/surface", s.MakeHTTPHandleFunc(surfaceEndpoints.Surface, middleware.ValidateRendererJWT))
		r.HandleFunc(prefix+"/sessions", s.MakeHTTPHandleFunc(surfaceEndpoints.Sessions, middleware.ValidateOperatorJWT))
		r.HandleFunc(prefix+"/sessions/{sessionID}/intent", s.MakeHTTPHandleFunc(surfaceEndpoints.SessionIntent, middleware.ValidateOperatorJWT))
	}
}
