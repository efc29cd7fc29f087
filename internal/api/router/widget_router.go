package router

import (
	"chat-widget/internal/api"
	"chat-widget/internal/api/endpoints"
	"chat-widget/internal/api/middleware"

	"github.com/go-chi/chi/v5"
)

func WidgetRoutes(prefix string) api.RouteRegistrar {
	return func(r chi.Router, s *api.APIServer) {
		widgetEndpoints := endpoints.NewWidgetEndpoints(s.DefaultPlatform(), s.DefaultBaseURL())
		r.HandleFunc(prefix+"/canonical-url", s.MakeHTTPHandleFunc(widgetEndpoints.CanonicalURL))
		r.HandleFunc(prefix+"/renderer-tokens", s.MakeHTTPHandleFunc(widgetEndpoints.RendererToken, middleware.ValidateOperatorJWT))
	}
}
