package router

import "chat-widget/internal/api"

const HostPrefix = "/api/host/v1"

// HostRoutes registers every route of the host service under prefix.
func HostRoutes(prefix string) []api.RouteRegistrar {
	return []api.RouteRegistrar{
		UtilsRoutes(prefix),
		WidgetRoutes(prefix),
		SurfaceRoutes(prefix),
		TranscriptRoutes(prefix),
	}
}
