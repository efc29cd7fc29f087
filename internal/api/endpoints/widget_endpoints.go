package endpoints

import (
	"net/http"

	"chat-widget/internal/chaturl"
	internaljwt "chat-widget/internal/jwt"
	"chat-widget/internal/model"
	"chat-widget/internal/widgeterr"
)

type WidgetEndpoints interface {
	CanonicalURL(http.ResponseWriter, *http.Request) error
	RendererToken(http.ResponseWriter, *http.Request) error
}

type CanonicalURLRequest struct {
	Platform      string              `json:"platform"`
	LegacyVisitor bool                `json:"legacyVisitor"`
	Config        model.Configuration `json:"config"`
}

type CanonicalURLResponse struct {
	URL string `json:"url"`
}

type RendererTokenRequest struct {
	Platform      string `json:"platform"`
	LegacyVisitor bool   `json:"legacyVisitor"`
}

type widgetEndpoints struct {
	defaultPlatform model.Platform
	defaultBaseURL  string
}

func NewWidgetEndpoints(defaultPlatform model.Platform, defaultBaseURL string) WidgetEndpoints {
	return &widgetEndpoints{defaultPlatform: defaultPlatform, defaultBaseURL: defaultBaseURL}
}

func (h *widgetEndpoints) CanonicalURL(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleCanonicalURL,
	})
}

func (h *widgetEndpoints) RendererToken(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleRendererToken,
	})
}

func (h *widgetEndpoints) handleCanonicalURL(w http.ResponseWriter, r *http.Request) error {
	var req CanonicalURLRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	platform, err := h.platform(req.Platform)
	if err != nil {
		return err
	}

	if !req.Config.HasCredentials(platform) {
		return &HTTPError{
			StatusCode: http.StatusUnprocessableEntity,
			Code:       string(widgeterr.KindMissingCredentials),
			Message:    "apiKey and " + string(platform) + " key are required",
		}
	}

	builder := chaturl.Builder{Platform: platform, Encoding: encoding(req.LegacyVisitor)}
	url, err := builder.Build(chaturl.BaseURL(req.Config, h.defaultBaseURL), req.Config)
	if err != nil {
		return &HTTPError{
			StatusCode: http.StatusUnprocessableEntity,
			Code:       string(widgeterr.KindInvalidURL),
			Message:    err.Error(),
			ErrorLog:   err,
		}
	}

	return WriteJSON(w, http.StatusOK, CanonicalURLResponse{URL: url})
}

func (h *widgetEndpoints) handleRendererToken(w http.ResponseWriter, r *http.Request) error {
	sub, err := subject(r)
	if err != nil {
		return err
	}

	var req RendererTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	platform, err := h.platform(req.Platform)
	if err != nil {
		return err
	}

	token, err := internaljwt.CreateToken(internaljwt.Subject{
		TenantKey:      sub.TenantKey,
		Platform:       string(platform),
		LegacyEncoding: req.LegacyVisitor,
	}, internaljwt.RoleRenderer, 0)
	if err != nil {
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Could not issue token", ErrorLog: err}
	}
	return WriteJSON(w, http.StatusCreated, token)
}

func (h *widgetEndpoints) platform(raw string) (model.Platform, error) {
	if raw == "" {
		return h.defaultPlatform, nil
	}
	p, ok := model.ParsePlatform(raw)
	if !ok {
		return "", &HTTPError{StatusCode: http.StatusBadRequest, Message: "platform must be ios or android"}
	}
	return p, nil
}

func encoding(legacy bool) chaturl.Encoding {
	if legacy {
		return chaturl.EncodingFlattened
	}
	return chaturl.EncodingJSON
}
