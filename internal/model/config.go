package model

import (
	"strings"
)

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

func ParsePlatform(s string) (Platform, bool) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformIOS:
		return PlatformIOS, true
	case PlatformAndroid:
		return PlatformAndroid, true
	}
	return "", false
}

// Visitor is the optional identity of the person using the chat. No field is required.
type Visitor struct {
	ID           VisitorID      `json:"id,omitzero" yaml:"id,omitempty"`
	FirstName    string         `json:"firstName,omitempty" yaml:"firstName,omitempty"`
	LastName     string         `json:"lastName,omitempty" yaml:"lastName,omitempty"`
	Email        string         `json:"email,omitempty" yaml:"email,omitempty"`
	Phone        string         `json:"phone,omitempty" yaml:"phone,omitempty"`
	PhotoURL     string         `json:"photoUrl,omitempty" yaml:"photoUrl,omitempty"`
	UserHash     string         `json:"userHash,omitempty" yaml:"userHash,omitempty"`
	CreatedAt    string         `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	Company      string         `json:"company,omitempty" yaml:"company,omitempty"`
	CustomFields map[string]any `json:"customFields,omitempty" yaml:"customFields,omitempty"`
}

// Configuration is supplied by the host on every render and treated as immutable per mount.
type Configuration struct {
	APIKey     string   `json:"apiKey" yaml:"apiKey"`
	IOSKey     string   `json:"iosKey,omitempty" yaml:"iosKey,omitempty"`
	AndroidKey string   `json:"androidKey,omitempty" yaml:"androidKey,omitempty"`
	WebviewURL string   `json:"webviewUrl,omitempty" yaml:"webviewUrl,omitempty"`
	Color      string   `json:"color,omitempty" yaml:"color,omitempty"`
	Visitor    *Visitor `json:"visitor,omitempty" yaml:"visitor,omitempty"`
	Tags       []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// ShowLoadingIndicator is a pointer so an absent value keeps the default (true).
	ShowLoadingIndicator *bool `json:"showLoadingIndicator,omitempty" yaml:"showLoadingIndicator,omitempty"`
}

// PlatformKey returns the credential for p.
func (c Configuration) PlatformKey(p Platform) string {
	switch p {
	case PlatformIOS:
		return strings.TrimSpace(c.IOSKey)
	case PlatformAndroid:
		return strings.TrimSpace(c.AndroidKey)
	}
	return ""
}

// HasCredentials reports whether the primary credential and the credential for
// the active platform are both present.
func (c Configuration) HasCredentials(p Platform) bool {
	return strings.TrimSpace(c.APIKey) != "" && c.PlatformKey(p) != ""
}

func (c Configuration) LoadingIndicator() bool {
	if c.ShowLoadingIndicator == nil {
		return true
	}
	return *c.ShowLoadingIndicator
}
