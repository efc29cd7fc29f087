package jwt

type Role int

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// Subject identifies who a token was issued to. Renderer tokens carry the
// platform and visitor encoding of the surface they will drive.
type Subject struct {
	TenantKey      string `json:"tenantKey"`
	Platform       string `json:"platform,omitempty"`
	LegacyEncoding bool   `json:"legacyVisitor,omitempty"`
}
