package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

func appendRoleChar(token string, role Role) string {
	switch role {
	case RoleRenderer:
		return token + "r"
	case RoleOperator:
		return token + "o"
	}
	return token
}

func expectedRoleChar(role Role) string {
	switch role {
	case RoleRenderer:
		return "r"
	case RoleOperator:
		return "o"
	}
	return ""
}

func CreateToken(sub Subject, role Role, validUntil int64) (TokenResponse, error) {
	secret, ok := secretFor(role)
	if !ok {
		return TokenResponse{}, fmt.Errorf("invalid role specified")
	}
	if sub.TenantKey == "" {
		return TokenResponse{}, fmt.Errorf("tenant key is required")
	}

	if validUntil == 0 {
		validUntil = time.Now().Add(DefaultTokenTTL).Unix()
	}

	claims := jwt.MapClaims{
		"tenantKey":     sub.TenantKey,
		"platform":      sub.Platform,
		"legacyVisitor": sub.LegacyEncoding,
		"exp":           validUntil,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken: appendRoleChar(tokenString, role),
		ExpiresAt:   validUntil,
	}, nil
}

// ParseToken validates an access token issued for role and returns its subject.
func ParseToken(tokenString string, role Role) (Subject, error) {
	if len(tokenString) == 0 {
		return Subject{}, fmt.Errorf("token string is empty")
	}

	if tokenString[len(tokenString)-1:] != expectedRoleChar(role) {
		return Subject{}, fmt.Errorf("invalid role character in token")
	}
	tokenString = tokenString[:len(tokenString)-1]

	secret, ok := secretFor(role)
	if !ok {
		return Subject{}, fmt.Errorf("invalid role specified")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return Subject{}, fmt.Errorf("unauthorized: %v", err)
	}
	if !token.Valid {
		return Subject{}, fmt.Errorf("token is not valid - unauthorized")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Subject{}, fmt.Errorf("claims of unauthorized type")
	}

	sub := Subject{}
	sub.TenantKey, _ = claims["tenantKey"].(string)
	sub.Platform, _ = claims["platform"].(string)
	sub.LegacyEncoding, _ = claims["legacyVisitor"].(bool)
	if sub.TenantKey == "" {
		return Subject{}, fmt.Errorf("token has no tenant key")
	}
	return sub, nil
}
