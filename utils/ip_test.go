package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRealClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{name: "remote addr", remoteAddr: "10.0.0.1:5555", want: "10.0.0.1"},
		{name: "remote addr without port", remoteAddr: "10.0.0.1", want: "10.0.0.1"},
		{name: "forwarded", remoteAddr: "10.0.0.1:5555", headers: map[string]string{"X-Forwarded-For": "203.0.113.9"}, want: "203.0.113.9"},
		{name: "forwarded chain", remoteAddr: "10.0.0.1:5555", headers: map[string]string{"X-Forwarded-For": " 203.0.113.9, 10.0.0.7"}, want: "203.0.113.9"},
		{name: "real ip", remoteAddr: "10.0.0.1:5555", headers: map[string]string{"X-Real-IP": "198.51.100.4"}, want: "198.51.100.4"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tc.want, RealClientIP(req))
		})
	}
}

func TestNewRequestID(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
}
