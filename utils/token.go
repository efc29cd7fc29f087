package utils

import "github.com/google/uuid"

// NewRequestID returns an identifier for correlating a request's log lines.
func NewRequestID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return ""
	}
	return id.String()
}
