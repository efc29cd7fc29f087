package model

import "fmt"

const (
	TranscriptsTable = "WidgetTranscripts"
)

type TranscriptItem struct {
	PK           string `dynamodbav:"pk"`
	TranscriptID string `dynamodbav:"transcriptId"`
	TenantKey    string `dynamodbav:"tenantKey"`
	SessionID    string `dynamodbav:"sessionId"`
	VisitorID    string `dynamodbav:"visitorId,omitempty"`
	Transcript   string `dynamodbav:"transcript"`
	Size         int    `dynamodbav:"size"`
	CreatedAt    string `dynamodbav:"createdAt"`
}

func TenantScopedPK(tenantKey, entityID string) string {
	return fmt.Sprintf("%s#%s", tenantKey, entityID)
}
