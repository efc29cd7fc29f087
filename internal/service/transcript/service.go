package transcript

import (
	"context"
	"errors"
	"strings"
	"time"

	"chat-widget/internal/database"
	"chat-widget/internal/model"

	"github.com/google/uuid"
)

// MaxSize keeps a transcript item below DynamoDB's 400KB item limit.
const MaxSize = 350 * 1024

const defaultListLimit = 50

type ErrorCode string

const (
	ErrorCodeValidation ErrorCode = "validation_error"
	ErrorCodeNotFound   ErrorCode = "not_found"
	ErrorCodeInternal   ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

func New(db *database.Database) *Service {
	return NewWithRepository(NewDynamoRepository(db), time.Now)
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:  repo,
		now:   now,
		newID: uuid.NewString,
	}
}

func (s *Service) Save(ctx context.Context, tenantKey, sessionID, visitorID, transcript string) (model.TranscriptItem, error) {
	tenantKey = strings.TrimSpace(tenantKey)
	if tenantKey == "" {
		return model.TranscriptItem{}, newError(ErrorCodeValidation, "tenant key is required", nil)
	}
	if sessionID == "" {
		return model.TranscriptItem{}, newError(ErrorCodeValidation, "session id is required", nil)
	}
	if len(transcript) > MaxSize {
		return model.TranscriptItem{}, newError(ErrorCodeValidation, "transcript is too large", nil)
	}

	id := s.newID()
	item := model.TranscriptItem{
		PK:           model.TenantScopedPK(tenantKey, id),
		TranscriptID: id,
		TenantKey:    tenantKey,
		SessionID:    sessionID,
		VisitorID:    visitorID,
		Transcript:   transcript,
		Size:         len(transcript),
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.repo.PutTranscript(ctx, item); err != nil {
		return model.TranscriptItem{}, newError(ErrorCodeInternal, "failed to store transcript", err)
	}
	return item, nil
}

// SaveTranscript stores a transcript and returns its id.
func (s *Service) SaveTranscript(ctx context.Context, tenantKey, sessionID, visitorID, transcript string) (string, error) {
	item, err := s.Save(ctx, tenantKey, sessionID, visitorID, transcript)
	if err != nil {
		return "", err
	}
	return item.TranscriptID, nil
}

func (s *Service) Get(ctx context.Context, tenantKey, transcriptID string) (model.TranscriptItem, error) {
	if tenantKey == "" || transcriptID == "" {
		return model.TranscriptItem{}, newError(ErrorCodeValidation, "tenant key and transcript id are required", nil)
	}
	item, err := s.repo.GetTranscript(ctx, tenantKey, transcriptID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.TranscriptItem{}, newError(ErrorCodeNotFound, "transcript not found", err)
		}
		return model.TranscriptItem{}, newError(ErrorCodeInternal, "failed to load transcript", err)
	}
	return item, nil
}

// ListBySession returns the tenant's transcripts for sessionID, newest first.
func (s *Service) ListBySession(ctx context.Context, tenantKey, sessionID string, limit int) ([]model.TranscriptItem, error) {
	if tenantKey == "" || sessionID == "" {
		return nil, newError(ErrorCodeValidation, "tenant key and session id are required", nil)
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	items, err := s.repo.ListTranscriptsBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list transcripts", err)
	}
	res := make([]model.TranscriptItem, 0, len(items))
	for _, item := range items {
		if item.TenantKey == tenantKey {
			res = append(res, item)
		}
	}
	return res, nil
}
