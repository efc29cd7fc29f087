package transcript

import (
	"context"
	"errors"

	"chat-widget/internal/database"
	"chat-widget/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("transcript repository: not found")

const sessionIndex = "sessionId-createdAt-index"

type Repository interface {
	PutTranscript(ctx context.Context, item model.TranscriptItem) error
	GetTranscript(ctx context.Context, tenantKey, transcriptID string) (model.TranscriptItem, error)
	ListTranscriptsBySession(ctx context.Context, sessionID string, limit int) ([]model.TranscriptItem, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) PutTranscript(ctx context.Context, item model.TranscriptItem) error {
	return r.db.Client.PutItem(ctx, model.TranscriptsTable, item)
}

func (r *DynamoRepository) GetTranscript(ctx context.Context, tenantKey, transcriptID string) (model.TranscriptItem, error) {
	var item model.TranscriptItem
	err := r.db.Client.GetItem(
		ctx,
		model.TranscriptsTable,
		map[string]types.AttributeValue{
			"pk": database.AttrString(model.TenantScopedPK(tenantKey, transcriptID)),
		},
		&item,
	)
	if err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return model.TranscriptItem{}, ErrNotFound
		}
		return model.TranscriptItem{}, err
	}
	return item, nil
}

func (r *DynamoRepository) ListTranscriptsBySession(ctx context.Context, sessionID string, limit int) ([]model.TranscriptItem, error) {
	items, err := r.db.Client.QueryItems(
		ctx,
		model.TranscriptsTable,
		aws.String(sessionIndex),
		"sessionId = :sessionId",
		map[string]types.AttributeValue{
			":sessionId": database.AttrString(sessionID),
		},
		aws.Bool(false),
		int32(limit),
	)
	if err != nil {
		return nil, err
	}

	var res []model.TranscriptItem
	if err := attributevalue.UnmarshalListOfMaps(items, &res); err != nil {
		return nil, err
	}
	return res, nil
}
