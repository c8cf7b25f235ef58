package core

import (
	"context"
	"time"
)

type DocumentsRepository interface {
	SaveDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (Document, error)
	ListDocuments(ctx context.Context) ([]Document, error)
}

type MessagesRepository interface {
	AddMessage(ctx context.Context, conversationID string, msg Message) error
	GetMessages(ctx context.Context, conversationID string, limit int) ([]Message, error)
}

// MemoriesRepository persists facts and their audit trail. UpsertFact is
// transactional: the returned handle always carries a durable id.
type MemoriesRepository interface {
	FindActiveFact(ctx context.Context, userID, category, key string) (*MemoryFact, error)
	InsertFact(ctx context.Context, fact MemoryFact) (int64, error)
	UpdateFact(ctx context.Context, id int64, value, source string, confidence float64, at time.Time) error
	ListActiveFacts(ctx context.Context, userID string, categories []string, limit int) ([]MemoryFact, error)
	BumpAccessCount(ctx context.Context, id int64) error
	AddInteraction(ctx context.Context, in MemoryInteraction) error
	ListFacts(ctx context.Context, userID string) ([]MemoryFact, error)
}
