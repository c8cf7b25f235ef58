package core

import "time"

// MemoryFact is a confidence-weighted fact about a user, unique by
// (user_id, category, key) while active.
type MemoryFact struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Category    string    `json:"category"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Confidence  float64   `json:"confidence"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
	IsActive    bool      `json:"is_active"`
	AccessCount int64     `json:"access_count"`
}

type InteractionKind string

const (
	InteractionCreated  InteractionKind = "created"
	InteractionUpdated  InteractionKind = "updated"
	InteractionAccessed InteractionKind = "accessed"
)

// MemoryInteraction is an append-only audit record. It always references a
// fact that already has a durable identifier.
type MemoryInteraction struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"user_id"`
	MemoryID  int64           `json:"memory_id"`
	Kind      InteractionKind `json:"kind"`
	Context   string          `json:"context"`
	CreatedAt time.Time       `json:"created_at"`
}

// FactHandle proves a fact has been persisted. Interaction logging takes a
// handle, which makes logging against a non-existent fact unrepresentable.
type FactHandle struct {
	ID         int64
	UserID     string
	Category   string
	Key        string
	Confidence float64
	Created    bool
}
