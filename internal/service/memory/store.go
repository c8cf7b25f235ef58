// Package memory maintains the confidence-weighted per-user fact store.
// All read-modify-write sequences for one user are serialized behind a
// per-user lock; facts are partitioned by user id so there is no
// cross-user locking.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/medivise/medivise/internal/core"
	"github.com/medivise/medivise/pkg/log"
)

const (
	DefaultBaseConfidence = 0.8
	ConfidenceBoost       = 0.1
)

// Boost is the confidence update on repeat observation: monotonically
// non-decreasing, capped at 1.0.
func Boost(old, delta float64) float64 {
	v := old + delta
	if v > 1.0 {
		return 1.0
	}
	return v
}

type Store struct {
	repo core.MemoriesRepository

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

func NewStore(repo core.MemoriesRepository) *Store {
	return &Store{
		repo:      repo,
		userLocks: make(map[string]*sync.Mutex),
	}
}

func (s *Store) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// UpsertFact creates a fact at baseConfidence or boosts an existing active
// fact for the same (user, category, key). The returned handle carries the
// durable identifier; the audit interaction is appended only after the
// handle exists, so an interaction can never reference a fact that was not
// persisted first.
func (s *Store) UpsertFact(ctx context.Context, userID, category, key, value, source string, baseConfidence float64) (core.FactHandle, error) {
	if userID == "" || category == "" || key == "" {
		return core.FactHandle{}, fmt.Errorf("%w: user_id, category and key are required", core.ErrValidation)
	}
	if baseConfidence < 0 || baseConfidence > 1 {
		return core.FactHandle{}, fmt.Errorf("%w: base confidence %f outside [0,1]", core.ErrValidation, baseConfidence)
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UTC()

	existing, err := s.repo.FindActiveFact(ctx, userID, category, key)
	if err != nil {
		return core.FactHandle{}, fmt.Errorf("lookup fact: %w", err)
	}

	var handle core.FactHandle
	kind := core.InteractionUpdated

	if existing != nil {
		confidence := Boost(existing.Confidence, ConfidenceBoost)
		if err := s.repo.UpdateFact(ctx, existing.ID, value, source, confidence, now); err != nil {
			return core.FactHandle{}, fmt.Errorf("update fact: %w", err)
		}
		handle = core.FactHandle{
			ID:         existing.ID,
			UserID:     userID,
			Category:   category,
			Key:        key,
			Confidence: confidence,
		}
	} else {
		id, err := s.repo.InsertFact(ctx, core.MemoryFact{
			UserID:      userID,
			Category:    category,
			Key:         key,
			Value:       value,
			Confidence:  baseConfidence,
			Source:      source,
			CreatedAt:   now,
			LastUpdated: now,
			IsActive:    true,
		})
		if err != nil {
			return core.FactHandle{}, fmt.Errorf("insert fact: %w", err)
		}
		handle = core.FactHandle{
			ID:         id,
			UserID:     userID,
			Category:   category,
			Key:        key,
			Confidence: baseConfidence,
			Created:    true,
		}
		kind = core.InteractionCreated
	}

	if err := s.logInteraction(ctx, handle, kind, "source: "+source); err != nil {
		return core.FactHandle{}, err
	}
	return handle, nil
}

// logInteraction takes a handle rather than a bare id: only code holding a
// persisted fact can reach it.
func (s *Store) logInteraction(ctx context.Context, handle core.FactHandle, kind core.InteractionKind, note string) error {
	if handle.ID == 0 {
		return fmt.Errorf("%w: interaction without a durable fact id", core.ErrConsistency)
	}
	err := s.repo.AddInteraction(ctx, core.MemoryInteraction{
		UserID:    handle.UserID,
		MemoryID:  handle.ID,
		Kind:      kind,
		Context:   note,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("log interaction: %w", err)
	}
	return nil
}

// RelevantFacts returns the user's active facts matching the query's
// inferred categories, ordered by confidence, then access count, then
// recency. Every returned fact gets its access count bumped and an
// `accessed` interaction appended; the per-user lock makes this
// read-triggers-write sequence safe under concurrent reads.
func (s *Store) RelevantFacts(ctx context.Context, userID, query string, limit int) ([]core.MemoryFact, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", core.ErrValidation)
	}
	if limit <= 0 {
		limit = 10
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	categories := relevantCategories(query)

	facts, err := s.repo.ListActiveFacts(ctx, userID, categories, limit)
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}

	for i := range facts {
		if err := s.repo.BumpAccessCount(ctx, facts[i].ID); err != nil {
			return nil, fmt.Errorf("bump access count: %w", err)
		}
		facts[i].AccessCount++

		handle := core.FactHandle{
			ID:     facts[i].ID,
			UserID: userID,
		}
		if err := s.logInteraction(ctx, handle, core.InteractionAccessed, "query: "+query); err != nil {
			return nil, err
		}
	}

	return facts, nil
}

// LearnFromChat extracts candidate facts from a chat turn and routes each
// through UpsertFact. One candidate's failure never blocks the others.
func (s *Store) LearnFromChat(ctx context.Context, userID, userMessage, assistantReply, note string) int {
	logger := log.FromCtx(ctx)

	learned := 0
	for _, cand := range extractLearnings(userMessage) {
		_, err := s.UpsertFact(ctx, userID, cand.Category, cand.Key, cand.Value, "chat_interaction", DefaultBaseConfidence)
		if err != nil {
			logger.Warn().Err(err).Str("key", cand.Key).Msg("failed to learn fact from chat")
			continue
		}
		learned++
	}

	if learned > 0 {
		logger.Info().Int("count", learned).Str("user", userID).Msg("learned facts from chat")
	}
	return learned
}

// SummaryStats aggregates a user's memory for the CLI stats view.
type SummaryStats struct {
	Total      int            `json:"total"`
	Categories map[string]int `json:"categories"`
	Confidence map[string]int `json:"confidence"`
}

func (s *Store) Summary(ctx context.Context, userID string) (SummaryStats, error) {
	facts, err := s.repo.ListFacts(ctx, userID)
	if err != nil {
		return SummaryStats{}, fmt.Errorf("list facts: %w", err)
	}

	stats := SummaryStats{
		Categories: make(map[string]int),
		Confidence: map[string]int{"high": 0, "medium": 0, "low": 0},
	}
	for _, f := range facts {
		if !f.IsActive {
			continue
		}
		stats.Total++
		stats.Categories[f.Category]++
		switch {
		case f.Confidence >= 0.8:
			stats.Confidence["high"]++
		case f.Confidence >= 0.5:
			stats.Confidence["medium"]++
		default:
			stats.Confidence["low"]++
		}
	}
	return stats, nil
}
