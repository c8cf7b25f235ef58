package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/medivise/medivise/internal/core"
)

type MemoriesRepo struct {
	db *sql.DB
}

func NewMemoriesRepo(db *sql.DB) *MemoriesRepo {
	return &MemoriesRepo{db: db}
}

func (r *MemoriesRepo) FindActiveFact(ctx context.Context, userID, category, key string) (*core.MemoryFact, error) {
	query := `SELECT id, user_id, category, key, value, confidence, source, created_at, last_updated, is_active, access_count
	          FROM user_memories
	          WHERE user_id = ? AND category = ? AND key = ? AND is_active = 1`

	var fact core.MemoryFact
	err := r.db.QueryRowContext(ctx, query, userID, category, key).Scan(
		&fact.ID, &fact.UserID, &fact.Category, &fact.Key, &fact.Value,
		&fact.Confidence, &fact.Source, &fact.CreatedAt, &fact.LastUpdated,
		&fact.IsActive, &fact.AccessCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find fact: %w", err)
	}
	return &fact, nil
}

func (r *MemoriesRepo) InsertFact(ctx context.Context, fact core.MemoryFact) (int64, error) {
	query := `INSERT INTO user_memories (user_id, category, key, value, confidence, source, created_at, last_updated)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		fact.UserID, fact.Category, fact.Key, fact.Value,
		fact.Confidence, fact.Source, fact.CreatedAt, fact.LastUpdated,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert fact: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read fact id: %w", err)
	}
	return id, nil
}

func (r *MemoriesRepo) UpdateFact(ctx context.Context, id int64, value, source string, confidence float64, at time.Time) error {
	query := `UPDATE user_memories SET value = ?, source = ?, confidence = ?, last_updated = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, value, source, confidence, at, id)
	if err != nil {
		return fmt.Errorf("failed to update fact: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: fact %d does not exist", core.ErrConsistency, id)
	}
	return nil
}

func (r *MemoriesRepo) ListActiveFacts(ctx context.Context, userID string, categories []string, limit int) ([]core.MemoryFact, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, user_id, category, key, value, confidence, source, created_at, last_updated, is_active, access_count
	                FROM user_memories WHERE user_id = ? AND is_active = 1`)
	args := []any{userID}

	if len(categories) > 0 {
		sb.WriteString(" AND category IN (?" + strings.Repeat(", ?", len(categories)-1) + ")")
		for _, c := range categories {
			args = append(args, c)
		}
	}
	sb.WriteString(" ORDER BY confidence DESC, access_count DESC, last_updated DESC LIMIT ?")
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	return scanFacts(rows)
}

func (r *MemoriesRepo) BumpAccessCount(ctx context.Context, id int64) error {
	query := `UPDATE user_memories SET access_count = access_count + 1 WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to bump access count: %w", err)
	}
	return nil
}

func (r *MemoriesRepo) AddInteraction(ctx context.Context, in core.MemoryInteraction) error {
	query := `INSERT INTO memory_interactions (user_id, memory_id, kind, context, created_at)
	          VALUES (?, ?, ?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, in.UserID, in.MemoryID, in.Kind, in.Context, in.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}

func (r *MemoriesRepo) ListFacts(ctx context.Context, userID string) ([]core.MemoryFact, error) {
	query := `SELECT id, user_id, category, key, value, confidence, source, created_at, last_updated, is_active, access_count
	          FROM user_memories WHERE user_id = ?
	          ORDER BY category, key`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	return scanFacts(rows)
}

func scanFacts(rows *sql.Rows) ([]core.MemoryFact, error) {
	var facts []core.MemoryFact
	for rows.Next() {
		var fact core.MemoryFact
		if err := rows.Scan(
			&fact.ID, &fact.UserID, &fact.Category, &fact.Key, &fact.Value,
			&fact.Confidence, &fact.Source, &fact.CreatedAt, &fact.LastUpdated,
			&fact.IsActive, &fact.AccessCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		facts = append(facts, fact)
	}
	return facts, rows.Err()
}
