package sqlite

import (
	"context"
	"fmt"

	"github.com/ganot/feedline/internal/domain/feed"
)

// SessionRepository implements feed.SessionRepository for SQLite.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Upsert replaces session nodes by id. Nodes without an id are skipped.
func (r *SessionRepository) Upsert(ctx context.Context, nodes []feed.SessionNode) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin session upsert: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO session_nodes (id, run_id, title, status, workstream_id, agent_name)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			run_id = excluded.run_id,
			title = excluded.title,
			status = excluded.status,
			workstream_id = excluded.workstream_id,
			agent_name = excluded.agent_name
	`
	for _, node := range nodes {
		if node.ID == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, query,
			node.ID, node.RunID, node.Title, node.Status, node.WorkstreamID, node.AgentName,
		); err != nil {
			return fmt.Errorf("failed to upsert session node: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session upsert: %w", err)
	}
	return nil
}

// List returns all session nodes ordered by id for stable iteration.
func (r *SessionRepository) List(ctx context.Context) ([]feed.SessionNode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, run_id, title, status, workstream_id, agent_name
		FROM session_nodes
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list session nodes: %w", err)
	}
	defer rows.Close()

	var nodes []feed.SessionNode
	for rows.Next() {
		var node feed.SessionNode
		if err := rows.Scan(
			&node.ID, &node.RunID, &node.Title, &node.Status, &node.WorkstreamID, &node.AgentName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session node: %w", err)
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return nodes, nil
}
