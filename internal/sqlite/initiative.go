package sqlite

import (
	"context"
	"fmt"

	"github.com/ganot/feedline/internal/domain/feed"
)

// InitiativeRepository implements feed.InitiativeRepository for SQLite.
type InitiativeRepository struct {
	db *DB
}

// NewInitiativeRepository creates a new InitiativeRepository.
func NewInitiativeRepository(db *DB) *InitiativeRepository {
	return &InitiativeRepository{db: db}
}

// Upsert replaces initiatives by id. The workstream set of each upserted
// initiative is replaced wholesale, so removals propagate.
func (r *InitiativeRepository) Upsert(ctx context.Context, initiatives []feed.Initiative) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin initiative upsert: %w", err)
	}
	defer tx.Rollback()

	initiativeQuery := `
		INSERT INTO initiatives (id, name)
		VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`
	workstreamQuery := `
		INSERT INTO workstreams (id, initiative_id, name)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			initiative_id = excluded.initiative_id,
			name = excluded.name
	`
	for _, initiative := range initiatives {
		if initiative.ID == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, initiativeQuery, initiative.ID, initiative.Name); err != nil {
			return fmt.Errorf("failed to upsert initiative: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM workstreams WHERE initiative_id = ?`, initiative.ID,
		); err != nil {
			return fmt.Errorf("failed to clear workstreams: %w", err)
		}
		for _, ws := range initiative.Workstreams {
			if ws.ID == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, workstreamQuery, ws.ID, initiative.ID, ws.Name); err != nil {
				return fmt.Errorf("failed to upsert workstream: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit initiative upsert: %w", err)
	}
	return nil
}

// List returns all initiatives with their workstreams, ordered by name.
func (r *InitiativeRepository) List(ctx context.Context) ([]feed.Initiative, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name FROM initiatives ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list initiatives: %w", err)
	}
	defer rows.Close()

	var initiatives []feed.Initiative
	index := map[string]int{}
	for rows.Next() {
		var initiative feed.Initiative
		if err := rows.Scan(&initiative.ID, &initiative.Name); err != nil {
			return nil, fmt.Errorf("failed to scan initiative: %w", err)
		}
		index[initiative.ID] = len(initiatives)
		initiatives = append(initiatives, initiative)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating initiative rows: %w", err)
	}

	wsRows, err := r.db.QueryContext(ctx, `
		SELECT id, initiative_id, name FROM workstreams ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workstreams: %w", err)
	}
	defer wsRows.Close()

	for wsRows.Next() {
		var ws feed.Workstream
		var initiativeID string
		if err := wsRows.Scan(&ws.ID, &initiativeID, &ws.Name); err != nil {
			return nil, fmt.Errorf("failed to scan workstream: %w", err)
		}
		if at, ok := index[initiativeID]; ok {
			initiatives[at].Workstreams = append(initiatives[at].Workstreams, ws)
		}
	}
	if err := wsRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workstream rows: %w", err)
	}
	return initiatives, nil
}
