package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/ganot/feedline/internal/domain/feed"
	"github.com/ganot/feedline/internal/extract"
)

// ActivityRepository implements feed.ActivityRepository for SQLite.
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Insert stores raw items, assigning a ULID when an event arrives without an
// id so ids stay lexically time-ordered. Duplicate ids are ignored: events
// are immutable once ingested.
func (r *ActivityRepository) Insert(ctx context.Context, items []feed.RawActivityItem) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin insert: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT OR IGNORE INTO activity_items (
			id, type, ts, title, summary, description,
			agent_id, agent_name, run_id, initiative_id,
			decision_required, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	inserted := 0
	for _, item := range items {
		if item.ID == "" {
			item.ID = newID()
		}
		meta, err := encodeMetadata(item.Metadata)
		if err != nil {
			// An unserializable bag is treated as no metadata.
			meta = sql.NullString{}
		}
		res, err := tx.ExecContext(ctx, query,
			item.ID,
			string(item.Type),
			item.Timestamp,
			item.Title,
			item.Summary,
			item.Description,
			item.AgentID,
			item.AgentName,
			item.RunID,
			item.InitiativeID,
			boolToInt(item.DecisionRequired),
			meta,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert activity item: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit insert: %w", err)
	}
	return inserted, nil
}

// List returns one page newest-first using keyset paging on (ts, id).
func (r *ActivityRepository) List(ctx context.Context, after feed.Cursor, limit int) (feed.Page, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT
			id, type, ts, title, summary, description,
			agent_id, agent_name, run_id, initiative_id,
			decision_required, metadata
		FROM activity_items
	`
	args := []any{}
	if !after.IsZero() {
		query += ` WHERE (ts, id) < (?, ?)`
		args = append(args, after.Timestamp, after.ID)
	}
	query += ` ORDER BY ts DESC, id DESC LIMIT ?`
	args = append(args, limit+1)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return feed.Page{}, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var items []feed.RawActivityItem
	for rows.Next() {
		var item feed.RawActivityItem
		var decisionRequired int
		var meta sql.NullString
		if err := rows.Scan(
			&item.ID,
			&item.Type,
			&item.Timestamp,
			&item.Title,
			&item.Summary,
			&item.Description,
			&item.AgentID,
			&item.AgentName,
			&item.RunID,
			&item.InitiativeID,
			&decisionRequired,
			&meta,
		); err != nil {
			return feed.Page{}, fmt.Errorf("failed to scan activity item: %w", err)
		}
		item.DecisionRequired = decisionRequired != 0
		item.Metadata = decodeMetadata(meta)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return feed.Page{}, fmt.Errorf("error iterating activity rows: %w", err)
	}

	page := feed.Page{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.HasMore = true
	}
	if n := len(page.Items); n > 0 {
		last := page.Items[n-1]
		page.Next = feed.Cursor{Timestamp: last.Timestamp, ID: last.ID}
	}
	return page, nil
}

// newID returns a lexically time-ordered ULID, falling back to a random
// UUID if ULID generation fails.
func newID() string {
	var id ulid.ULID
	var err error
	func() {
		defer func() {
			if recover() != nil {
				err = fmt.Errorf("ulid generation panicked")
			}
		}()
		id = ulid.Make()
	}()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func encodeMetadata(meta extract.Bag) (sql.NullString, error) {
	if len(meta) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// decodeMetadata tolerates malformed stored JSON: a bag that cannot be
// decoded is treated as absent, never an error.
func decodeMetadata(meta sql.NullString) extract.Bag {
	if !meta.Valid || meta.String == "" {
		return nil
	}
	var bag map[string]any
	if err := json.Unmarshal([]byte(meta.String), &bag); err != nil {
		return nil
	}
	return extract.Bag(bag)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
