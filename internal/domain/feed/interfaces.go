package feed

import "context"

// Cursor is a keyset paging position over (timestamp, id). The zero cursor
// means "from the newest".
type Cursor struct {
	Timestamp string `json:"timestamp,omitempty"`
	ID        string `json:"id,omitempty"`
}

// IsZero reports whether the cursor points at the start.
func (c Cursor) IsZero() bool {
	return c.Timestamp == "" && c.ID == ""
}

// Page is one upstream slice of the raw feed.
type Page struct {
	Items   []RawActivityItem
	Next    Cursor
	HasMore bool
}

// ActivityRepository provides persistence for raw activity items.
type ActivityRepository interface {
	Insert(ctx context.Context, items []RawActivityItem) (int, error)
	List(ctx context.Context, after Cursor, limit int) (Page, error)
}

// SessionRepository provides the externally sourced session tree.
type SessionRepository interface {
	Upsert(ctx context.Context, nodes []SessionNode) error
	List(ctx context.Context) ([]SessionNode, error)
}

// InitiativeRepository provides initiatives and their workstreams.
type InitiativeRepository interface {
	Upsert(ctx context.Context, initiatives []Initiative) error
	List(ctx context.Context) ([]Initiative, error)
}
