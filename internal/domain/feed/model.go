package feed

import (
	"github.com/ganot/feedline/internal/extract"
)

// ActivityType is the lifecycle kind of a raw event.
type ActivityType string

const (
	TypeRunStarted        ActivityType = "run_started"
	TypeRunCompleted      ActivityType = "run_completed"
	TypeRunFailed         ActivityType = "run_failed"
	TypeArtifactCreated   ActivityType = "artifact_created"
	TypeDecisionRequested ActivityType = "decision_requested"
	TypeDecisionResolved  ActivityType = "decision_resolved"
	TypeHandoff           ActivityType = "handoff"
	TypeMilestoneReached  ActivityType = "milestone_reached"
	TypeStatusUpdate      ActivityType = "status_update"
)

// Bucket is the coarse semantic category of an event.
type Bucket string

const (
	BucketMessage  Bucket = "message"
	BucketArtifact Bucket = "artifact"
	BucketDecision Bucket = "decision"
)

// RawActivityItem is an externally sourced, immutable lifecycle event.
// Timestamp is the ISO-8601 wire form; Metadata is an open bag.
type RawActivityItem struct {
	ID               string       `json:"id"`
	Type             ActivityType `json:"type"`
	Timestamp        string       `json:"timestamp"`
	Title            string       `json:"title,omitempty"`
	Summary          string       `json:"summary,omitempty"`
	Description      string       `json:"description,omitempty"`
	AgentID          string       `json:"agent_id,omitempty"`
	AgentName        string       `json:"agent_name,omitempty"`
	RunID            string       `json:"run_id,omitempty"`
	InitiativeID     string       `json:"initiative_id,omitempty"`
	DecisionRequired bool         `json:"decision_required,omitempty"`
	Metadata         extract.Bag  `json:"metadata,omitempty"`
}

// DecoratedActivityItem is a classified, indexed view of a raw item. It is
// ephemeral: fully recomputed whenever the source list changes, never
// persisted.
type DecoratedActivityItem struct {
	RawActivityItem
	Bucket         Bucket `json:"bucket"`
	ResolvedRunID  string `json:"resolved_run_id,omitempty"`
	TimestampEpoch int64  `json:"timestamp_epoch"` // milliseconds; 0 for unparsable timestamps
	SearchText     string `json:"-"`
}

// Cluster collapses events with identical (type, title) into one row.
type Cluster struct {
	Key            string                  `json:"key"`
	Representative DecoratedActivityItem   `json:"representative"`
	Count          int                     `json:"count"`
	FirstTimestamp int64                   `json:"first_timestamp"`
	Items          []DecoratedActivityItem `json:"items"`
}

// DayGroup is one local calendar day of the rendered timeline.
type DayGroup struct {
	Key      int64     `json:"key"` // local-midnight epoch, milliseconds
	Label    string    `json:"label"`
	Clusters []Cluster `json:"clusters"`
}

// SessionNode is one entry of the externally sourced session tree.
type SessionNode struct {
	ID           string `json:"id"`
	RunID        string `json:"run_id"`
	Title        string `json:"title,omitempty"`
	Status       string `json:"status,omitempty"`
	WorkstreamID string `json:"workstream_id,omitempty"`
	AgentName    string `json:"agent_name,omitempty"`
}

// Workstream is a named stream of work inside an initiative.
type Workstream struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Initiative groups workstreams.
type Initiative struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Workstreams []Workstream `json:"workstreams,omitempty"`
}
