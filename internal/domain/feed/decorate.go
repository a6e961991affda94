package feed

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ganot/feedline/internal/extract"
)

// runIDKeys is the ordered candidate list scanned when an item carries no
// explicit run id.
var runIDKeys = []string{"runId", "run_id", "sessionId", "session_id", "agentRunId"}

// searchKeySubstrings selects which metadata values participate in search
// text and classification haystacks: any value whose key contains one of
// these substrings.
var searchKeySubstrings = []string{
	"type", "kind", "summary", "message", "artifact", "decision",
	"run", "title", "task", "workstream", "milestone",
}

var (
	artifactWordPattern = regexp.MustCompile(`\b(artifacts?|deliverables?|outputs?|attachments?|uploaded|generated)\b`)
	decisionWordPattern = regexp.MustCompile(`\b(decisions?|approvals?|approve[d]?|sign[- ]?off|needs (review|input)|choose|confirm)\b`)
)

// classifier is one tagged predicate of the classification chain. Each
// returns a definite bucket or no opinion; the first opinion wins.
type classifier struct {
	name  string
	apply func(item RawActivityItem, haystack string) (Bucket, bool)
}

// classifiers is evaluated top to bottom. The order encodes precedence:
// explicit artifact type, artifact payload keys, artifact vocabulary,
// decision signals, then the message fallthrough.
var classifiers = []classifier{
	{
		name: "artifact_type",
		apply: func(item RawActivityItem, _ string) (Bucket, bool) {
			if item.Type == TypeArtifactCreated {
				return BucketArtifact, true
			}
			return "", false
		},
	},
	{
		name: "artifact_key",
		apply: func(item RawActivityItem, _ string) (Bucket, bool) {
			if _, _, ok := item.Metadata.First(extract.ArtifactKeys...); ok {
				return BucketArtifact, true
			}
			return "", false
		},
	},
	{
		name: "artifact_word",
		apply: func(_ RawActivityItem, haystack string) (Bucket, bool) {
			if artifactWordPattern.MatchString(haystack) {
				return BucketArtifact, true
			}
			return "", false
		},
	},
	{
		name: "decision_signal",
		apply: func(item RawActivityItem, haystack string) (Bucket, bool) {
			if item.Type == TypeDecisionRequested || item.Type == TypeDecisionResolved {
				return BucketDecision, true
			}
			if item.DecisionRequired {
				return BucketDecision, true
			}
			if decisionWordPattern.MatchString(haystack) {
				return BucketDecision, true
			}
			return "", false
		},
	},
}

// Classify assigns a bucket to an item. It is total and deterministic: every
// item lands in exactly one of message, artifact, or decision.
func Classify(item RawActivityItem) Bucket {
	haystack := classifyHaystack(item)
	for _, c := range classifiers {
		if bucket, ok := c.apply(item, haystack); ok {
			return bucket
		}
	}
	return BucketMessage
}

// ResolveRunID prefers the explicit run id and falls back to scanning the
// metadata candidate keys for the first non-empty trimmed string.
func ResolveRunID(item RawActivityItem) string {
	if run := strings.TrimSpace(item.RunID); run != "" {
		return run
	}
	if run, _, ok := item.Metadata.FirstString(runIDKeys...); ok {
		return run
	}
	return ""
}

// Decorate normalizes a raw event into a classified, indexed record.
// Decoration is idempotent: an unchanged input yields field-identical output.
func Decorate(item RawActivityItem) DecoratedActivityItem {
	return DecoratedActivityItem{
		RawActivityItem: item,
		Bucket:          Classify(item),
		ResolvedRunID:   ResolveRunID(item),
		TimestampEpoch:  parseTimestamp(item.Timestamp),
		SearchText:      buildSearchText(item),
	}
}

// DecorateAll decorates a source snapshot, deduplicating by id (first
// occurrence wins) and preserving source order.
func DecorateAll(items []RawActivityItem) []DecoratedActivityItem {
	out := make([]DecoratedActivityItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ID != "" {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
		}
		out = append(out, Decorate(item))
	}
	return out
}

// parseTimestamp converts the ISO-8601 wire form to epoch milliseconds.
// Invalid or missing timestamps map to 0; the item still participates and
// sorts to an extremum.
func parseTimestamp(ts string) int64 {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return 0
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

func buildSearchText(item RawActivityItem) string {
	parts := make([]string, 0, 8)
	for _, s := range []string{item.Title, item.Description, item.Summary, item.AgentName} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, matchedMetadataValues(item.Metadata)...)
	return strings.ToLower(strings.Join(parts, " "))
}

// classifyHaystack is the lowercased free text the word classifiers match
// against: type, metadata kind, summary, title, description, plus the
// matched metadata values.
func classifyHaystack(item RawActivityItem) string {
	parts := make([]string, 0, 8)
	parts = append(parts, string(item.Type))
	if kind, _, ok := item.Metadata.FirstString("kind"); ok {
		parts = append(parts, kind)
	}
	for _, s := range []string{item.Summary, item.Title, item.Description} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, matchedMetadataValues(item.Metadata)...)
	return strings.ToLower(strings.Join(parts, " "))
}

// matchedMetadataValues renders the metadata values whose key contains one of
// the search key substrings, in deterministic key order.
func matchedMetadataValues(meta extract.Bag) []string {
	if len(meta) == 0 {
		return nil
	}
	keys := make([]string, 0, len(meta))
	for key := range meta {
		if searchableKey(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if text, ok := extract.Stringify(meta[key]); ok && text != "" {
			out = append(out, text)
		}
	}
	return out
}

func searchableKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sub := range searchKeySubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
