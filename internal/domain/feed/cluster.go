package feed

import (
	"strconv"
	"time"
)

// clusterKeySep joins type and title into the cluster key. Clustering is
// intentionally coarse: only literal (type, title) repeats collapse.
const clusterKeySep = "\x1f"

// ClusterKeyFor returns the exact (type, title) compound key for an item.
func ClusterKeyFor(item DecoratedActivityItem) string {
	return string(item.Type) + clusterKeySep + item.Title
}

// BuildClusters collapses exact-duplicate events, preserving the first
// appearance order of keys. The representative is the member with the
// greatest timestamp epoch, found by explicit comparison.
func BuildClusters(items []DecoratedActivityItem) []Cluster {
	var clusters []Cluster
	index := make(map[string]int)
	for _, item := range items {
		key := ClusterKeyFor(item)
		at, ok := index[key]
		if !ok {
			index[key] = len(clusters)
			clusters = append(clusters, Cluster{
				Key:            key,
				Representative: item,
				Count:          1,
				FirstTimestamp: item.TimestampEpoch,
				Items:          []DecoratedActivityItem{item},
			})
			continue
		}
		c := &clusters[at]
		c.Count++
		c.Items = append(c.Items, item)
		if item.TimestampEpoch > c.Representative.TimestampEpoch {
			c.Representative = item
		}
		if item.TimestampEpoch < c.FirstTimestamp {
			c.FirstTimestamp = item.TimestampEpoch
		}
	}
	return clusters
}

// BuildDayGroups groups the sorted window by local calendar day and clusters
// within each day. Items with unparsable timestamps (epoch 0) land in the
// epoch day rather than erroring.
func BuildDayGroups(items []DecoratedActivityItem, now time.Time, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}
	var groups []DayGroup
	index := make(map[int64]int)
	byDay := make(map[int64][]DecoratedActivityItem)
	for _, item := range items {
		key := dayKey(item.TimestampEpoch, loc)
		if _, ok := index[key]; !ok {
			index[key] = len(groups)
			groups = append(groups, DayGroup{Key: key, Label: dayLabel(key, now, loc)})
		}
		byDay[key] = append(byDay[key], item)
	}
	for i := range groups {
		groups[i].Clusters = BuildClusters(byDay[groups[i].Key])
	}
	return groups
}

// dayKey is the local-midnight epoch in milliseconds for a timestamp.
func dayKey(epochMillis int64, loc *time.Location) int64 {
	t := time.UnixMilli(epochMillis).In(loc)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return midnight.UnixMilli()
}

func dayLabel(key int64, now time.Time, loc *time.Location) string {
	day := time.UnixMilli(key).In(loc)
	today := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	case day.Year() == today.Year():
		return day.Format("Jan 2")
	default:
		return day.Format("Jan 2, 2006")
	}
}

// ExpandedSet is the UI-only expand/collapse state, keyed by cluster key. It
// is independent of the data pass; keys that disappear from the current
// output are pruned.
type ExpandedSet struct {
	keys map[string]struct{}
}

// NewExpandedSet returns an empty set.
func NewExpandedSet() *ExpandedSet {
	return &ExpandedSet{keys: make(map[string]struct{})}
}

// Toggle flips a key and reports the new expanded state.
func (s *ExpandedSet) Toggle(key string) bool {
	if _, ok := s.keys[key]; ok {
		delete(s.keys, key)
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Contains reports whether a cluster is expanded.
func (s *ExpandedSet) Contains(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Prune drops state for keys absent from the current groups.
func (s *ExpandedSet) Prune(groups []DayGroup) {
	live := make(map[string]struct{})
	for _, g := range groups {
		for _, c := range g.Clusters {
			live[c.Key] = struct{}{}
		}
	}
	for key := range s.keys {
		if _, ok := live[key]; !ok {
			delete(s.keys, key)
		}
	}
}

// Keys returns the expanded cluster keys in unspecified order.
func (s *ExpandedSet) Keys() []string {
	out := make([]string, 0, len(s.keys))
	for key := range s.keys {
		out = append(out, key)
	}
	return out
}

// DayKeyString serializes a day key the way it is exposed on the wire.
func DayKeyString(key int64) string {
	return strconv.FormatInt(key, 10)
}
