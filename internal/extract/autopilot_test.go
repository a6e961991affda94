package extract_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ganot/feedline/internal/extract"
)

func TestAutopilotSliceFromBag_EventGate(t *testing.T) {
	// no event key: nil
	require.Nil(t, extract.AutopilotSliceFromBag(extract.Bag{"agentId": "a1"}))

	// non-autopilot event: nil
	require.Nil(t, extract.AutopilotSliceFromBag(extract.Bag{"event": "run_started"}))

	// prefixed event: extracted
	s := extract.AutopilotSliceFromBag(extract.Bag{"event": "autopilot_slice_completed"})
	require.NotNil(t, s)
	require.Equal(t, "autopilot_slice_completed", s.Event)
}

func TestAutopilotSliceFromBag_Fields(t *testing.T) {
	meta := extract.Bag{
		"event":           "autopilot_slice_completed",
		"agentId":         "a1",
		"agent_name":      "researcher", // snake fallback
		"domain":          "ops",
		"workstreamId":    "ws1",
		"initiative_id":   "in1",
		"parsedStatus":    "done",
		"requiredSkills":  []any{"go"},
		"taskIds":         []any{"t1", "t2"},
		"milestone_ids":   []any{"m1"},
		"hasOutput":       true,
		"artifactCount":   2.0,
		"decision_count":  1.0,
		"status_updates":  3.0,
		"logPath":         "/tmp/slice.log",
		"output_path":     "/tmp/out.md",
		"error":           "timeout",
	}

	s := extract.AutopilotSliceFromBag(meta)
	require.NotNil(t, s)
	require.Equal(t, "a1", s.AgentID)
	require.Equal(t, "researcher", s.AgentName)
	require.Equal(t, "ops", s.Domain)
	require.Equal(t, "ws1", s.WorkstreamID)
	require.Equal(t, "in1", s.InitiativeID)
	require.Equal(t, "done", s.ParsedStatus)
	require.Equal(t, []string{"go"}, s.RequiredSkills)
	require.Equal(t, []string{"t1", "t2"}, s.TaskIDs)
	require.Equal(t, []string{"m1"}, s.MilestoneIDs)
	require.True(t, s.HasOutput)
	require.Equal(t, 2, s.ArtifactCount)
	require.Equal(t, 1, s.DecisionCount)
	require.Equal(t, 3, s.StatusUpdates)
	require.Equal(t, "/tmp/slice.log", s.LogPath)
	require.Equal(t, "/tmp/out.md", s.OutputPath)
	require.Equal(t, "timeout", s.Error)
}
