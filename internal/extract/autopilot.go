package extract

import "strings"

// autopilotEventPrefix gates slice extraction: only events reported by the
// autopilot worker carry slice telemetry.
const autopilotEventPrefix = "autopilot_slice"

// AutopilotSlice is the telemetry reported for one unit of autonomous
// execution work.
type AutopilotSlice struct {
	Event           string   `json:"event"`
	AgentID         string   `json:"agent_id,omitempty"`
	AgentName       string   `json:"agent_name,omitempty"`
	Domain          string   `json:"domain,omitempty"`
	RequiredSkills  []string `json:"required_skills,omitempty"`
	WorkstreamID    string   `json:"workstream_id,omitempty"`
	WorkstreamTitle string   `json:"workstream_title,omitempty"`
	InitiativeID    string   `json:"initiative_id,omitempty"`
	InitiativeTitle string   `json:"initiative_title,omitempty"`
	TaskIDs         []string `json:"task_ids,omitempty"`
	MilestoneIDs    []string `json:"milestone_ids,omitempty"`
	ParsedStatus    string   `json:"parsed_status,omitempty"`
	HasOutput       bool     `json:"has_output"`
	ArtifactCount   int      `json:"artifact_count"`
	DecisionCount   int      `json:"decision_count"`
	StatusUpdates   int      `json:"status_updates"`
	LogPath         string   `json:"log_path,omitempty"`
	OutputPath      string   `json:"output_path,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// AutopilotSliceFromBag extracts slice telemetry when metadata.event starts
// with the autopilot slice prefix; otherwise nil. Every field tolerates both
// snake_case and camelCase spellings.
func AutopilotSliceFromBag(meta Bag) *AutopilotSlice {
	event, _, ok := meta.FirstString("event")
	if !ok || !strings.HasPrefix(event, autopilotEventPrefix) {
		return nil
	}

	s := &AutopilotSlice{Event: event}
	s.AgentID, _, _ = meta.FirstString("agentId", "agent_id")
	s.AgentName, _, _ = meta.FirstString("agentName", "agent_name")
	s.Domain, _, _ = meta.FirstString("domain")
	s.WorkstreamID, _, _ = meta.FirstString("workstreamId", "workstream_id")
	s.WorkstreamTitle, _, _ = meta.FirstString("workstreamTitle", "workstream_title")
	s.InitiativeID, _, _ = meta.FirstString("initiativeId", "initiative_id")
	s.InitiativeTitle, _, _ = meta.FirstString("initiativeTitle", "initiative_title")
	s.ParsedStatus, _, _ = meta.FirstString("parsedStatus", "parsed_status")
	s.LogPath, _, _ = meta.FirstString("logPath", "log_path")
	s.OutputPath, _, _ = meta.FirstString("outputPath", "output_path")
	s.Error, _, _ = meta.FirstString("error")

	s.RequiredSkills, _ = meta.FirstStringList("requiredSkills", "required_skills")
	s.TaskIDs, _ = meta.FirstStringList("taskIds", "task_ids")
	s.MilestoneIDs, _ = meta.FirstStringList("milestoneIds", "milestone_ids")

	s.HasOutput, _ = meta.FirstBool("hasOutput", "has_output")
	s.ArtifactCount, _ = meta.FirstInt("artifactCount", "artifact_count")
	s.DecisionCount, _ = meta.FirstInt("decisionCount", "decision_count")
	s.StatusUpdates, _ = meta.FirstInt("statusUpdates", "status_updates")

	return s
}
