package extract

import (
	"fmt"
	"sort"
)

// ArtifactKeys is the ordered candidate list probed for artifact payloads.
// The order is load-bearing: the first present key wins.
var ArtifactKeys = []string{
	"artifact", "artifacts",
	"output", "outputs",
	"result", "results",
	"payload",
	"toolOutput", "toolOutputs",
	"toolResult", "toolResults",
}

// ArtifactPayload is a metadata value identified as an artifact, tagged with
// the key it was found under.
type ArtifactPayload struct {
	Source string `json:"source"`
	Value  any    `json:"value"`
}

// ArtifactPayloadFromBag probes the ordered artifact key list and returns the
// first present value. For events whose type is exactly "artifact_created"
// the whole bag is the payload when no key matches.
func ArtifactPayloadFromBag(eventType string, meta Bag) *ArtifactPayload {
	if val, key, ok := meta.First(ArtifactKeys...); ok {
		return &ArtifactPayload{Source: key, Value: val}
	}
	if eventType == "artifact_created" && len(meta) > 0 {
		return &ArtifactPayload{Source: "metadata", Value: map[string]any(meta)}
	}
	return nil
}

// RenderedValue is the structural rendering of an arbitrary artifact value.
// The rendering is flat: one level of structure, with nested composites
// summarized as counts, so the wire shape stays bounded.
type RenderedValue struct {
	Kind    string          `json:"kind"` // text, scalar, list, fields, empty
	Text    string          `json:"text,omitempty"`
	Items   []string        `json:"items,omitempty"`
	Fields  []RenderedField `json:"fields,omitempty"`
	Summary string          `json:"summary,omitempty"`
}

// RenderedField is one key of an object rendering. Scalar values appear
// verbatim; nested composites are summarized as counts.
type RenderedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RenderArtifactValue renders an arbitrary value for display: strings as
// text, numbers and booleans literally, arrays as flat element lists, objects
// as field lists, and anything else as an explicit empty state. Composites
// nested inside a list or object are summarized as counts.
func RenderArtifactValue(value any) RenderedValue {
	switch v := value.(type) {
	case string:
		return RenderedValue{Kind: "text", Text: v}
	case bool, float64, int, int64:
		text, _ := Stringify(v)
		return RenderedValue{Kind: "scalar", Text: text}
	case []any:
		items := make([]string, 0, len(v))
		for _, el := range v {
			items = append(items, renderElement(el))
		}
		return RenderedValue{Kind: "list", Items: items}
	case map[string]any:
		return renderObject(Bag(v))
	case Bag:
		return renderObject(v)
	default:
		return RenderedValue{Kind: "empty", Summary: "no displayable content"}
	}
}

func renderObject(obj Bag) RenderedValue {
	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]RenderedField, 0, len(names))
	for _, name := range names {
		fields = append(fields, RenderedField{Name: name, Value: renderElement(obj[name])})
	}
	return RenderedValue{Kind: "fields", Fields: fields}
}

func renderElement(v any) string {
	switch el := v.(type) {
	case []any:
		return fmt.Sprintf("%d items", len(el))
	case map[string]any:
		return fmt.Sprintf("%d fields", len(el))
	default:
		text, _ := Stringify(el)
		return text
	}
}
