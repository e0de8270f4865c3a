package content

import (
	"encoding/json"
	"strings"
)

// extractJSON pulls the first-brace-to-last-brace span out of a model
// response and unmarshals it. Models wrap JSON in prose and code fences
// often enough that this is the pragmatic first pass; the caller
// validates the decoded fields afterwards.
func extractJSON(target, raw string, out any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return &ParseError{Target: target, Reason: "no JSON object in response"}
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), out); err != nil {
		return &ParseError{Target: target, Reason: "invalid JSON: " + err.Error()}
	}
	return nil
}

func (m *YouTubeMetadata) validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return &ParseError{Target: "youtube", Field: "title", Reason: "is empty"}
	}
	if strings.TrimSpace(m.Description) == "" {
		return &ParseError{Target: "youtube", Field: "description", Reason: "is empty"}
	}
	if len(m.Tags) == 0 {
		return &ParseError{Target: "youtube", Field: "tags", Reason: "is empty"}
	}
	if _, ok := YouTubeCategories[m.Category]; !ok {
		return &ParseError{Target: "youtube", Field: "category", Reason: "not in the allowed set"}
	}
	return nil
}

func (n *PodcastShowNotes) validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return &ParseError{Target: "podcast", Field: "title", Reason: "is empty"}
	}
	if strings.TrimSpace(n.ShowNotes) == "" {
		return &ParseError{Target: "podcast", Field: "showNotes", Reason: "is empty"}
	}
	if len(n.KeyTopics) == 0 {
		return &ParseError{Target: "podcast", Field: "keyTopics", Reason: "is empty"}
	}
	return nil
}

// truncateTranscript caps the transcript passed to the model. The cut
// is made on a rune boundary so a multi-byte character is never split.
func truncateTranscript(transcript string, max int) string {
	runes := []rune(transcript)
	if len(runes) <= max {
		return transcript
	}
	return string(runes[:max]) + "... [truncated]"
}
