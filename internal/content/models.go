// Package content generates publish-ready metadata from session
// transcripts.
package content

import "fmt"

// YouTubeMetadata is the upload metadata for the video target.
type YouTubeMetadata struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	ThumbnailText string   `json:"thumbnailText"`
	Category      string   `json:"category"`
}

// PodcastShowNotes is the episode metadata for the audio target.
type PodcastShowNotes struct {
	Title            string   `json:"title"`
	ShortDescription string   `json:"shortDescription"`
	ShowNotes        string   `json:"showNotes"`
	KeyTopics        []string `json:"keyTopics"`
	Resources        []string `json:"resources"`
}

// YouTubeCategories is the fixed category vocabulary the generator may
// choose from, mapped to YouTube category ids.
var YouTubeCategories = map[string]string{
	"Education":      "27",
	"Howto & Style":  "26",
	"People & Blogs": "22",
}

// ParseError reports a model response that could not be turned into a
// valid metadata object.
type ParseError struct {
	Target string
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse %s metadata: field %q %s", e.Target, e.Field, e.Reason)
	}
	return fmt.Sprintf("parse %s metadata: %s", e.Target, e.Reason)
}
