package content

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedCompleter struct {
	reply string
	err   error
	last  openai.ChatCompletionRequest
}

func (s *scriptedCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.last = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.reply}},
		},
	}, nil
}

func TestYouTubeMetadataFromProseWrappedJSON(t *testing.T) {
	completer := &scriptedCompleter{reply: `Sure! Here is the metadata you asked for:

{
  "title": "Morning Routines That Stick",
  "description": "A session on building habits.",
  "tags": ["wellness", "habits"],
  "thumbnailText": "HABITS THAT STICK",
  "category": "Education"
}

Let me know if you want revisions.`}
	gen := NewOpenAI(completer, "", zap.NewNop())

	meta, err := gen.YouTubeMetadata(context.Background(), "transcript text", 1800)
	require.NoError(t, err)
	require.Equal(t, "Morning Routines That Stick", meta.Title)
	require.Equal(t, []string{"wellness", "habits"}, meta.Tags)
	require.Equal(t, "Education", meta.Category)

	// duration is presented to the model in minutes
	require.Contains(t, completer.last.Messages[1].Content, "Session Duration: 30 minutes")
}

func TestYouTubeMetadataRejectsUnknownCategory(t *testing.T) {
	completer := &scriptedCompleter{reply: `{
  "title": "t", "description": "d", "tags": ["a"],
  "thumbnailText": "x", "category": "Comedy"
}`}
	gen := NewOpenAI(completer, "", zap.NewNop())

	_, err := gen.YouTubeMetadata(context.Background(), "tr", 60)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "category", perr.Field)
}

func TestYouTubeMetadataNoJSONInResponse(t *testing.T) {
	completer := &scriptedCompleter{reply: "I cannot produce metadata for this transcript."}
	gen := NewOpenAI(completer, "", zap.NewNop())

	_, err := gen.YouTubeMetadata(context.Background(), "tr", 60)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "youtube", perr.Target)
	require.Empty(t, perr.Field)
}

func TestPodcastShowNotesHappyPath(t *testing.T) {
	completer := &scriptedCompleter{reply: `{
  "title": "Ep 12: Boundaries",
  "shortDescription": "Setting boundaries without guilt.",
  "showNotes": "00:00 intro\n05:00 the ask",
  "keyTopics": ["boundaries", "guilt", "scripts"],
  "resources": ["Nonviolent Communication"]
}`}
	gen := NewOpenAI(completer, "gpt-4o", zap.NewNop())

	notes, err := gen.PodcastShowNotes(context.Background(), "tr", 3600)
	require.NoError(t, err)
	require.Equal(t, "Ep 12: Boundaries", notes.Title)
	require.Len(t, notes.KeyTopics, 3)
	require.Equal(t, "gpt-4o", completer.last.Model)
}

func TestPodcastShowNotesMissingKeyTopics(t *testing.T) {
	completer := &scriptedCompleter{reply: `{
  "title": "Ep", "shortDescription": "d", "showNotes": "n",
  "keyTopics": [], "resources": []
}`}
	gen := NewOpenAI(completer, "", zap.NewNop())

	_, err := gen.PodcastShowNotes(context.Background(), "tr", 60)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "keyTopics", perr.Field)
}

func TestTruncateTranscript(t *testing.T) {
	long := strings.Repeat("a", 5000)
	out := truncateTranscript(long, transcriptLimit)
	require.Len(t, out, transcriptLimit+len("... [truncated]"))
	require.True(t, strings.HasSuffix(out, "... [truncated]"))

	require.Equal(t, "short", truncateTranscript("short", transcriptLimit))
}

func TestTruncateTranscriptKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("ü", 5000)
	out := truncateTranscript(long, transcriptLimit)
	require.True(t, utf8.ValidString(out))
	require.Equal(t, transcriptLimit+len("... [truncated]"), utf8.RuneCountInString(out))
	require.True(t, strings.HasSuffix(out, "ü... [truncated]"))
}

func TestYouTubeTitleCapPreservesRunes(t *testing.T) {
	title := strings.Repeat("é", 80)
	completer := &scriptedCompleter{reply: `{
  "title": "` + title + `", "description": "d", "tags": ["a"],
  "thumbnailText": "x", "category": "Education"
}`}
	gen := NewOpenAI(completer, "", zap.NewNop())

	meta, err := gen.YouTubeMetadata(context.Background(), "tr", 60)
	require.NoError(t, err)
	require.True(t, utf8.ValidString(meta.Title))
	require.Equal(t, 60, utf8.RuneCountInString(meta.Title))
	require.Equal(t, strings.Repeat("é", 60), meta.Title)
}

func TestTranscriptTruncatedInPrompt(t *testing.T) {
	completer := &scriptedCompleter{reply: `{
  "title": "t", "description": "d", "tags": ["a"],
  "thumbnailText": "x", "category": "Education"
}`}
	gen := NewOpenAI(completer, "", zap.NewNop())

	_, err := gen.YouTubeMetadata(context.Background(), strings.Repeat("b", 10000), 60)
	require.NoError(t, err)
	require.Contains(t, completer.last.Messages[1].Content, "... [truncated]")
	require.NotContains(t, completer.last.Messages[1].Content, strings.Repeat("b", 3001))
}
