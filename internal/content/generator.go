package content

import (
	"context"
	"fmt"

	"github.com/purposeful/coach/internal/config"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const transcriptLimit = 3000

// Generator produces publish metadata from a transcript. Both calls are
// independent given the same transcript and may run concurrently.
type Generator interface {
	YouTubeMetadata(ctx context.Context, transcript string, durationSeconds int) (*YouTubeMetadata, error)
	PodcastShowNotes(ctx context.Context, transcript string, durationSeconds int) (*PodcastShowNotes, error)
}

var Module = fx.Module("content",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Generator {
	return NewOpenAI(openai.NewClient(cfg.OpenAIAPIKey), cfg.OpenAIModel, log)
}

// ChatCompleter is the slice of the OpenAI client the generator needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAIGenerator struct {
	client ChatCompleter
	model  string
	log    *zap.Logger
}

func NewOpenAI(client ChatCompleter, model string, log *zap.Logger) *OpenAIGenerator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGenerator{
		client: client,
		model:  model,
		log:    log.Named("content.generator"),
	}
}

const youtubeSystemPrompt = `You are a YouTube content strategist specializing in wellness and personal development content.
Your job is to create compelling, SEO-optimized metadata that will help videos rank well and attract viewers.
Always maintain client privacy - never mention specific names or identifying details.`

const podcastSystemPrompt = `You are a podcast producer specializing in wellness and personal development content.
Your job is to create engaging show notes that provide value to listeners and improve discoverability.
Always maintain client privacy - never mention specific names or identifying details.`

func (g *OpenAIGenerator) YouTubeMetadata(ctx context.Context, transcript string, durationSeconds int) (*YouTubeMetadata, error) {
	userPrompt := fmt.Sprintf(`Create YouTube metadata for this coaching session:

Session Duration: %d minutes
Transcript:
%s

Generate:

1. TITLE (60 characters max, compelling and SEO-friendly)
2. DESCRIPTION (detailed, 3-5 paragraphs with timestamps if relevant)
3. TAGS (15-20 relevant tags, comma-separated)
4. THUMBNAIL TEXT SUGGESTION (3-5 words, attention-grabbing)
5. CATEGORY (choose one: Education, Howto & Style, People & Blogs)

Format your response as JSON:
{
  "title": "...",
  "description": "...",
  "tags": ["tag1", "tag2", ...],
  "thumbnailText": "...",
  "category": "..."
}`, durationSeconds/60, truncateTranscript(transcript, transcriptLimit))

	raw, err := g.complete(ctx, youtubeSystemPrompt, userPrompt, 1500)
	if err != nil {
		return nil, err
	}

	var meta YouTubeMetadata
	if err := extractJSON("youtube", raw, &meta); err != nil {
		return nil, err
	}
	if err := meta.validate(); err != nil {
		return nil, err
	}
	if runes := []rune(meta.Title); len(runes) > 60 {
		meta.Title = string(runes[:60])
	}
	return &meta, nil
}

func (g *OpenAIGenerator) PodcastShowNotes(ctx context.Context, transcript string, durationSeconds int) (*PodcastShowNotes, error) {
	userPrompt := fmt.Sprintf(`Create podcast show notes for this coaching session:

Episode Duration: %d minutes
Transcript:
%s

Generate:

1. EPISODE TITLE (compelling and descriptive)
2. SHORT DESCRIPTION (1-2 sentences, for podcast directories)
3. FULL SHOW NOTES (structured with sections, timestamps, key takeaways)
4. KEY TOPICS (5-7 main topics covered)
5. RESOURCES MENTIONED (any tools, techniques, or concepts to link)

Format your response as JSON:
{
  "title": "...",
  "shortDescription": "...",
  "showNotes": "...",
  "keyTopics": ["topic1", "topic2", ...],
  "resources": ["resource1", "resource2", ...]
}`, durationSeconds/60, truncateTranscript(transcript, transcriptLimit))

	raw, err := g.complete(ctx, podcastSystemPrompt, userPrompt, 2000)
	if err != nil {
		return nil, err
	}

	var notes PodcastShowNotes
	if err := extractJSON("podcast", raw, &notes); err != nil {
		return nil, err
	}
	if err := notes.validate(); err != nil {
		return nil, err
	}
	return &notes, nil
}

func (g *OpenAIGenerator) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
