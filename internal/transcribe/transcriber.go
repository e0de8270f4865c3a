// Package transcribe converts recorded media to text.
package transcribe

import (
	"context"
	"fmt"

	"github.com/purposeful/coach/internal/config"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/fx"
)

type Transcriber interface {
	// TranscribeFile returns the plain-text transcript of a local media
	// file.
	TranscribeFile(ctx context.Context, path string) (string, error)
}

var Module = fx.Module("transcribe",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Transcriber {
	return NewWhisper(openai.NewClient(cfg.OpenAIAPIKey))
}

// Whisper transcribes via the OpenAI audio API. The provider enforces a
// 25MB request ceiling; the pipeline checks sizes before calling.
type Whisper struct {
	client *openai.Client
}

func NewWhisper(client *openai.Client) *Whisper {
	return &Whisper{client: client}
}

func (w *Whisper) TranscribeFile(ctx context.Context, path string) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: path,
		Language: "en",
	})
	if err != nil {
		return "", fmt.Errorf("transcribe %s: %w", path, err)
	}
	return resp.Text, nil
}
