// Package publish pushes finished session media to external platforms.
package publish

import (
	"context"

	"github.com/purposeful/coach/internal/content"
	"go.uber.org/fx"
)

// VideoPublisher uploads a session recording and returns its public URL.
// A nil VideoPublisher means the target is disabled and must be skipped.
type VideoPublisher interface {
	PublishVideo(ctx context.Context, videoPath string, meta *content.YouTubeMetadata) (string, error)
}

// EpisodePublisher creates a podcast episode from hosted audio and
// returns its public URL. A nil EpisodePublisher means the target is
// disabled and must be skipped.
type EpisodePublisher interface {
	PublishEpisode(ctx context.Context, audioURL string, notes *content.PodcastShowNotes) (string, error)
}

var Module = fx.Module("publish",
	fx.Provide(NewVideoPublisherFromConfig),
	fx.Provide(NewEpisodePublisherFromConfig),
)
