package publish

import (
	"context"
	"fmt"
	"os"

	"github.com/purposeful/coach/internal/config"
	"github.com/purposeful/coach/internal/content"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"
)

// NewVideoPublisherFromConfig returns nil when the YouTube target is
// disabled; callers treat nil as skip.
func NewVideoPublisherFromConfig(cfg config.Config, log *zap.Logger) VideoPublisher {
	if !cfg.YouTubeEnabled {
		log.Named("publish.youtube").Info("youtube publishing disabled")
		return nil
	}
	return NewYouTube(cfg, log)
}

type YouTube struct {
	oauth   *oauth2.Config
	token   *oauth2.Token
	privacy string
	log     *zap.Logger
}

func NewYouTube(cfg config.Config, log *zap.Logger) *YouTube {
	privacy := cfg.YouTubePrivacy
	if privacy == "" {
		privacy = "public"
	}
	return &YouTube{
		oauth: &oauth2.Config{
			ClientID:     cfg.YouTubeClientID,
			ClientSecret: cfg.YouTubeClientSecret,
			Endpoint:     googleoauth.Endpoint,
			Scopes:       []string{youtube.YoutubeUploadScope},
		},
		token:   &oauth2.Token{RefreshToken: cfg.YouTubeRefreshToken},
		privacy: privacy,
		log:     log.Named("publish.youtube"),
	}
}

func (y *YouTube) PublishVideo(ctx context.Context, videoPath string, meta *content.YouTubeMetadata) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("open video %s: %w", videoPath, err)
	}
	defer file.Close()

	svc, err := youtube.NewService(ctx, option.WithTokenSource(y.oauth.TokenSource(ctx, y.token)))
	if err != nil {
		return "", fmt.Errorf("youtube service: %w", err)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  content.YouTubeCategories[meta.Category],
		},
		Status: &youtube.VideoStatus{PrivacyStatus: y.privacy},
	}

	resp, err := svc.Videos.Insert([]string{"snippet", "status"}, video).Media(file).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("upload video: %w", err)
	}

	url := "https://www.youtube.com/watch?v=" + resp.Id
	y.log.Info("video published", zap.String("video_id", resp.Id), zap.String("url", url))
	return url, nil
}
