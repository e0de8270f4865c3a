package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/purposeful/coach/internal/config"
	"github.com/purposeful/coach/internal/content"
	"go.uber.org/zap"
)

// NewEpisodePublisherFromConfig returns nil when the podcast target is
// disabled; callers treat nil as skip.
func NewEpisodePublisherFromConfig(cfg config.Config, log *zap.Logger) EpisodePublisher {
	if !cfg.PodcastEnabled {
		log.Named("publish.podcast").Info("podcast publishing disabled")
		return nil
	}
	return NewPodcastHost(cfg, http.DefaultClient, log)
}

// PodcastHost talks to the podcast hosting provider's episode API.
type PodcastHost struct {
	baseURL string
	apiKey  string
	showID  string
	client  *http.Client
	log     *zap.Logger
}

func NewPodcastHost(cfg config.Config, client *http.Client, log *zap.Logger) *PodcastHost {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &PodcastHost{
		baseURL: strings.TrimRight(cfg.PodcastAPIURL, "/"),
		apiKey:  cfg.PodcastAPIKey,
		showID:  cfg.PodcastShowID,
		client:  client,
		log:     log.Named("publish.podcast"),
	}
}

type episodeRequest struct {
	ShowID      string   `json:"showId"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	ShowNotes   string   `json:"showNotes"`
	Topics      []string `json:"topics"`
	AudioURL    string   `json:"audioUrl"`
}

type episodeResponse struct {
	ID         string `json:"id"`
	EpisodeURL string `json:"episodeUrl"`
}

func (p *PodcastHost) PublishEpisode(ctx context.Context, audioURL string, notes *content.PodcastShowNotes) (string, error) {
	payload, err := json.Marshal(episodeRequest{
		ShowID:      p.showID,
		Title:       notes.Title,
		Slug:        slug.Make(notes.Title),
		Description: notes.ShortDescription,
		ShowNotes:   notes.ShowNotes,
		Topics:      notes.KeyTopics,
		AudioURL:    audioURL,
	})
	if err != nil {
		return "", fmt.Errorf("encode episode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/episodes", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build episode request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("create episode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("create episode: host returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var created episodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode episode response: %w", err)
	}

	p.log.Info("episode published", zap.String("episode_id", created.ID), zap.String("url", created.EpisodeURL))
	return created.EpisodeURL, nil
}
