package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/purposeful/coach/internal/config"
	"github.com/purposeful/coach/internal/content"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishEpisode(t *testing.T) {
	var got episodeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/episodes", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(episodeResponse{ID: "ep-9", EpisodeURL: "https://pods.example/ep-9"})
	}))
	defer srv.Close()

	host := NewPodcastHost(config.Config{
		PodcastAPIURL: srv.URL,
		PodcastAPIKey: "secret",
		PodcastShowID: "show-1",
	}, srv.Client(), zap.NewNop())

	url, err := host.PublishEpisode(context.Background(), "https://cdn.example/audio.mp3", &content.PodcastShowNotes{
		Title:            "Ep 12: Boundaries & Burnout",
		ShortDescription: "short",
		ShowNotes:        "notes",
		KeyTopics:        []string{"boundaries"},
	})
	require.NoError(t, err)
	require.Equal(t, "https://pods.example/ep-9", url)
	require.Equal(t, "show-1", got.ShowID)
	require.Equal(t, "ep-12-boundaries-and-burnout", got.Slug)
	require.Equal(t, "https://cdn.example/audio.mp3", got.AudioURL)
}

func TestPublishEpisodeHostError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	host := NewPodcastHost(config.Config{PodcastAPIURL: srv.URL}, srv.Client(), zap.NewNop())

	_, err := host.PublishEpisode(context.Background(), "https://cdn.example/a.mp3", &content.PodcastShowNotes{
		Title: "t", ShowNotes: "n", KeyTopics: []string{"x"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
	require.Contains(t, err.Error(), "quota exceeded")
}

func TestDisabledTargetsProvideNil(t *testing.T) {
	log := zap.NewNop()
	require.Nil(t, NewVideoPublisherFromConfig(config.Config{YouTubeEnabled: false}, log))
	require.Nil(t, NewEpisodePublisherFromConfig(config.Config{PodcastEnabled: false}, log))
}
