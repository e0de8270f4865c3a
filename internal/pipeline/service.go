// Package pipeline turns an uploaded session recording into published
// content: transcript, hosted audio, YouTube video and podcast episode.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/purposeful/coach/internal/clock"
	"github.com/purposeful/coach/internal/config"
	"github.com/purposeful/coach/internal/content"
	"github.com/purposeful/coach/internal/media"
	"github.com/purposeful/coach/internal/publish"
	sessiondomain "github.com/purposeful/coach/internal/session/domain"
	"github.com/purposeful/coach/internal/storage"
	"github.com/purposeful/coach/internal/transcribe"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// whisperMaxBytes is the provider's hard request ceiling for a single
// transcription upload.
const whisperMaxBytes = 25 * 1024 * 1024

const errSessionOrVideoNotFound = "Session or video not found"

// Result is the terminal report of one pipeline run. Process never
// returns a Go error; everything a caller needs is in here.
type Result struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
	RunID     string `json:"runId"`

	Transcript string `json:"transcript,omitempty"`
	AudioURL   string `json:"audioUrl,omitempty"`

	YouTubeMetadata  *content.YouTubeMetadata  `json:"youtubeMetadata,omitempty"`
	PodcastShowNotes *content.PodcastShowNotes `json:"podcastShowNotes,omitempty"`

	YouTubeURL string `json:"youtubeUrl,omitempty"`
	PodcastURL string `json:"podcastUrl,omitempty"`

	// PublishErrors holds per-target failures that did not abort the
	// run; a failed YouTube upload never blocks the podcast episode.
	PublishErrors map[string]string `json:"publishErrors,omitempty"`

	Error string `json:"error,omitempty"`
}

type Service interface {
	Process(ctx context.Context, id snowflake.ID) *Result
}

type ServiceParams struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Config   config.Config
	Sessions sessiondomain.Repository

	Blobs       storage.BlobStore
	Transcriber transcribe.Transcriber
	Extractor   media.Extractor
	Generator   content.Generator

	Videos   publish.VideoPublisher   `optional:"true"`
	Episodes publish.EpisodePublisher `optional:"true"`
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	tempDir  string
	sessions sessiondomain.Repository

	blobs       storage.BlobStore
	transcriber transcribe.Transcriber
	extractor   media.Extractor
	generator   content.Generator

	videos   publish.VideoPublisher
	episodes publish.EpisodePublisher
}

func NewService(p ServiceParams) Service {
	tempDir := p.Config.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &service{
		db:          p.DB,
		log:         p.Log.Named("pipeline.service"),
		clock:       p.Clock,
		tempDir:     tempDir,
		sessions:    p.Sessions,
		blobs:       p.Blobs,
		transcriber: p.Transcriber,
		extractor:   p.Extractor,
		generator:   p.Generator,
		videos:      p.Videos,
		episodes:    p.Episodes,
	}
}

// Process runs the full publishing pipeline for one session. The run is
// claimed up front so concurrent triggers for the same session collapse
// to a single execution.
func (s *service) Process(ctx context.Context, id snowflake.ID) *Result {
	result := &Result{
		SessionID:     id.String(),
		RunID:         ulid.Make().String(),
		PublishErrors: map[string]string{},
	}
	log := s.log.With(zap.String("session_id", result.SessionID), zap.String("run_id", result.RunID))

	sess, err := s.sessions.FindByID(ctx, s.db, id)
	if err != nil {
		return s.fail(ctx, id, log, result, fmt.Errorf("load session: %w", err))
	}
	if sess == nil {
		result.Error = errSessionOrVideoNotFound
		runsTotal.WithLabelValues("failed").Inc()
		return result
	}

	if err := s.sessions.Claim(ctx, s.db, id, s.clock.Now()); err != nil {
		if errors.Is(err, sessiondomain.ErrAlreadyClaimed) {
			log.Warn("session already claimed")
			result.Error = err.Error()
			runsTotal.WithLabelValues("already_claimed").Inc()
			return result
		}
		return s.fail(ctx, id, log, result, fmt.Errorf("claim session: %w", err))
	}

	if sess.VideoURL == nil || *sess.VideoURL == "" {
		return s.fail(ctx, id, log, result, errors.New(errSessionOrVideoNotFound))
	}

	scratch := newScratch(s.tempDir, log)
	defer scratch.cleanup()

	videoPath, err := s.download(ctx, scratch, *sess.VideoURL)
	if err != nil {
		return s.fail(ctx, id, log, result, err)
	}

	audioPath, err := s.extractor.ExtractAudio(ctx, videoPath)
	if err != nil {
		return s.fail(ctx, id, log, result, err)
	}
	scratch.track(audioPath)

	transcript, err := s.transcribe(ctx, videoPath, audioPath)
	if err != nil {
		return s.fail(ctx, id, log, result, err)
	}
	result.Transcript = transcript
	log.Info("session transcribed", zap.Int("transcript_chars", len(transcript)))

	audioURL, err := s.uploadAudio(ctx, id, audioPath)
	if err != nil {
		return s.fail(ctx, id, log, result, err)
	}
	result.AudioURL = audioURL

	if err := s.generate(ctx, result, transcript, sess.VideoDuration); err != nil {
		return s.fail(ctx, id, log, result, err)
	}

	s.publishAll(ctx, result, videoPath, audioURL, log)

	now := s.clock.Now()
	if err := s.sessions.UpdateNotes(ctx, s.db, id, transcript, now); err != nil {
		return s.fail(ctx, id, log, result, fmt.Errorf("store transcript: %w", err))
	}
	if err := s.sessions.MarkDone(ctx, s.db, id, now); err != nil {
		return s.fail(ctx, id, log, result, fmt.Errorf("mark session done: %w", err))
	}

	result.Success = true
	runsTotal.WithLabelValues("success").Inc()
	log.Info("pipeline run finished",
		zap.String("youtube_url", result.YouTubeURL),
		zap.String("podcast_url", result.PodcastURL),
		zap.Int("publish_errors", len(result.PublishErrors)),
	)
	return result
}

func (s *service) fail(ctx context.Context, id snowflake.ID, log *zap.Logger, result *Result, cause error) *Result {
	log.Error("pipeline run failed", zap.Error(cause))
	if err := s.sessions.MarkFailed(ctx, s.db, id, s.clock.Now()); err != nil {
		log.Error("mark session failed", zap.Error(err))
	}
	result.Success = false
	result.Error = cause.Error()
	runsTotal.WithLabelValues("failed").Inc()
	return result
}

func (s *service) download(ctx context.Context, scratch *scratchDir, videoURL string) (string, error) {
	key, err := storage.KeyFromURL(videoURL)
	if err != nil {
		return "", err
	}

	body, err := s.blobs.Download(ctx, key)
	if err != nil {
		return "", fmt.Errorf("download recording: %w", err)
	}
	defer body.Close()

	path := scratch.path("video-" + uuid.NewString() + filepath.Ext(key))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}
	defer file.Close()
	scratch.track(path)

	if _, err := io.Copy(file, body); err != nil {
		return "", fmt.Errorf("write scratch file: %w", err)
	}
	return path, nil
}

// transcribe sends the smallest workable file to the speech API: the
// video itself when it fits, otherwise the extracted audio.
func (s *service) transcribe(ctx context.Context, videoPath, audioPath string) (string, error) {
	videoSize, err := fileSize(videoPath)
	if err != nil {
		return "", err
	}
	if videoSize <= whisperMaxBytes {
		return s.transcriber.TranscribeFile(ctx, videoPath)
	}

	audioSize, err := fileSize(audioPath)
	if err != nil {
		return "", err
	}
	if audioSize > whisperMaxBytes {
		return "", fmt.Errorf("audio file is %dMB, exceeding the 25MB transcription limit", audioSize/(1024*1024))
	}
	return s.transcriber.TranscribeFile(ctx, audioPath)
}

func (s *service) uploadAudio(ctx context.Context, id snowflake.ID, audioPath string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer file.Close()

	key := fmt.Sprintf("sessions/%s/audio-%s.mp3", id.String(), uuid.NewString())
	url, err := s.blobs.Upload(ctx, key, "audio/mpeg", file)
	if err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}
	return url, nil
}

// generate builds both metadata sets concurrently. Generation always
// runs even when a publish target is disabled: the metadata is part of
// the returned Result, only the upload is toggle-gated.
func (s *service) generate(ctx context.Context, result *Result, transcript string, durationSeconds int) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		meta, err := s.generator.YouTubeMetadata(ctx, transcript, durationSeconds)
		if err != nil {
			return err
		}
		result.YouTubeMetadata = meta
		return nil
	})
	g.Go(func() error {
		notes, err := s.generator.PodcastShowNotes(ctx, transcript, durationSeconds)
		if err != nil {
			return err
		}
		result.PodcastShowNotes = notes
		return nil
	})
	return g.Wait()
}

// publishAll attempts every enabled target and records failures without
// aborting: the targets are independent outlets.
func (s *service) publishAll(ctx context.Context, result *Result, videoPath, audioURL string, log *zap.Logger) {
	if s.videos != nil {
		url, err := s.videos.PublishVideo(ctx, videoPath, result.YouTubeMetadata)
		if err != nil {
			log.Error("youtube publish failed", zap.Error(err))
			result.PublishErrors["youtube"] = err.Error()
			publishFailures.WithLabelValues("youtube").Inc()
		} else {
			result.YouTubeURL = url
		}
	}

	if s.episodes != nil {
		url, err := s.episodes.PublishEpisode(ctx, audioURL, result.PodcastShowNotes)
		if err != nil {
			log.Error("podcast publish failed", zap.Error(err))
			result.PublishErrors["podcast"] = err.Error()
			publishFailures.WithLabelValues("podcast").Inc()
		} else {
			result.PodcastURL = url
		}
	}
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size(), nil
}

// scratchDir tracks temp files created during a run so they are removed
// on every exit path.
type scratchDir struct {
	dir   string
	log   *zap.Logger
	files []string
}

func newScratch(dir string, log *zap.Logger) *scratchDir {
	return &scratchDir{dir: dir, log: log}
}

func (s *scratchDir) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *scratchDir) track(path string) {
	s.files = append(s.files, path)
}

func (s *scratchDir) cleanup() {
	for _, f := range s.files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			s.log.Warn("remove scratch file", zap.String("path", f), zap.Error(err))
		}
	}
}
