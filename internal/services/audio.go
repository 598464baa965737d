package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/scenelingo/scenelingo-backend/internal/clients/openai"
	"github.com/scenelingo/scenelingo-backend/internal/logger"
	"github.com/scenelingo/scenelingo-backend/internal/storage"
)

// AudioSynthesizer produces pronunciation clips for lesson items and
// attaches the uploaded clip URLs in place.
type AudioSynthesizer interface {
	// SynthesizeItem renders text to speech, uploads the clip under the
	// episode's audio prefix, and returns its public URL.
	SynthesizeItem(ctx context.Context, episodeID uuid.UUID, text string) (string, error)
}

type audioSynthesizer struct {
	log    *logger.Logger
	client openai.Client
	store  storage.ObjectStore
}

func NewAudioSynthesizer(log *logger.Logger, client openai.Client, store storage.ObjectStore) AudioSynthesizer {
	return &audioSynthesizer{
		log:    log.With("service", "AudioSynthesizer"),
		client: client,
		store:  store,
	}
}

func (s *audioSynthesizer) SynthesizeItem(ctx context.Context, episodeID uuid.UUID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty text for audio synthesis")
	}

	clip, err := s.client.SynthesizeSpeech(ctx, text)
	if err != nil {
		return "", fmt.Errorf("synthesize %q: %w", text, err)
	}

	// Deterministic key per episode+text, so regenerating a lesson
	// overwrites the same object instead of leaking orphans.
	key := fmt.Sprintf("episodes/%s/audio/%s.mp3", episodeID, slugify(text))
	url, err := s.store.Upload(ctx, key, clip, "audio/mpeg")
	if err != nil {
		return "", fmt.Errorf("upload clip %s: %w", key, err)
	}
	return url, nil
}

// slugify reduces item text to a filesystem and URL safe key segment.
func slugify(text string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "item"
	}
	if len(slug) > 64 {
		slug = strings.Trim(slug[:64], "-")
	}
	return slug
}
