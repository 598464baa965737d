package gcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/scenelingo/scenelingo-backend/internal/logger"
	apperrors "github.com/scenelingo/scenelingo-backend/internal/pkg/errors"
)

// Speech converts an audio clip to text. The promptHint is a short
// domain-vocabulary string (show title, character names) mapped to a
// recognition phrase list.
type Speech interface {
	Transcribe(ctx context.Context, audio []byte, filename string, promptHint string) (string, error)
	Close() error
}

type speechService struct {
	log          *logger.Logger
	client       *speech.Client
	languageCode string
	maxRetries   int
}

func NewSpeech(log *logger.Logger) (Speech, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.Speech")

	c, err := speech.NewClient(context.Background(), ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}

	lang := "en-US"
	if v := strings.TrimSpace(os.Getenv("SPEECH_LANGUAGE_CODE")); v != "" {
		lang = v
	}

	return &speechService{
		log:          slog,
		client:       c,
		languageCode: lang,
		maxRetries:   3,
	}, nil
}

func (s *speechService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *speechService) Transcribe(ctx context.Context, audio []byte, filename string, promptHint string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	if len(audio) == 0 {
		return "", fmt.Errorf("%w: empty audio clip", apperrors.ErrTranscriptionFailed)
	}

	rcfg := &speechpb.RecognitionConfig{
		LanguageCode:               s.languageCode,
		EnableAutomaticPunctuation: true,
		Encoding:                   inferSpeechEncoding(filename),
	}
	if hint := strings.TrimSpace(promptHint); hint != "" {
		rcfg.SpeechContexts = []*speechpb.SpeechContext{
			{Phrases: splitHintPhrases(hint)},
		}
	}

	req := &speechpb.LongRunningRecognizeRequest{
		Config: rcfg,
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: audio}},
	}

	resp, err := s.retryLR(ctx, func() (*speechpb.LongRunningRecognizeResponse, error) {
		op, err := s.client.LongRunningRecognize(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	})
	if err != nil {
		return "", fmt.Errorf("speech longrunningrecognize: %w", err)
	}

	text := collapseTranscript(resp)
	if text == "" {
		return "", fmt.Errorf("%w: no transcript in response for %q", apperrors.ErrTranscriptionFailed, filename)
	}
	return text, nil
}

func splitHintPhrases(hint string) []string {
	parts := strings.Split(hint, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func inferSpeechEncoding(filename string) speechpb.RecognitionConfig_AudioEncoding {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		return speechpb.RecognitionConfig_LINEAR16
	case ".flac":
		return speechpb.RecognitionConfig_FLAC
	case ".mp3":
		return speechpb.RecognitionConfig_MP3
	case ".ogg", ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

func collapseTranscript(resp *speechpb.LongRunningRecognizeResponse) string {
	if resp == nil {
		return ""
	}
	var full strings.Builder
	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		t := strings.TrimSpace(r.Alternatives[0].Transcript)
		if t == "" {
			continue
		}
		if full.Len() > 0 {
			full.WriteString(" ")
		}
		full.WriteString(t)
	}
	return strings.TrimSpace(full.String())
}

func (s *speechService) retryLR(ctx context.Context, fn func() (*speechpb.LongRunningRecognizeResponse, error)) (*speechpb.LongRunningRecognizeResponse, error) {
	backoff := 750 * time.Millisecond
	var last error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		if attempt == s.maxRetries {
			break
		}
		s.log.Warn("Speech request retrying", "attempt", attempt+1, "max_retries", s.maxRetries, "error", err.Error())
		time.Sleep(backoff)
		backoff *= 2
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return nil, last
}
