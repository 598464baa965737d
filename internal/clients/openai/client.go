package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/scenelingo/scenelingo-backend/internal/logger"
	"github.com/scenelingo/scenelingo-backend/internal/pkg/httpx"
)

// Client is the generation backend used by the extraction and audio
// synthesis stages.
type Client interface {
	// GenerateJSON runs a structured-output (json_schema) generation.
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
	// SynthesizeSpeech converts text to mp3 bytes.
	SynthesizeSpeech(ctx context.Context, text string) ([]byte, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	ttsModel   string
	ttsVoice   string
	ttsSpeed   float64
	httpClient *http.Client
	retry      httpx.RetryPolicy
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = "gpt-4o-mini"
	}
	ttsModel := strings.TrimSpace(os.Getenv("OPENAI_TTS_MODEL"))
	if ttsModel == "" {
		ttsModel = "tts-1"
	}
	ttsVoice := strings.TrimSpace(os.Getenv("OPENAI_TTS_VOICE"))
	if ttsVoice == "" {
		ttsVoice = "alloy"
	}
	ttsSpeed := 1.0
	if v := strings.TrimSpace(os.Getenv("OPENAI_TTS_SPEED")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			ttsSpeed = f
		}
	}

	retry := httpx.DefaultRetryPolicy()
	if v := strings.TrimSpace(os.Getenv("OPENAI_MAX_RETRIES")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			retry.MaxRetries = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_RETRY_BASE_MS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			retry.BaseDelay = time.Duration(parsed) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			retry.Timeout = time.Duration(parsed) * time.Second
		}
	}

	return &client{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		ttsModel:   ttsModel,
		ttsVoice:   ttsVoice,
		ttsSpeed:   ttsSpeed,
		httpClient: &http.Client{Timeout: 55 * time.Second},
		retry:      retry,
	}, nil
}

type httpError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *httpError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (e *httpError) RetryAfterHint() time.Duration {
	if e == nil {
		return 0
	}
	return e.RetryAfter
}

func (c *client) doOnce(ctx context.Context, path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpError{
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			RetryAfter: httpx.RetryAfterDuration(resp, 0, 10*time.Second),
		}
	}
	return raw, nil
}

func (c *client) do(ctx context.Context, path string, body any, out any) error {
	return httpx.Do(ctx, c.log, "openai"+path, c.retry, func(ctx context.Context) error {
		raw, err := c.doOnce(ctx, path, body)
		if err != nil {
			return err
		}
		if out == nil {
			return nil
		}
		if uErr := json.Unmarshal(raw, out); uErr != nil {
			return fmt.Errorf("openai decode error: %w; raw=%s", uErr, string(raw))
		}
		return nil
	})
}

type responsesRequest struct {
	Model string `json:"model"`
	Input []struct {
		Role    string `json:"role"`
		Content any    `json:"content"`
	} `json:"input"`
	Text struct {
		Format map[string]any `json:"format,omitempty"`
	} `json:"text,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					out.WriteString(c.Text)
				}
			}
		}
	}
	return out.String()
}

func (c *client) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	if schemaName == "" {
		return nil, errors.New("schemaName required")
	}
	if schema == nil {
		return nil, errors.New("schema required")
	}

	req := responsesRequest{
		Model: c.model,
		Input: []struct {
			Role    string `json:"role"`
			Content any    `json:"content"`
		}{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	req.Text.Format = map[string]any{
		"type":   "json_schema",
		"name":   schemaName,
		"schema": schema,
		"strict": true,
	}

	var resp responsesResponse
	if err := c.do(ctx, "/v1/responses", &req, &resp); err != nil {
		return nil, err
	}
	if resp.Refusal != "" {
		return nil, fmt.Errorf("model refused: %s", resp.Refusal)
	}

	jsonText := extractOutputText(resp)
	if strings.TrimSpace(jsonText) == "" {
		return nil, fmt.Errorf("no output_text found in response")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(jsonText), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w; text=%s", err, jsonText)
	}
	return obj, nil
}

type speechRequest struct {
	Model          string  `json:"model"`
	Voice          string  `json:"voice"`
	Input          string  `json:"input"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed,omitempty"`
}

func (c *client) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text required")
	}

	req := speechRequest{
		Model:          c.ttsModel,
		Voice:          c.ttsVoice,
		Input:          text,
		ResponseFormat: "mp3",
		Speed:          c.ttsSpeed,
	}

	var audio []byte
	err := httpx.Do(ctx, c.log, "openai/v1/audio/speech", c.retry, func(ctx context.Context) error {
		raw, err := c.doOnce(ctx, "/v1/audio/speech", &req)
		if err != nil {
			return err
		}
		audio = raw
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, errors.New("empty audio in response")
	}
	return audio, nil
}
