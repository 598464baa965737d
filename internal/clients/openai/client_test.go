package openai

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scenelingo/scenelingo-backend/internal/logger"
	"github.com/scenelingo/scenelingo-backend/internal/pkg/httpx"
)

func newTestClient(t *testing.T, baseURL string) Client {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", baseURL)
	t.Setenv("OPENAI_RETRY_BASE_MS", "5")
	t.Setenv("OPENAI_MAX_RETRIES", "3")
	t.Setenv("OPENAI_TIMEOUT_SECONDS", "5")

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	c, err := NewClient(log)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func responsesPayload(t *testing.T, text string) []byte {
	t.Helper()
	payload := map[string]any{
		"output": []map[string]any{
			{
				"type": "message",
				"role": "assistant",
				"content": []map[string]any{
					{"type": "output_text", "text": text},
				},
			},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return raw
}

func TestGenerateJSONRetriesTransientFailures(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(responsesPayload(t, `{"items":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	obj, err := c.GenerateJSON(t.Context(), "system", "user", "items", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts: want=3 got=%d", attempts)
	}
	if _, ok := obj["items"]; !ok {
		t.Fatalf("decoded object missing items: %v", obj)
	}
}

func TestGenerateJSONPermanentErrorNotRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "no such model", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.GenerateJSON(t.Context(), "system", "user", "items", map[string]any{"type": "object"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if attempts != 1 {
		t.Fatalf("attempts: want=1 got=%d", attempts)
	}
	var sc httpx.HTTPStatusCoder
	if !errors.As(err, &sc) || sc.HTTPStatusCode() != http.StatusNotFound {
		t.Fatalf("error should carry status 404, got %v", err)
	}
}

func TestGenerateJSONExhaustsRetryBudget(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.GenerateJSON(t.Context(), "system", "user", "items", map[string]any{"type": "object"})
	if err == nil {
		t.Fatalf("expected error after exhaustion")
	}
	if attempts != 4 {
		t.Fatalf("attempts: want=4 got=%d", attempts)
	}
}

func TestGenerateJSONRequiresSchema(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid")
	if _, err := c.GenerateJSON(t.Context(), "s", "u", "", map[string]any{}); err == nil {
		t.Fatalf("expected schemaName error")
	}
	if _, err := c.GenerateJSON(t.Context(), "s", "u", "name", nil); err == nil {
		t.Fatalf("expected schema error")
	}
}

func TestSynthesizeSpeechReturnsAudioBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("path: want=/v1/audio/speech got=%s", r.URL.Path)
		}
		var req speechRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat != "mp3" {
			t.Errorf("response_format: want=mp3 got=%s", req.ResponseFormat)
		}
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	audio, err := c.SynthesizeSpeech(t.Context(), "hello there")
	if err != nil {
		t.Fatalf("SynthesizeSpeech: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Fatalf("audio: want=%q got=%q", "mp3-bytes", string(audio))
	}
}

func TestSynthesizeSpeechRejectsEmptyText(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid")
	if _, err := c.SynthesizeSpeech(t.Context(), "   "); err == nil {
		t.Fatalf("expected error for empty text")
	}
}
