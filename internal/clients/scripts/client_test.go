package scripts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scenelingo/scenelingo-backend/internal/clients/gcp"
	"github.com/scenelingo/scenelingo-backend/internal/logger"
	apperrors "github.com/scenelingo/scenelingo-backend/internal/pkg/errors"
	"github.com/scenelingo/scenelingo-backend/internal/types"
)

type fakeSpeech struct {
	transcript string
	err        error
	gotHint    string
	gotName    string
	calls      int
}

func (f *fakeSpeech) Transcribe(_ context.Context, _ []byte, filename, promptHint string) (string, error) {
	f.calls++
	f.gotName = filename
	f.gotHint = promptHint
	return f.transcript, f.err
}

func (f *fakeSpeech) Close() error { return nil }

func newTestClient(t *testing.T, baseURL string, speech *fakeSpeech) Client {
	t.Helper()
	t.Setenv("SCRIPT_SERVICE_BASE_URL", baseURL)
	t.Setenv("SCRIPT_SERVICE_RETRY_BASE_MS", "1")
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	var sp gcp.Speech
	if speech != nil {
		sp = speech
	}
	c, err := NewClient(log, sp)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestFetchScriptInlineText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/scripts/search" {
			t.Errorf("path: want=%q got=%q", "/api/v1/scripts/search", r.URL.Path)
		}
		if got := r.URL.Query().Get("tmdb_id"); got != "1396" {
			t.Errorf("tmdb_id: want=%q got=%q", "1396", got)
		}
		if got := r.URL.Query().Get("season"); got != "2" {
			t.Errorf("season: want=%q got=%q", "2", got)
		}
		fmt.Fprint(w, `{"results":[{"show_title":"Breaking Bad","script_text":"WALT: Say my name."}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	script, err := c.FetchScript(context.Background(), "1396", 2, 7)
	if err != nil {
		t.Fatalf("FetchScript: %v", err)
	}
	if script.Source != types.ScriptSourceService {
		t.Errorf("source: want=%q got=%q", types.ScriptSourceService, script.Source)
	}
	if script.Text != "WALT: Say my name." {
		t.Errorf("text: want=%q got=%q", "WALT: Say my name.", script.Text)
	}
	if script.ShowTitle != "Breaking Bad" {
		t.Errorf("show title: want=%q got=%q", "Breaking Bad", script.ShowTitle)
	}
	if script.SeasonNumber != 2 || script.EpisodeNumber != 7 {
		t.Errorf("identity: want=s2e7 got=s%de%d", script.SeasonNumber, script.EpisodeNumber)
	}
}

func TestFetchScriptPageFallback(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/api/v1/scripts/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"results":[{"show_title":"Friends","script_page_url":%q}]}`, srv.URL+"/pages/friends-s01e01")
	})
	mux.HandleFunc("/pages/friends-s01e01", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><style>p{}</style></head><body>
			<div class="scrolling-script-container">
				ROSS:   Hi.

				RACHEL: Oh my god.
			</div></body></html>`)
	})

	c := newTestClient(t, srv.URL, nil)
	script, err := c.FetchScript(context.Background(), "1668", 1, 1)
	if err != nil {
		t.Fatalf("FetchScript: %v", err)
	}
	want := "ROSS: Hi.\nRACHEL: Oh my god."
	if script.Text != want {
		t.Errorf("text: want=%q got=%q", want, script.Text)
	}
	if script.Source != types.ScriptSourceService {
		t.Errorf("source: want=%q got=%q", types.ScriptSourceService, script.Source)
	}
}

func TestFetchScriptAudioTranscriptionFallback(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/api/v1/scripts/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"results":[{"show_title":"Dark","audio_url":%q,"audio_filename":"dark-s01e01.flac"}]}`, srv.URL+"/audio/dark-s01e01.flac")
	})
	mux.HandleFunc("/audio/dark-s01e01.flac", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{0x66, 0x4c, 0x61, 0x43})
	})

	speech := &fakeSpeech{transcript: "Was wir wissen, ist ein Tropfen."}
	c := newTestClient(t, srv.URL, speech)

	script, err := c.FetchScript(context.Background(), "70523", 1, 1)
	if err != nil {
		t.Fatalf("FetchScript: %v", err)
	}
	if script.Source != types.ScriptSourceTranscribed {
		t.Errorf("source: want=%q got=%q", types.ScriptSourceTranscribed, script.Source)
	}
	if script.Text != speech.transcript {
		t.Errorf("text: want=%q got=%q", speech.transcript, script.Text)
	}
	if speech.calls != 1 {
		t.Errorf("transcribe calls: want=1 got=%d", speech.calls)
	}
	if speech.gotHint != "Dark" {
		t.Errorf("prompt hint: want=%q got=%q", "Dark", speech.gotHint)
	}
	if speech.gotName != "dark-s01e01.flac" {
		t.Errorf("filename: want=%q got=%q", "dark-s01e01.flac", speech.gotName)
	}
}

func TestFetchScriptTranscriptionErrorSurfaces(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/api/v1/scripts/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"results":[{"show_title":"Dark","audio_url":%q}]}`, srv.URL+"/audio/clip")
	})
	mux.HandleFunc("/audio/clip", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{0x00})
	})

	speech := &fakeSpeech{err: fmt.Errorf("%w: no speech detected", apperrors.ErrTranscriptionFailed)}
	c := newTestClient(t, srv.URL, speech)

	_, err := c.FetchScript(context.Background(), "70523", 1, 2)
	if !errors.Is(err, apperrors.ErrTranscriptionFailed) {
		t.Fatalf("want ErrTranscriptionFailed, got %v", err)
	}
}

func TestFetchScriptNoSourcesUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"show_title":"Lost"}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	_, err := c.FetchScript(context.Background(), "4607", 1, 1)
	if !errors.Is(err, apperrors.ErrScriptUnavailable) {
		t.Fatalf("want ErrScriptUnavailable, got %v", err)
	}
}

func TestFetchScriptEmptyResultsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	_, err := c.FetchScript(context.Background(), "999999", 1, 1)
	if !errors.Is(err, apperrors.ErrScriptUnavailable) {
		t.Fatalf("want ErrScriptUnavailable, got %v", err)
	}
}

func TestFetchScriptSearch404Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	_, err := c.FetchScript(context.Background(), "1396", 1, 1)
	if !errors.Is(err, apperrors.ErrScriptUnavailable) {
		t.Fatalf("want ErrScriptUnavailable, got %v", err)
	}
}

func TestFetchScriptRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"results":[{"show_title":"Chernobyl","script_text":"What is the cost of lies?"}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	script, err := c.FetchScript(context.Background(), "87108", 1, 1)
	if err != nil {
		t.Fatalf("FetchScript: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts: want=3 got=%d", attempts)
	}
	if script.Text != "What is the cost of lies?" {
		t.Errorf("text: want=%q got=%q", "What is the cost of lies?", script.Text)
	}
}

func TestExtractScriptTextStripsMarkup(t *testing.T) {
	page := []byte(`<html><body>
		<script>var tracking=1;</script>
		<div class="scrolling-script-container">
			Line   one
			Line two
		</div></body></html>`)

	text, err := ExtractScriptText(page)
	if err != nil {
		t.Fatalf("ExtractScriptText: %v", err)
	}
	want := "Line one\nLine two"
	if text != want {
		t.Errorf("text: want=%q got=%q", want, text)
	}
}
