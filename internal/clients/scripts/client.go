package scripts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/scenelingo/scenelingo-backend/internal/clients/gcp"
	"github.com/scenelingo/scenelingo-backend/internal/logger"
	apperrors "github.com/scenelingo/scenelingo-backend/internal/pkg/errors"
	"github.com/scenelingo/scenelingo-backend/internal/pkg/httpx"
	"github.com/scenelingo/scenelingo-backend/internal/types"
)

// Client resolves a show/season/episode identifier to raw script text from
// the external script catalog, falling back to episode audio plus
// transcription when no script exists.
type Client interface {
	FetchScript(ctx context.Context, tmdbID string, season, episode int) (*types.Script, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      httpx.RetryPolicy
	speech     gcp.Speech
}

func NewClient(log *logger.Logger, speech gcp.Speech) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimSpace(os.Getenv("SCRIPT_SERVICE_BASE_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("missing SCRIPT_SERVICE_BASE_URL")
	}

	retry := httpx.DefaultRetryPolicy()
	if v := strings.TrimSpace(os.Getenv("SCRIPT_SERVICE_RETRY_BASE_MS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			retry.BaseDelay = time.Duration(parsed) * time.Millisecond
		}
	}

	return &client{
		log:        log.With("service", "ScriptServiceClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(os.Getenv("SCRIPT_SERVICE_API_KEY")),
		httpClient: &http.Client{Timeout: 55 * time.Second},
		retry:      retry,
		speech:     speech,
	}, nil
}

type httpError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpError) Error() string {
	return fmt.Sprintf("script service http %d: %s", e.StatusCode, e.Body)
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

type searchResult struct {
	ShowTitle     string `json:"show_title"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	ScriptText    string `json:"script_text"`
	ScriptPageURL string `json:"script_page_url"`
	AudioURL      string `json:"audio_url"`
	AudioFilename string `json:"audio_filename"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

func (c *client) FetchScript(ctx context.Context, tmdbID string, season, episode int) (*types.Script, error) {
	q := url.Values{}
	q.Set("tmdb_id", tmdbID)
	q.Set("season", strconv.Itoa(season))
	q.Set("episode", strconv.Itoa(episode))

	var resp searchResponse
	raw, err := c.get(ctx, c.baseURL+"/api/v1/scripts/search?"+q.Encode())
	if err != nil {
		var sc httpx.HTTPStatusCoder
		if errors.As(err, &sc) && sc.HTTPStatusCode() == http.StatusNotFound {
			return nil, fmt.Errorf("%w: episode s%02de%02d of tmdb=%s", apperrors.ErrScriptUnavailable, season, episode, tmdbID)
		}
		return nil, fmt.Errorf("search script: %w", err)
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode script search response: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: no catalog entry for tmdb=%s s%02de%02d", apperrors.ErrScriptUnavailable, tmdbID, season, episode)
	}
	hit := resp.Results[0]

	script := &types.Script{
		TmdbID:        tmdbID,
		ShowTitle:     hit.ShowTitle,
		SeasonNumber:  season,
		EpisodeNumber: episode,
		Source:        types.ScriptSourceService,
	}

	if text := strings.TrimSpace(hit.ScriptText); text != "" {
		script.Text = text
		return script, nil
	}

	if hit.ScriptPageURL != "" {
		text, err := c.fetchScriptPage(ctx, hit.ScriptPageURL)
		if err != nil {
			c.log.Warn("Script page fetch failed, trying audio fallback", "url", hit.ScriptPageURL, "error", err)
		} else if text != "" {
			script.Text = text
			return script, nil
		}
	}

	if hit.AudioURL != "" && c.speech != nil {
		text, err := c.transcribeEpisodeAudio(ctx, hit)
		if err != nil {
			return nil, err
		}
		script.Text = text
		script.Source = types.ScriptSourceTranscribed
		return script, nil
	}

	return nil, fmt.Errorf("%w: no script text, page, or audio for tmdb=%s s%02de%02d", apperrors.ErrScriptUnavailable, tmdbID, season, episode)
}

func (c *client) transcribeEpisodeAudio(ctx context.Context, hit searchResult) (string, error) {
	audio, err := c.get(ctx, hit.AudioURL)
	if err != nil {
		return "", fmt.Errorf("download episode audio: %w", err)
	}
	filename := hit.AudioFilename
	if filename == "" {
		filename = "episode.mp3"
	}
	text, err := c.speech.Transcribe(ctx, audio, filename, hit.ShowTitle)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *client) fetchScriptPage(ctx context.Context, pageURL string) (string, error) {
	raw, err := c.get(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return ExtractScriptText(raw)
}

// ExtractScriptText flattens a script HTML page to plain dialogue text.
func ExtractScriptText(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
	if err != nil {
		return "", fmt.Errorf("parse script page: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	root := doc.Find(".scrolling-script-container")
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	lines := []string{}
	for _, line := range strings.Split(root.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (c *client) get(ctx context.Context, rawURL string) ([]byte, error) {
	var out []byte
	err := httpx.Do(ctx, c.log, "scripts GET "+rawURL, c.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		raw, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return readErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &httpError{
				StatusCode: resp.StatusCode,
				Body:       strings.TrimSpace(string(raw)),
				RetryAfter: httpx.RetryAfterDuration(resp, 0, 10*time.Second),
			}
		}
		out = raw
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
