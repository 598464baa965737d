package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/scenelingo/scenelingo-backend/internal/logger"
)

type fakeTTSClient struct {
	clip []byte
}

func (f *fakeTTSClient) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	return map[string]any{}, nil
}

func (f *fakeTTSClient) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	return f.clip, nil
}

type fakeObjectStore struct {
	lastKey         string
	lastContentType string
	lastData        []byte
}

func (f *fakeObjectStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.lastKey = key
	f.lastContentType = contentType
	f.lastData = data
	return "https://media.test/" + key, nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error { return nil }

func (f *fakeObjectStore) GetPublicURL(key string) string { return "https://media.test/" + key }

func TestSynthesizeItemKeyAndURL(t *testing.T) {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	store := &fakeObjectStore{}
	synth := NewAudioSynthesizer(log, &fakeTTSClient{clip: []byte("mp3-bytes")}, store)

	episodeID := uuid.MustParse("b2f3a1de-4c5b-4a6f-9e8d-0123456789ab")
	url, err := synth.SynthesizeItem(context.Background(), episodeID, "Cost of Lies!")
	if err != nil {
		t.Fatalf("SynthesizeItem: %v", err)
	}

	wantKey := "episodes/b2f3a1de-4c5b-4a6f-9e8d-0123456789ab/audio/cost-of-lies.mp3"
	if store.lastKey != wantKey {
		t.Errorf("key: want=%q got=%q", wantKey, store.lastKey)
	}
	if store.lastContentType != "audio/mpeg" {
		t.Errorf("content type: want=%q got=%q", "audio/mpeg", store.lastContentType)
	}
	if string(store.lastData) != "mp3-bytes" {
		t.Errorf("uploaded bytes: want=%q got=%q", "mp3-bytes", store.lastData)
	}
	if url != "https://media.test/"+wantKey {
		t.Errorf("url: want=%q got=%q", "https://media.test/"+wantKey, url)
	}
}

func TestSynthesizeItemEmptyText(t *testing.T) {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	synth := NewAudioSynthesizer(log, &fakeTTSClient{}, &fakeObjectStore{})

	if _, err := synth.SynthesizeItem(context.Background(), uuid.New(), "   "); err == nil {
		t.Fatal("want error for empty text")
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"reactor", "reactor"},
		{"Cost of Lies!", "cost-of-lies"},
		{"  break a leg  ", "break-a-leg"},
		{"C'est la vie", "c-est-la-vie"},
		{"!!!", "item"},
	}
	for _, tc := range cases {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}
