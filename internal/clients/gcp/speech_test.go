package gcp

import (
	"testing"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

func TestInferSpeechEncoding(t *testing.T) {
	cases := map[string]speechpb.RecognitionConfig_AudioEncoding{
		"clip.wav":  speechpb.RecognitionConfig_LINEAR16,
		"clip.flac": speechpb.RecognitionConfig_FLAC,
		"clip.MP3":  speechpb.RecognitionConfig_MP3,
		"clip.ogg":  speechpb.RecognitionConfig_OGG_OPUS,
		"clip.bin":  speechpb.RecognitionConfig_ENCODING_UNSPECIFIED,
	}
	for name, want := range cases {
		if got := inferSpeechEncoding(name); got != want {
			t.Fatalf("inferSpeechEncoding(%q): want=%v got=%v", name, want, got)
		}
	}
}

func TestSplitHintPhrases(t *testing.T) {
	got := splitHintPhrases("Breaking Bad, Walter White , ,Jesse")
	want := []string{"Breaking Bad", "Walter White", "Jesse"}
	if len(got) != len(want) {
		t.Fatalf("phrases: want=%d got=%d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("phrase %d: want=%q got=%q", i, want[i], got[i])
		}
	}
}

func TestCollapseTranscript(t *testing.T) {
	resp := &speechpb.LongRunningRecognizeResponse{
		Results: []*speechpb.SpeechRecognitionResult{
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: " I am the one who knocks. "}}},
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: ""}}},
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "Say my name."}}},
		},
	}
	got := collapseTranscript(resp)
	want := "I am the one who knocks. Say my name."
	if got != want {
		t.Fatalf("transcript: want=%q got=%q", want, got)
	}
	if collapseTranscript(nil) != "" {
		t.Fatalf("nil response should collapse to empty transcript")
	}
}
