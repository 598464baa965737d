package services

import (
	"errors"
	"testing"

	apperrors "github.com/scenelingo/scenelingo-backend/internal/pkg/errors"
	"github.com/scenelingo/scenelingo-backend/internal/types"
)

func TestParseScriptStripsDirectionsAndHeadings(t *testing.T) {
	script := &types.Script{
		ShowTitle: "Friends",
		Text: "INT. CENTRAL PERK - DAY\n" +
			"ROSS:   Hi.   \n" +
			"(they hug)\n" +
			"RACHEL: [gasps] Oh my   god.\n" +
			"\n" +
			"CUT TO:\n" +
			"MONICA: Welcome back.",
	}

	parsed, err := ParseScript(script)
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}

	want := []string{"ROSS: Hi.", "RACHEL: Oh my god.", "MONICA: Welcome back."}
	if len(parsed.Lines) != len(want) {
		t.Fatalf("lines: want=%d got=%d (%q)", len(want), len(parsed.Lines), parsed.Lines)
	}
	for i := range want {
		if parsed.Lines[i] != want[i] {
			t.Errorf("line %d: want=%q got=%q", i, want[i], parsed.Lines[i])
		}
	}
	if parsed.Text != "ROSS: Hi.\nRACHEL: Oh my god.\nMONICA: Welcome back." {
		t.Errorf("text rebuilt wrong: %q", parsed.Text)
	}
	if parsed.ShowTitle != "Friends" {
		t.Errorf("identity lost: show=%q", parsed.ShowTitle)
	}
}

func TestParseScriptEmptyText(t *testing.T) {
	_, err := ParseScript(&types.Script{Text: "   \n  "})
	if !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestParseScriptOnlyDirections(t *testing.T) {
	_, err := ParseScript(&types.Script{Text: "(music swells)\n[explosion]\nINT. LAB - NIGHT"})
	if !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestParseScriptNil(t *testing.T) {
	_, err := ParseScript(nil)
	if !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}
