package services

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/scenelingo/scenelingo-backend/internal/pkg/errors"
	"github.com/scenelingo/scenelingo-backend/internal/types"
)

var (
	stageDirectionRe = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
	sceneHeadingRe   = regexp.MustCompile(`(?i)^(INT\.|EXT\.|INT/EXT\.|CUT TO:|FADE (IN|OUT)|SCENE \d+)`)
)

// ParseScript normalizes raw script text into dialogue lines: stage
// directions and scene headings dropped, whitespace collapsed, one line
// per dialogue turn.
func ParseScript(script *types.Script) (*types.ParsedScript, error) {
	if script == nil {
		return nil, fmt.Errorf("%w: script required", apperrors.ErrInvalidArgument)
	}
	if strings.TrimSpace(script.Text) == "" {
		return nil, fmt.Errorf("%w: script text empty", apperrors.ErrInvalidArgument)
	}

	var lines []string
	for _, raw := range strings.Split(script.Text, "\n") {
		line := stageDirectionRe.ReplaceAllString(raw, " ")
		line = strings.Join(strings.Fields(line), " ")
		if line == "" || sceneHeadingRe.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: script has no dialogue after cleanup", apperrors.ErrInvalidArgument)
	}

	parsed := &types.ParsedScript{Script: *script, Lines: lines}
	parsed.Text = strings.Join(lines, "\n")
	return parsed, nil
}
