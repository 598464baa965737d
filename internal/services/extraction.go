package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scenelingo/scenelingo-backend/internal/clients/openai"
	"github.com/scenelingo/scenelingo-backend/internal/logger"
	"github.com/scenelingo/scenelingo-backend/internal/types"
)

// ContentExtractor runs the model-backed extraction stages over a parsed
// script. Each method is one pipeline stage and returns typed records
// ready for audio synthesis and persistence.
type ContentExtractor interface {
	ExtractVocabulary(ctx context.Context, script *types.ParsedScript) ([]types.ExtractedVocabulary, error)
	ExtractGrammar(ctx context.Context, script *types.ParsedScript) ([]types.ExtractedGrammar, error)
	ExtractExpressions(ctx context.Context, script *types.ParsedScript) ([]types.ExtractedExpression, error)
	GenerateExercises(ctx context.Context, script *types.ParsedScript, lesson *types.GeneratedLesson) ([]types.GeneratedExercise, error)
}

type contentExtractor struct {
	log    *logger.Logger
	client openai.Client
}

func NewContentExtractor(log *logger.Logger, client openai.Client) ContentExtractor {
	return &contentExtractor{
		log:    log.With("service", "ContentExtractor"),
		client: client,
	}
}

// maxScriptChars bounds the script excerpt handed to the model so a full
// feature-length transcript stays inside the context window.
const maxScriptChars = 24000

func scriptExcerpt(script *types.ParsedScript) string {
	text := script.Text
	if len(text) > maxScriptChars {
		text = text[:maxScriptChars]
		if idx := strings.LastIndexByte(text, '\n'); idx > 0 {
			text = text[:idx]
		}
	}
	return text
}

const extractionSystemPrompt = "You are a language-learning content designer. " +
	"You read TV episode dialogue and produce study material for learners. " +
	"Use only language that actually appears in the dialogue."

func (s *contentExtractor) extract(ctx context.Context, script *types.ParsedScript, task, schemaName string, schema map[string]any, out any) error {
	user := fmt.Sprintf("Show: %s (season %d, episode %d)\n\nTask: %s\n\nDialogue:\n%s",
		script.ShowTitle, script.SeasonNumber, script.EpisodeNumber, task, scriptExcerpt(script))

	payload, err := s.client.GenerateJSON(ctx, extractionSystemPrompt, user, schemaName, schema)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("re-encode %s payload: %w", schemaName, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", schemaName, err)
	}
	return nil
}

func stringArraySchema() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

func objectSchema(properties map[string]any, required []string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func arraySchema(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

func (s *contentExtractor) ExtractVocabulary(ctx context.Context, script *types.ParsedScript) ([]types.ExtractedVocabulary, error) {
	schema := objectSchema(map[string]any{
		"vocabulary": arraySchema(objectSchema(map[string]any{
			"term":    map[string]any{"type": "string"},
			"meaning": map[string]any{"type": "string"},
			"example": map[string]any{"type": "string"},
			"level":   map[string]any{"type": "string", "enum": []string{"A1", "A2", "B1", "B2", "C1", "C2"}},
		}, []string{"term", "meaning", "example", "level"})),
	}, []string{"vocabulary"})

	var decoded struct {
		Vocabulary []types.ExtractedVocabulary `json:"vocabulary"`
	}
	task := "Pick 8-15 vocabulary words a learner should study from this episode. " +
		"For each give its meaning, an example sentence taken from the dialogue, and a CEFR level."
	if err := s.extract(ctx, script, task, "vocabulary_extraction", schema, &decoded); err != nil {
		return nil, err
	}

	items := decoded.Vocabulary[:0]
	for _, item := range decoded.Vocabulary {
		if strings.TrimSpace(item.Term) == "" {
			continue
		}
		item.NeedsAudio = true
		items = append(items, item)
	}
	s.log.Info("Vocabulary extracted", "count", len(items))
	return items, nil
}

func (s *contentExtractor) ExtractGrammar(ctx context.Context, script *types.ParsedScript) ([]types.ExtractedGrammar, error) {
	schema := objectSchema(map[string]any{
		"grammar": arraySchema(objectSchema(map[string]any{
			"pattern":     map[string]any{"type": "string"},
			"explanation": map[string]any{"type": "string"},
			"example":     map[string]any{"type": "string"},
			"level":       map[string]any{"type": "string", "enum": []string{"A1", "A2", "B1", "B2", "C1", "C2"}},
		}, []string{"pattern", "explanation", "example", "level"})),
	}, []string{"grammar"})

	var decoded struct {
		Grammar []types.ExtractedGrammar `json:"grammar"`
	}
	task := "Identify 3-8 grammar patterns used in this dialogue worth teaching. " +
		"For each give the pattern, a short explanation, an example line from the dialogue, and a CEFR level."
	if err := s.extract(ctx, script, task, "grammar_extraction", schema, &decoded); err != nil {
		return nil, err
	}

	points := decoded.Grammar[:0]
	for _, point := range decoded.Grammar {
		if strings.TrimSpace(point.Pattern) == "" {
			continue
		}
		points = append(points, point)
	}
	s.log.Info("Grammar points extracted", "count", len(points))
	return points, nil
}

func (s *contentExtractor) ExtractExpressions(ctx context.Context, script *types.ParsedScript) ([]types.ExtractedExpression, error) {
	schema := objectSchema(map[string]any{
		"expressions": arraySchema(objectSchema(map[string]any{
			"expression": map[string]any{"type": "string"},
			"meaning":    map[string]any{"type": "string"},
			"context":    map[string]any{"type": "string"},
		}, []string{"expression", "meaning", "context"})),
	}, []string{"expressions"})

	var decoded struct {
		Expressions []types.ExtractedExpression `json:"expressions"`
	}
	task := "Find 3-10 idioms, phrasal verbs, or colloquial expressions in this dialogue. " +
		"For each give its meaning and the scene context it was used in."
	if err := s.extract(ctx, script, task, "expression_extraction", schema, &decoded); err != nil {
		return nil, err
	}

	expressions := decoded.Expressions[:0]
	for _, expression := range decoded.Expressions {
		if strings.TrimSpace(expression.Expression) == "" {
			continue
		}
		expression.NeedsAudio = true
		expressions = append(expressions, expression)
	}
	s.log.Info("Expressions extracted", "count", len(expressions))
	return expressions, nil
}

func (s *contentExtractor) GenerateExercises(ctx context.Context, script *types.ParsedScript, lesson *types.GeneratedLesson) ([]types.GeneratedExercise, error) {
	schema := objectSchema(map[string]any{
		"exercises": arraySchema(objectSchema(map[string]any{
			"type":           map[string]any{"type": "string", "enum": []string{"multiple_choice", "matching"}},
			"question":       map[string]any{"type": "string"},
			"options":        stringArraySchema(),
			"correct_answer": map[string]any{"type": "string"},
			"matching_pairs": arraySchema(objectSchema(map[string]any{
				"left":  map[string]any{"type": "string"},
				"right": map[string]any{"type": "string"},
			}, []string{"left", "right"})),
			"points": map[string]any{"type": "integer"},
		}, []string{"type", "question", "options", "correct_answer", "matching_pairs", "points"})),
	}, []string{"exercises"})

	var material strings.Builder
	for _, v := range lesson.Vocabulary {
		fmt.Fprintf(&material, "vocabulary: %s = %s\n", v.Term, v.Meaning)
	}
	for _, e := range lesson.Expressions {
		fmt.Fprintf(&material, "expression: %s = %s\n", e.Expression, e.Meaning)
	}
	for _, g := range lesson.Grammar {
		fmt.Fprintf(&material, "grammar: %s\n", g.Pattern)
	}

	var decoded struct {
		Exercises []types.GeneratedExercise `json:"exercises"`
	}
	task := "Create 4-8 exercises testing the study material below. " +
		"multiple_choice exercises need 3-4 options with correct_answer among them and empty matching_pairs; " +
		"matching exercises need matching_pairs and empty options. " +
		"Assign each exercise a point value.\n\nStudy material:\n" + material.String()
	if err := s.extract(ctx, script, task, "exercise_generation", schema, &decoded); err != nil {
		return nil, err
	}

	exercises := decoded.Exercises[:0]
	for _, exercise := range decoded.Exercises {
		if err := validateExercise(exercise); err != nil {
			s.log.Warn("Dropping malformed exercise", "question", exercise.Question, "error", err)
			continue
		}
		if exercise.Points <= 0 {
			exercise.Points = 10
		}
		exercises = append(exercises, exercise)
	}
	s.log.Info("Exercises generated", "count", len(exercises))
	return exercises, nil
}

func validateExercise(exercise types.GeneratedExercise) error {
	if strings.TrimSpace(exercise.Question) == "" {
		return fmt.Errorf("empty question")
	}
	switch exercise.Type {
	case types.ExerciseTypeMultipleChoice:
		if len(exercise.Options) < 2 {
			return fmt.Errorf("multiple_choice needs at least 2 options, got %d", len(exercise.Options))
		}
		if exercise.CorrectAnswer == "" {
			return fmt.Errorf("multiple_choice needs a correct answer")
		}
		found := false
		for _, option := range exercise.Options {
			if option == exercise.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("correct answer %q is not among the options", exercise.CorrectAnswer)
		}
	case types.ExerciseTypeMatching:
		if len(exercise.MatchingPairs) == 0 {
			return fmt.Errorf("matching needs at least one pair")
		}
		for _, pair := range exercise.MatchingPairs {
			if pair.Left == "" || pair.Right == "" {
				return fmt.Errorf("matching pair has an empty side")
			}
		}
	default:
		return fmt.Errorf("unknown exercise type %q", exercise.Type)
	}
	return nil
}
