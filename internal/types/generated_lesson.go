package types

// Extracted content records are value objects: they carry no identity until
// the SAVING stage persists them.

type ExtractedVocabulary struct {
	Term        string `json:"term"`
	Meaning     string `json:"meaning"`
	Example     string `json:"example"`
	Level       string `json:"level"`
	AudioURL    string `json:"audio_url,omitempty"`
	NeedsAudio  bool   `json:"-"`
}

type ExtractedGrammar struct {
	Pattern     string `json:"pattern"`
	Explanation string `json:"explanation"`
	Example     string `json:"example"`
	Level       string `json:"level"`
}

type ExtractedExpression struct {
	Expression string `json:"expression"`
	Meaning    string `json:"meaning"`
	Context    string `json:"context"`
	AudioURL   string `json:"audio_url,omitempty"`
	NeedsAudio bool   `json:"-"`
}

type ExerciseType string

const (
	ExerciseTypeMultipleChoice ExerciseType = "multiple_choice"
	ExerciseTypeMatching       ExerciseType = "matching"
)

type MatchingPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// GeneratedExercise is discriminated by Type: multiple_choice carries
// Options+CorrectAnswer, matching carries MatchingPairs.
type GeneratedExercise struct {
	Type          ExerciseType   `json:"type"`
	Question      string         `json:"question"`
	Options       []string       `json:"options,omitempty"`
	CorrectAnswer string         `json:"correct_answer,omitempty"`
	MatchingPairs []MatchingPair `json:"matching_pairs,omitempty"`
	Points        int            `json:"points"`
}

// GeneratedLesson aggregates every extraction stage's output for one
// episode. It is handed to persistence whole at the SAVING stage.
type GeneratedLesson struct {
	Script      ParsedScript          `json:"script"`
	Vocabulary  []ExtractedVocabulary `json:"vocabulary"`
	Grammar     []ExtractedGrammar    `json:"grammar"`
	Expressions []ExtractedExpression `json:"expressions"`
	Exercises   []GeneratedExercise   `json:"exercises"`
}
