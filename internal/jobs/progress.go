package jobs

// ProgressStep is one member of the fixed pipeline sequence. Percentages
// are design constants, not measurements; the orchestrator reads percent
// and description together so a poller never sees them disagree.
type ProgressStep struct {
	Name        string
	Percent     int
	Description string
}

var (
	StepFetchingScript        = ProgressStep{Name: "FETCHING_SCRIPT", Percent: 10, Description: "Fetching episode script"}
	StepParsingScript         = ProgressStep{Name: "PARSING_SCRIPT", Percent: 20, Description: "Parsing script"}
	StepExtractingVocabulary  = ProgressStep{Name: "EXTRACTING_VOCABULARY", Percent: 35, Description: "Extracting vocabulary"}
	StepExtractingGrammar     = ProgressStep{Name: "EXTRACTING_GRAMMAR", Percent: 50, Description: "Extracting grammar points"}
	StepExtractingExpressions = ProgressStep{Name: "EXTRACTING_EXPRESSIONS", Percent: 65, Description: "Extracting expressions"}
	StepGeneratingExercises   = ProgressStep{Name: "GENERATING_EXERCISES", Percent: 80, Description: "Generating exercises"}
	StepSaving                = ProgressStep{Name: "SAVING", Percent: 90, Description: "Saving lesson content"}
	StepCompleted             = ProgressStep{Name: "COMPLETED", Percent: 100, Description: "Completed"}
)

// Steps is the full pipeline order. Every job walks it front to back with
// no skipping and no branching.
var Steps = []ProgressStep{
	StepFetchingScript,
	StepParsingScript,
	StepExtractingVocabulary,
	StepExtractingGrammar,
	StepExtractingExpressions,
	StepGeneratingExercises,
	StepSaving,
	StepCompleted,
}

// StepByName looks a step up in the static table.
func StepByName(name string) (ProgressStep, bool) {
	for _, s := range Steps {
		if s.Name == name {
			return s, true
		}
	}
	return ProgressStep{}, false
}
