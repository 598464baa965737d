package types

type ScriptSource string

const (
	ScriptSourceService     ScriptSource = "script_service"
	ScriptSourceTranscribed ScriptSource = "transcribed"
)

// Script is the raw episode text the extraction stages consume.
type Script struct {
	TmdbID        string       `json:"tmdb_id"`
	ShowTitle     string       `json:"show_title"`
	SeasonNumber  int          `json:"season_number"`
	EpisodeNumber int          `json:"episode_number"`
	Text          string       `json:"text"`
	Source        ScriptSource `json:"source"`
}

// ParsedScript is the cleaned form produced by the PARSING_SCRIPT stage:
// whitespace collapsed, stage directions stripped, one line per dialogue
// turn.
type ParsedScript struct {
	Script
	Lines []string `json:"lines"`
}
