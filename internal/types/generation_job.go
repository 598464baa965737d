package types

import (
	"time"

	"github.com/google/uuid"
)

type GenerationStatus string

const (
	GenerationStatusPending   GenerationStatus = "pending"
	GenerationStatusRunning   GenerationStatus = "running"
	GenerationStatusCompleted GenerationStatus = "completed"
	GenerationStatusFailed    GenerationStatus = "failed"
)

// GenerationJob is the poll-visible snapshot of one lesson-generation run.
// It is an immutable value: every transition builds a new record and the
// job store replaces the old one wholesale.
type GenerationJob struct {
	ID           uuid.UUID        `json:"id"`
	Status       GenerationStatus `json:"status"`
	Progress     int              `json:"progress"`
	CurrentStep  string           `json:"current_step,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	EpisodeID    *uuid.UUID       `json:"episode_id,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

func (j GenerationJob) Terminal() bool {
	return j.Status == GenerationStatusCompleted || j.Status == GenerationStatusFailed
}

// GenerateLessonCommand starts one generation run.
type GenerateLessonCommand struct {
	TmdbID        string `json:"tmdb_id"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	Genre         string `json:"genre"`
}
