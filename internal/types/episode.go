package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Episode struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TmdbID        string         `gorm:"column:tmdb_id;not null;index" json:"tmdb_id"`
	ShowTitle     string         `gorm:"column:show_title" json:"show_title"`
	SeasonNumber  int            `gorm:"column:season_number;not null" json:"season_number"`
	EpisodeNumber int            `gorm:"column:episode_number;not null" json:"episode_number"`
	Genre         string         `gorm:"column:genre" json:"genre"`
	ScriptSource  string         `gorm:"column:script_source" json:"script_source"`
	ScriptText    string         `gorm:"column:script_text;type:text" json:"script_text"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Episode) TableName() string { return "episode" }
