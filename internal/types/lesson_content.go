package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VocabularyItem struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EpisodeID uuid.UUID      `gorm:"type:uuid;not null;index" json:"episode_id"`
	Term      string         `gorm:"column:term;not null" json:"term"`
	Meaning   string         `gorm:"column:meaning;type:text" json:"meaning"`
	Example   string         `gorm:"column:example;type:text" json:"example"`
	Level     string         `gorm:"column:level" json:"level"`
	AudioURL  string         `gorm:"column:audio_url" json:"audio_url,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (VocabularyItem) TableName() string { return "vocabulary_item" }

type GrammarPoint struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EpisodeID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"episode_id"`
	Pattern     string         `gorm:"column:pattern;not null" json:"pattern"`
	Explanation string         `gorm:"column:explanation;type:text" json:"explanation"`
	Example     string         `gorm:"column:example;type:text" json:"example"`
	Level       string         `gorm:"column:level" json:"level"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (GrammarPoint) TableName() string { return "grammar_point" }

type Expression struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EpisodeID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"episode_id"`
	Expression string         `gorm:"column:expression;not null" json:"expression"`
	Meaning    string         `gorm:"column:meaning;type:text" json:"meaning"`
	Context    string         `gorm:"column:context;type:text" json:"context"`
	AudioURL   string         `gorm:"column:audio_url" json:"audio_url,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Expression) TableName() string { return "expression" }

type Exercise struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EpisodeID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"episode_id"`
	Type          string         `gorm:"column:type;not null;index" json:"type"`
	Question      string         `gorm:"column:question;type:text;not null" json:"question"`
	Options       datatypes.JSON `gorm:"type:jsonb;column:options" json:"options,omitempty"`
	CorrectAnswer string         `gorm:"column:correct_answer" json:"correct_answer,omitempty"`
	MatchingPairs datatypes.JSON `gorm:"type:jsonb;column:matching_pairs" json:"matching_pairs,omitempty"`
	Points        int            `gorm:"column:points;not null" json:"points"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Exercise) TableName() string { return "exercise" }
