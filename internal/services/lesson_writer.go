package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/scenelingo/scenelingo-backend/internal/logger"
	apperrors "github.com/scenelingo/scenelingo-backend/internal/pkg/errors"
	"github.com/scenelingo/scenelingo-backend/internal/repos"
	"github.com/scenelingo/scenelingo-backend/internal/types"
)

// LessonWriter persists one generated lesson atomically. Regenerating an
// episode replaces its previous content rows inside the same transaction.
type LessonWriter interface {
	// ResolveEpisodeID returns the existing episode's id for this identity,
	// or mints a fresh one. Audio clips are keyed by episode id, so the id
	// must be fixed before synthesis starts.
	ResolveEpisodeID(ctx context.Context, cmd types.GenerateLessonCommand) (uuid.UUID, error)
	SaveLesson(ctx context.Context, cmd types.GenerateLessonCommand, episodeID uuid.UUID, lesson *types.GeneratedLesson) (*types.Episode, error)
}

type lessonWriter struct {
	db  *gorm.DB
	log *logger.Logger

	episodeRepo        repos.EpisodeRepo
	vocabularyItemRepo repos.VocabularyItemRepo
	grammarPointRepo   repos.GrammarPointRepo
	expressionRepo     repos.ExpressionRepo
	exerciseRepo       repos.ExerciseRepo
}

func NewLessonWriter(
	db *gorm.DB,
	baseLog *logger.Logger,
	episodeRepo repos.EpisodeRepo,
	vocabularyItemRepo repos.VocabularyItemRepo,
	grammarPointRepo repos.GrammarPointRepo,
	expressionRepo repos.ExpressionRepo,
	exerciseRepo repos.ExerciseRepo,
) LessonWriter {
	return &lessonWriter{
		db:                 db,
		log:                baseLog.With("service", "LessonWriter"),
		episodeRepo:        episodeRepo,
		vocabularyItemRepo: vocabularyItemRepo,
		grammarPointRepo:   grammarPointRepo,
		expressionRepo:     expressionRepo,
		exerciseRepo:       exerciseRepo,
	}
}

func (s *lessonWriter) ResolveEpisodeID(ctx context.Context, cmd types.GenerateLessonCommand) (uuid.UUID, error) {
	existing, err := s.episodeRepo.GetByIdentity(ctx, nil, cmd.TmdbID, cmd.SeasonNumber, cmd.EpisodeNumber)
	switch {
	case err == nil:
		return existing.ID, nil
	case errors.Is(err, apperrors.ErrNotFound):
		return uuid.New(), nil
	default:
		return uuid.Nil, fmt.Errorf("look up episode: %w", err)
	}
}

func (s *lessonWriter) SaveLesson(ctx context.Context, cmd types.GenerateLessonCommand, episodeID uuid.UUID, lesson *types.GeneratedLesson) (*types.Episode, error) {
	if lesson == nil {
		return nil, fmt.Errorf("%w: lesson required", apperrors.ErrInvalidArgument)
	}

	var episode *types.Episode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.episodeRepo.GetByIdentity(ctx, tx, cmd.TmdbID, cmd.SeasonNumber, cmd.EpisodeNumber)
		switch {
		case err == nil:
			episode = existing
			episode.ShowTitle = lesson.Script.ShowTitle
			episode.Genre = cmd.Genre
			episode.ScriptSource = string(lesson.Script.Source)
			episode.ScriptText = lesson.Script.Text
			if _, err := s.episodeRepo.Update(ctx, tx, episode); err != nil {
				return fmt.Errorf("update episode: %w", err)
			}
			ids := []uuid.UUID{episode.ID}
			if err := s.vocabularyItemRepo.FullDeleteByEpisodeIDs(ctx, tx, ids); err != nil {
				return fmt.Errorf("clear vocabulary: %w", err)
			}
			if err := s.grammarPointRepo.FullDeleteByEpisodeIDs(ctx, tx, ids); err != nil {
				return fmt.Errorf("clear grammar: %w", err)
			}
			if err := s.expressionRepo.FullDeleteByEpisodeIDs(ctx, tx, ids); err != nil {
				return fmt.Errorf("clear expressions: %w", err)
			}
			if err := s.exerciseRepo.FullDeleteByEpisodeIDs(ctx, tx, ids); err != nil {
				return fmt.Errorf("clear exercises: %w", err)
			}
		case errors.Is(err, apperrors.ErrNotFound):
			episode = &types.Episode{
				ID:            episodeID,
				TmdbID:        cmd.TmdbID,
				ShowTitle:     lesson.Script.ShowTitle,
				SeasonNumber:  cmd.SeasonNumber,
				EpisodeNumber: cmd.EpisodeNumber,
				Genre:         cmd.Genre,
				ScriptSource:  string(lesson.Script.Source),
				ScriptText:    lesson.Script.Text,
			}
			if _, err := s.episodeRepo.Create(ctx, tx, episode); err != nil {
				return fmt.Errorf("create episode: %w", err)
			}
		default:
			return fmt.Errorf("look up episode: %w", err)
		}

		items := make([]*types.VocabularyItem, 0, len(lesson.Vocabulary))
		for _, v := range lesson.Vocabulary {
			items = append(items, &types.VocabularyItem{
				EpisodeID: episode.ID,
				Term:      v.Term,
				Meaning:   v.Meaning,
				Example:   v.Example,
				Level:     v.Level,
				AudioURL:  v.AudioURL,
			})
		}
		if _, err := s.vocabularyItemRepo.Create(ctx, tx, items); err != nil {
			return fmt.Errorf("save vocabulary: %w", err)
		}

		points := make([]*types.GrammarPoint, 0, len(lesson.Grammar))
		for _, g := range lesson.Grammar {
			points = append(points, &types.GrammarPoint{
				EpisodeID:   episode.ID,
				Pattern:     g.Pattern,
				Explanation: g.Explanation,
				Example:     g.Example,
				Level:       g.Level,
			})
		}
		if _, err := s.grammarPointRepo.Create(ctx, tx, points); err != nil {
			return fmt.Errorf("save grammar: %w", err)
		}

		expressions := make([]*types.Expression, 0, len(lesson.Expressions))
		for _, e := range lesson.Expressions {
			expressions = append(expressions, &types.Expression{
				EpisodeID:  episode.ID,
				Expression: e.Expression,
				Meaning:    e.Meaning,
				Context:    e.Context,
				AudioURL:   e.AudioURL,
			})
		}
		if _, err := s.expressionRepo.Create(ctx, tx, expressions); err != nil {
			return fmt.Errorf("save expressions: %w", err)
		}

		exercises := make([]*types.Exercise, 0, len(lesson.Exercises))
		for _, ex := range lesson.Exercises {
			row := &types.Exercise{
				EpisodeID:     episode.ID,
				Type:          string(ex.Type),
				Question:      ex.Question,
				CorrectAnswer: ex.CorrectAnswer,
				Points:        ex.Points,
			}
			if len(ex.Options) > 0 {
				raw, err := json.Marshal(ex.Options)
				if err != nil {
					return fmt.Errorf("encode exercise options: %w", err)
				}
				row.Options = datatypes.JSON(raw)
			}
			if len(ex.MatchingPairs) > 0 {
				raw, err := json.Marshal(ex.MatchingPairs)
				if err != nil {
					return fmt.Errorf("encode matching pairs: %w", err)
				}
				row.MatchingPairs = datatypes.JSON(raw)
			}
			exercises = append(exercises, row)
		}
		if _, err := s.exerciseRepo.Create(ctx, tx, exercises); err != nil {
			return fmt.Errorf("save exercises: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Lesson saved",
		"episode_id", episode.ID,
		"vocabulary", len(lesson.Vocabulary),
		"grammar", len(lesson.Grammar),
		"expressions", len(lesson.Expressions),
		"exercises", len(lesson.Exercises),
	)
	return episode, nil
}
