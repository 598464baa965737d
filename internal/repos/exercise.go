package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scenelingo/scenelingo-backend/internal/logger"
	"github.com/scenelingo/scenelingo-backend/internal/types"
)

type ExerciseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, exercises []*types.Exercise) ([]*types.Exercise, error)
	GetByEpisodeIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) ([]*types.Exercise, error)
	FullDeleteByEpisodeIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) error
}

type exerciseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExerciseRepo(db *gorm.DB, baseLog *logger.Logger) ExerciseRepo {
	repoLog := baseLog.With("repo", "ExerciseRepo")
	return &exerciseRepo{db: db, log: repoLog}
}

func (r *exerciseRepo) Create(ctx context.Context, tx *gorm.DB, exercises []*types.Exercise) ([]*types.Exercise, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(exercises) == 0 {
		return []*types.Exercise{}, nil
	}

	for _, exercise := range exercises {
		if exercise.ID == uuid.Nil {
			exercise.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(ctx).Create(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *exerciseRepo) GetByEpisodeIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) ([]*types.Exercise, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Exercise
	if len(episodeIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("episode_id IN ?", episodeIDs).
		Order("episode_id, type ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *exerciseRepo) FullDeleteByEpisodeIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(episodeIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("episode_id IN ?", episodeIDs).
		Delete(&types.Exercise{}).Error; err != nil {
		return err
	}
	return nil
}
