package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scenelingo/scenelingo-backend/internal/logger"
	"github.com/scenelingo/scenelingo-backend/internal/types"
)

type GrammarPointRepo interface {
	Create(ctx context.Context, tx *gorm.DB, points []*types.GrammarPoint) ([]*types.GrammarPoint, error)
	GetByEpisodeIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) ([]*types.GrammarPoint, error)
	FullDeleteByEpisodeIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) error
}

type grammarPointRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGrammarPointRepo(db *gorm.DB, baseLog *logger.Logger) GrammarPointRepo {
	repoLog := baseLog.With("repo", "GrammarPointRepo")
	return &grammarPointRepo{db: db, log: repoLog}
}

func (r *grammarPointRepo) Create(ctx context.Context, tx *gorm.DB, points []*types.GrammarPoint) ([]*types.GrammarPoint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(points) == 0 {
		return []*types.GrammarPoint{}, nil
	}

	for _, point := range points {
		if point.ID == uuid.Nil {
			point.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(ctx).Create(&points).Error; err != nil {
		return nil, err
	}
	return points, nil
}

func (r *grammarPointRepo) GetByEpisodeIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) ([]*types.GrammarPoint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.GrammarPoint
	if len(episodeIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("episode_id IN ?", episodeIDs).
		Order("episode_id, pattern ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *grammarPointRepo) FullDeleteByEpisodeIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) error {
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
		Delete(&types.GrammarPoint{}).Error; err != nil {
		return err
	}
	return nil
}
