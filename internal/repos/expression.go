package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scenelingo/scenelingo-backend/internal/logger"
	"github.com/scenelingo/scenelingo-backend/internal/types"
)

type ExpressionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, expressions []*types.Expression) ([]*types.Expression, error)
	GetByEpisodeIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) ([]*types.Expression, error)
	FullDeleteByEpisodeIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) error
}

type expressionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExpressionRepo(db *gorm.DB, baseLog *logger.Logger) ExpressionRepo {
	repoLog := baseLog.With("repo", "ExpressionRepo")
	return &expressionRepo{db: db, log: repoLog}
}

func (r *expressionRepo) Create(ctx context.Context, tx *gorm.DB, expressions []*types.Expression) ([]*types.Expression, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(expressions) == 0 {
		return []*types.Expression{}, nil
	}

	for _, expression := range expressions {
		if expression.ID == uuid.Nil {
			expression.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(ctx).Create(&expressions).Error; err != nil {
		return nil, err
	}
	return expressions, nil
}

func (r *expressionRepo) GetByEpisodeIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) ([]*types.Expression, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Expression
	if len(episodeIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("episode_id IN ?", episodeIDs).
		Order("episode_id, expression ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *expressionRepo) FullDeleteByEpisodeIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) error {
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
		Delete(&types.Expression{}).Error; err != nil {
		return err
	}
	return nil
}
