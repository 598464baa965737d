package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scenelingo/scenelingo-backend/internal/logger"
	"github.com/scenelingo/scenelingo-backend/internal/types"
)

type VocabularyItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, items []*types.VocabularyItem) ([]*types.VocabularyItem, error)
	GetByEpisodeIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) ([]*types.VocabularyItem, error)
	FullDeleteByEpisodeIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) error
}

type vocabularyItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVocabularyItemRepo(db *gorm.DB, baseLog *logger.Logger) VocabularyItemRepo {
	repoLog := baseLog.With("repo", "VocabularyItemRepo")
	return &vocabularyItemRepo{db: db, log: repoLog}
}

func (r *vocabularyItemRepo) Create(ctx context.Context, tx *gorm.DB, items []*types.VocabularyItem) ([]*types.VocabularyItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(items) == 0 {
		return []*types.VocabularyItem{}, nil
	}

	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *vocabularyItemRepo) GetByEpisodeIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) ([]*types.VocabularyItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.VocabularyItem
	if len(episodeIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("episode_id IN ?", episodeIDs).
		Order("episode_id, term ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *vocabularyItemRepo) FullDeleteByEpisodeIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) error {
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
		Delete(&types.VocabularyItem{}).Error; err != nil {
		return err
	}
	return nil
}
