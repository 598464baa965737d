package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scenelingo/scenelingo-backend/internal/logger"
	apperrors "github.com/scenelingo/scenelingo-backend/internal/pkg/errors"
	"github.com/scenelingo/scenelingo-backend/internal/types"
)

type EpisodeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, episode *types.Episode) (*types.Episode, error)
	GetByID(ctx context.Context, tx *gorm.DB, episodeID uuid.UUID) (*types.Episode, error)
	GetByIdentity(ctx context.Context, tx *gorm.DB, tmdbID string, season, episode int) (*types.Episode, error)
	Update(ctx context.Context, tx *gorm.DB, episode *types.Episode) (*types.Episode, error)
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) error
}

type episodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEpisodeRepo(db *gorm.DB, baseLog *logger.Logger) EpisodeRepo {
	repoLog := baseLog.With("repo", "EpisodeRepo")
	return &episodeRepo{db: db, log: repoLog}
}

func (r *episodeRepo) Create(ctx context.Context, tx *gorm.DB, episode *types.Episode) (*types.Episode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if episode.ID == uuid.Nil {
		episode.ID = uuid.New()
	}

	if err := transaction.WithContext(ctx).Create(episode).Error; err != nil {
		return nil, err
	}
	return episode, nil
}

func (r *episodeRepo) GetByID(ctx context.Context, tx *gorm.DB, episodeID uuid.UUID) (*types.Episode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Episode
	if err := transaction.WithContext(ctx).
		Where("id = ?", episodeID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *episodeRepo) GetByIdentity(ctx context.Context, tx *gorm.DB, tmdbID string, season, episode int) (*types.Episode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Episode
	if err := transaction.WithContext(ctx).
		Where("tmdb_id = ? AND season_number = ? AND episode_number = ?", tmdbID, season, episode).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *episodeRepo) Update(ctx context.Context, tx *gorm.DB, episode *types.Episode) (*types.Episode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Save(episode).Error; err != nil {
		return nil, err
	}
	return episode, nil
}

func (r *episodeRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, episodeIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(episodeIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", episodeIDs).
		Delete(&types.Episode{}).Error; err != nil {
		return err
	}
	return nil
}
