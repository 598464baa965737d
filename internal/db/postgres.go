package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/scenelingo/scenelingo-backend/internal/logger"
	"github.com/scenelingo/scenelingo-backend/internal/types"
	"github.com/scenelingo/scenelingo-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "scenelingo", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.Episode{},
		&types.VocabularyItem{},
		&types.GrammarPoint{},
		&types.Expression{},
		&types.Exercise{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	for _, stmt := range []string{
		`ALTER TABLE "vocabulary_item"
		 ADD CONSTRAINT "fk_vocabulary_item_episode_id"
		 FOREIGN KEY ("episode_id") REFERENCES "episode"("id") ON DELETE CASCADE`,
		`ALTER TABLE "grammar_point"
		 ADD CONSTRAINT "fk_grammar_point_episode_id"
		 FOREIGN KEY ("episode_id") REFERENCES "episode"("id") ON DELETE CASCADE`,
		`ALTER TABLE "expression"
		 ADD CONSTRAINT "fk_expression_episode_id"
		 FOREIGN KEY ("episode_id") REFERENCES "episode"("id") ON DELETE CASCADE`,
		`ALTER TABLE "exercise"
		 ADD CONSTRAINT "fk_exercise_episode_id"
		 FOREIGN KEY ("episode_id") REFERENCES "episode"("id") ON DELETE CASCADE`,
	} {
		if err := s.db.Exec(stmt).Error; err != nil {
			// Re-running migrations against an existing schema hits
			// duplicate constraint errors; those are fine to skip.
			s.log.Warn("Foreign key configuration skipped", "error", err)
		}
	}
	return nil
}
