package main

import (
	"fmt"
	"os"

	"github.com/scenelingo/scenelingo-backend/internal/clients/gcp"
	"github.com/scenelingo/scenelingo-backend/internal/clients/openai"
	"github.com/scenelingo/scenelingo-backend/internal/clients/scripts"
	"github.com/scenelingo/scenelingo-backend/internal/db"
	"github.com/scenelingo/scenelingo-backend/internal/handlers"
	"github.com/scenelingo/scenelingo-backend/internal/jobs"
	"github.com/scenelingo/scenelingo-backend/internal/logger"
	"github.com/scenelingo/scenelingo-backend/internal/repos"
	"github.com/scenelingo/scenelingo-backend/internal/server"
	"github.com/scenelingo/scenelingo-backend/internal/services"
	"github.com/scenelingo/scenelingo-backend/internal/storage"
	"github.com/scenelingo/scenelingo-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	port := utils.GetEnv("PORT", "8080", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	episodeRepo := repos.NewEpisodeRepo(thePG, log)
	vocabularyItemRepo := repos.NewVocabularyItemRepo(thePG, log)
	grammarPointRepo := repos.NewGrammarPointRepo(thePG, log)
	expressionRepo := repos.NewExpressionRepo(thePG, log)
	exerciseRepo := repos.NewExerciseRepo(thePG, log)

	// Object storage
	log.Info("Setting up object storage from main...")
	storageCfg, err := storage.ResolveConfigFromEnv()
	if err != nil {
		log.Error("Could not resolve object storage config", "error", err)
		os.Exit(1)
	}
	objectStore, err := storage.New(log, storageCfg)
	if err != nil {
		log.Error("Could not init object storage", "error", err)
		os.Exit(1)
	}
	localMediaDir := ""
	if storageCfg.Mode == storage.ModeLocal {
		localMediaDir = storageCfg.LocalRootDir
	}

	// Clients
	log.Info("Setting up upstream clients from main...")
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		log.Error("Could not init OpenAI client", "error", err)
		os.Exit(1)
	}
	speechClient, err := gcp.NewSpeech(log)
	if err != nil {
		// Transcription is a fallback path only; script-text episodes
		// still work without it.
		log.Warn("Could not init Speech client, transcription fallback disabled", "error", err)
		speechClient = nil
	}
	scriptClient, err := scripts.NewClient(log, speechClient)
	if err != nil {
		log.Error("Could not init script service client", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up Services from main...")
	jobStore := jobs.NewMemoryJobStore()
	extractor := services.NewContentExtractor(log, openaiClient)
	audioSynthesizer := services.NewAudioSynthesizer(log, openaiClient, objectStore)
	lessonWriter := services.NewLessonWriter(thePG, log, episodeRepo, vocabularyItemRepo, grammarPointRepo, expressionRepo, exerciseRepo)
	generationService := services.NewLessonGenerationService(log, jobStore, scriptClient, extractor, audioSynthesizer, lessonWriter)

	// Handlers + router
	generationHandler := handlers.NewGenerationHandler(generationService)
	router := server.NewRouter(server.RouterConfig{
		GenerationHandler: generationHandler,
		LocalMediaDir:     localMediaDir,
	})

	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
