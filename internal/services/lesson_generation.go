package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scenelingo/scenelingo-backend/internal/clients/scripts"
	"github.com/scenelingo/scenelingo-backend/internal/jobs"
	"github.com/scenelingo/scenelingo-backend/internal/logger"
	apperrors "github.com/scenelingo/scenelingo-backend/internal/pkg/errors"
	"github.com/scenelingo/scenelingo-backend/internal/types"
	"github.com/scenelingo/scenelingo-backend/internal/utils"
)

// LessonGenerationService owns the async pipeline: a start call records a
// pending job and returns immediately; the run advances the job through
// the fixed step sequence in the background; pollers read snapshots from
// the job store.
type LessonGenerationService interface {
	StartGeneration(ctx context.Context, cmd types.GenerateLessonCommand) (*types.GenerationJob, error)
	GetStatus(ctx context.Context, jobID uuid.UUID) (*types.GenerationJob, error)
}

type lessonGenerationService struct {
	log   *logger.Logger
	store jobs.JobStore

	scriptClient scripts.Client
	extractor    ContentExtractor
	audio        AudioSynthesizer
	writer       LessonWriter

	runTimeout time.Duration
}

func NewLessonGenerationService(
	log *logger.Logger,
	store jobs.JobStore,
	scriptClient scripts.Client,
	extractor ContentExtractor,
	audio AudioSynthesizer,
	writer LessonWriter,
) LessonGenerationService {
	serviceLog := log.With("service", "LessonGenerationService")
	timeoutSecs := utils.GetEnvAsInt("GENERATION_TIMEOUT_SECONDS", 600, log)
	return &lessonGenerationService{
		log:          serviceLog,
		store:        store,
		scriptClient: scriptClient,
		extractor:    extractor,
		audio:        audio,
		writer:       writer,
		runTimeout:   time.Duration(timeoutSecs) * time.Second,
	}
}

func validateCommand(cmd types.GenerateLessonCommand) error {
	if strings.TrimSpace(cmd.TmdbID) == "" {
		return fmt.Errorf("%w: tmdb_id required", apperrors.ErrInvalidArgument)
	}
	if cmd.SeasonNumber <= 0 {
		return fmt.Errorf("%w: season_number must be positive, got %d", apperrors.ErrInvalidArgument, cmd.SeasonNumber)
	}
	if cmd.EpisodeNumber <= 0 {
		return fmt.Errorf("%w: episode_number must be positive, got %d", apperrors.ErrInvalidArgument, cmd.EpisodeNumber)
	}
	return nil
}

func (s *lessonGenerationService) StartGeneration(ctx context.Context, cmd types.GenerateLessonCommand) (*types.GenerationJob, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	job := types.GenerationJob{
		ID:        uuid.New(),
		Status:    types.GenerationStatusPending,
		Progress:  0,
		CreatedAt: time.Now().UTC(),
	}
	s.store.Put(job)

	s.log.Info("Generation started",
		"job_id", job.ID,
		"tmdb_id", cmd.TmdbID,
		"season", cmd.SeasonNumber,
		"episode", cmd.EpisodeNumber,
	)

	// The run outlives the HTTP request that started it.
	go s.run(job, cmd)

	snapshot := job
	return &snapshot, nil
}

func (s *lessonGenerationService) GetStatus(ctx context.Context, jobID uuid.UUID) (*types.GenerationJob, error) {
	job, err := s.store.Get(jobID)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *lessonGenerationService) run(job types.GenerationJob, cmd types.GenerateLessonCommand) {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	runLog := s.log.With("job_id", job.ID)

	// enter marks the step as in progress before its work starts, so a
	// poller arriving mid-stage sees where the run is, not where it was.
	enter := func(step jobs.ProgressStep) {
		job.Status = types.GenerationStatusRunning
		job.CurrentStep = step.Name
		job.Progress = step.Percent
		if err := s.store.Update(job); err != nil {
			runLog.Error("Job store update failed", "step", step.Name, "error", err)
		}
		runLog.Info("Pipeline step", "step", step.Name, "progress", step.Percent)
	}

	fail := func(step jobs.ProgressStep, err error) {
		job.Status = types.GenerationStatusFailed
		job.ErrorMessage = err.Error()
		if updateErr := s.store.Update(job); updateErr != nil {
			runLog.Error("Job store update failed", "step", step.Name, "error", updateErr)
		}
		runLog.Error("Generation failed", "step", step.Name, "error", err)
	}

	enter(jobs.StepFetchingScript)
	script, err := s.scriptClient.FetchScript(ctx, cmd.TmdbID, cmd.SeasonNumber, cmd.EpisodeNumber)
	if err != nil {
		fail(jobs.StepFetchingScript, err)
		return
	}

	enter(jobs.StepParsingScript)
	parsed, err := ParseScript(script)
	if err != nil {
		fail(jobs.StepParsingScript, err)
		return
	}

	lesson := &types.GeneratedLesson{Script: *parsed}

	enter(jobs.StepExtractingVocabulary)
	lesson.Vocabulary, err = s.extractor.ExtractVocabulary(ctx, parsed)
	if err != nil {
		fail(jobs.StepExtractingVocabulary, err)
		return
	}

	enter(jobs.StepExtractingGrammar)
	lesson.Grammar, err = s.extractor.ExtractGrammar(ctx, parsed)
	if err != nil {
		fail(jobs.StepExtractingGrammar, err)
		return
	}

	enter(jobs.StepExtractingExpressions)
	lesson.Expressions, err = s.extractor.ExtractExpressions(ctx, parsed)
	if err != nil {
		fail(jobs.StepExtractingExpressions, err)
		return
	}

	enter(jobs.StepGeneratingExercises)
	lesson.Exercises, err = s.extractor.GenerateExercises(ctx, parsed, lesson)
	if err != nil {
		fail(jobs.StepGeneratingExercises, err)
		return
	}

	enter(jobs.StepSaving)
	episodeID, err := s.writer.ResolveEpisodeID(ctx, cmd)
	if err != nil {
		fail(jobs.StepSaving, err)
		return
	}
	s.synthesizeLessonAudio(ctx, runLog, episodeID, lesson)
	episode, err := s.writer.SaveLesson(ctx, cmd, episodeID, lesson)
	if err != nil {
		fail(jobs.StepSaving, err)
		return
	}
	job.EpisodeID = &episode.ID

	job.Status = types.GenerationStatusCompleted
	job.CurrentStep = jobs.StepCompleted.Name
	job.Progress = jobs.StepCompleted.Percent
	if err := s.store.Update(job); err != nil {
		runLog.Error("Job store update failed", "step", jobs.StepCompleted.Name, "error", err)
	}
	runLog.Info("Generation completed", "episode_id", episode.ID)
}

// synthesizeLessonAudio attaches pronunciation clips to vocabulary and
// expression items. A failed clip degrades that one item; the lesson still
// saves.
func (s *lessonGenerationService) synthesizeLessonAudio(ctx context.Context, runLog *logger.Logger, episodeID uuid.UUID, lesson *types.GeneratedLesson) {
	if s.audio == nil {
		return
	}
	for i := range lesson.Vocabulary {
		item := &lesson.Vocabulary[i]
		if !item.NeedsAudio {
			continue
		}
		url, err := s.audio.SynthesizeItem(ctx, episodeID, item.Term)
		if err != nil {
			runLog.Warn("Vocabulary audio skipped", "term", item.Term, "error", err)
			continue
		}
		item.AudioURL = url
	}
	for i := range lesson.Expressions {
		item := &lesson.Expressions[i]
		if !item.NeedsAudio {
			continue
		}
		url, err := s.audio.SynthesizeItem(ctx, episodeID, item.Expression)
		if err != nil {
			runLog.Warn("Expression audio skipped", "expression", item.Expression, "error", err)
			continue
		}
		item.AudioURL = url
	}
}
