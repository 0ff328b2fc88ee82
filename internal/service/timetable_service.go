package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/nep-timetable-api/internal/dto"
	"github.com/noah-isme/nep-timetable-api/internal/models"
	appErrors "github.com/noah-isme/nep-timetable-api/pkg/errors"
)

type catalogLoader interface {
	Load(ctx context.Context, schoolID string) (models.Catalog, error)
	LoadCurriculum(ctx context.Context) (models.Catalog, error)
}

type timetableGenerator interface {
	Generate(ctx context.Context, catalog models.Catalog, req models.GenerationRequest) (*GenerationResult, error)
}

type timetableStore interface {
	ListByClass(ctx context.Context, classID string) ([]models.TimetableEntry, error)
	ReplaceForClass(ctx context.Context, classID string, entries []models.TimetableEntry) error
}

// TimetableServiceConfig tunes caching of class compliance reports.
type TimetableServiceConfig struct {
	ComplianceCacheTTL time.Duration
}

// TimetableService coordinates catalog loading, generation, persistence, scoring and export.
type TimetableService struct {
	catalog   catalogLoader
	generator timetableGenerator
	store     timetableStore
	scorer    *ComplianceScorer
	exporter  *ExportService
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TimetableServiceConfig
}

// NewTimetableService wires the service. Cache and metrics may be nil.
func NewTimetableService(
	catalog catalogLoader,
	generator timetableGenerator,
	store timetableStore,
	scorer *ComplianceScorer,
	exporter *ExportService,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if scorer == nil {
		scorer = NewComplianceScorer()
	}
	if exporter == nil {
		exporter = NewExportService(nil, nil)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		catalog:   catalog,
		generator: generator,
		store:     store,
		scorer:    scorer,
		exporter:  exporter,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate builds a timetable for one class and, unless DryRun is set, replaces the stored one.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}
	start := time.Now()

	catalog, err := s.catalog.Load(ctx, req.SchoolID)
	if err != nil {
		return nil, err
	}

	result, err := s.generator.Generate(ctx, catalog, req.ToModel())
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	s.metrics.RecordGeneration(result.Source, len(result.Dropped), elapsed)
	s.metrics.ObserveComplianceScore(string(result.Source), result.Report.OverallScore)

	resp := &dto.GenerateTimetableResponse{
		Source:                    string(result.Source),
		Timetable:                 result.Entries,
		Compliance:                result.Report,
		Dropped:                   result.Dropped,
		DroppedCount:              len(result.Dropped),
		FallbackReason:            result.FallbackReason,
		RemoteComplianceScore:     result.RemoteComplianceScore,
		OptimizationNotes:         result.OptimizationNotes,
		MultidisciplinarySessions: result.MultidisciplinarySessions,
		Warnings:                  generationWarnings(result),
		GenerationTimeMs:          elapsed.Milliseconds(),
	}

	if !req.DryRun {
		if err := s.store.ReplaceForClass(ctx, req.ClassID, result.Entries); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store timetable")
		}
		_ = s.cache.Invalidate(ctx, ComplianceKey(req.ClassID))
		resp.Persisted = true
	}

	s.logger.Info("timetable generated",
		zap.String("school_id", req.SchoolID),
		zap.String("class_id", req.ClassID),
		zap.String("source", resp.Source),
		zap.Int("entries", len(result.Entries)),
		zap.Int("dropped", resp.DroppedCount),
		zap.Bool("persisted", resp.Persisted),
		zap.Duration("elapsed", elapsed),
	)
	return resp, nil
}

// ListByClass returns the stored timetable of a class.
func (s *TimetableService) ListByClass(ctx context.Context, classID string) ([]models.TimetableEntry, error) {
	if strings.TrimSpace(classID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id is required")
	}
	entries, err := s.store.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return entries, nil
}

// AnalyzeClass scores the stored timetable of a class. Reports are cached until the next generation.
func (s *TimetableService) AnalyzeClass(ctx context.Context, classID string) (*models.ComplianceReport, error) {
	var cached models.ComplianceReport
	if hit, _ := s.cache.Get(ctx, ComplianceKey(classID), &cached); hit {
		return &cached, nil
	}

	entries, err := s.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class has no timetable")
	}
	curriculum, err := s.catalog.LoadCurriculum(ctx)
	if err != nil {
		return nil, err
	}

	report := s.scorer.Score(entries, curriculum.Subjects, curriculum.TimeSlots)
	s.metrics.ObserveComplianceScore("analysis", report.OverallScore)
	_ = s.cache.Set(ctx, ComplianceKey(classID), report, s.cfg.ComplianceCacheTTL)
	return &report, nil
}

// Analyze scores a submitted timetable against the subject catalog.
func (s *TimetableService) Analyze(ctx context.Context, req dto.ComplianceAnalysisRequest) (*models.ComplianceReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid compliance payload")
	}
	curriculum, err := s.catalog.LoadCurriculum(ctx)
	if err != nil {
		return nil, err
	}

	subjects, err := selectSubjects(curriculum.Subjects, req.SubjectIDs)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(curriculum.Subjects))
	for _, subject := range curriculum.Subjects {
		known[subject.ID] = true
	}
	for _, entry := range req.Timetable {
		if !known[entry.SubjectID] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown subject %q in timetable", entry.SubjectID))
		}
	}

	report := s.scorer.Score(req.Entries(), subjects, curriculum.TimeSlots)
	s.metrics.ObserveComplianceScore("analysis", report.OverallScore)
	return &report, nil
}

// Export renders the stored timetable of a class.
func (s *TimetableService) Export(ctx context.Context, classID string, format ExportFormat) (*ExportFile, error) {
	entries, err := s.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class has no timetable")
	}
	catalog, err := s.catalog.Load(ctx, entries[0].SchoolID)
	if err != nil {
		return nil, err
	}
	return s.exporter.Render(format, classID, entries, catalog)
}

func selectSubjects(all []models.Subject, ids []string) ([]models.Subject, error) {
	if len(ids) == 0 {
		return all, nil
	}
	index := make(map[string]models.Subject, len(all))
	for _, subject := range all {
		index[subject.ID] = subject
	}
	selected := make([]models.Subject, 0, len(ids))
	for _, id := range ids {
		subject, ok := index[id]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown subject %q", id))
		}
		selected = append(selected, subject)
	}
	return selected, nil
}

func generationWarnings(result *GenerationResult) []string {
	warnings := make([]string, 0, 2)
	if n := len(result.Dropped); n > 0 {
		names := make([]string, 0, n)
		for _, d := range result.Dropped {
			names = append(names, d.Name)
		}
		warnings = append(warnings, fmt.Sprintf("%d subject(s) did not fit the weekly slot capacity and were not scheduled: %s", n, strings.Join(names, ", ")))
	}
	if result.Source == SourceHeuristic && result.FallbackReason != "" {
		warnings = append(warnings, "heuristic timetable used: "+result.FallbackReason)
	}
	return warnings
}
