package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/noah-isme/nep-timetable-api/internal/models"
	"github.com/noah-isme/nep-timetable-api/pkg/llm"
)

// GenerationSource tags where a timetable came from.
type GenerationSource string

const (
	SourceRemote    GenerationSource = "remote"
	SourceHeuristic GenerationSource = "heuristic"
)

const (
	defaultGeneratorMaxTokens   = 4000
	defaultGeneratorTemperature = 0.2
	defaultGeneratorTimeout     = 30 * time.Second
)

var generatorTracer = otel.Tracer("github.com/noah-isme/nep-timetable-api/internal/service")

// ErrMalformedReply marks a remote reply that could not be turned into a usable timetable.
var ErrMalformedReply = errors.New("malformed remote timetable reply")

// Completer sends one prompt to a text-generation endpoint.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (string, error)
}

// GeneratorConfig tunes the remote call.
type GeneratorConfig struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// GenerationResult is either a remote timetable scored locally or a heuristic timetable with the
// fixed fallback report. Source says which.
type GenerationResult struct {
	Source                    GenerationSource        `json:"source"`
	Entries                   []models.TimetableEntry `json:"entries"`
	Report                    models.ComplianceReport `json:"report"`
	Dropped                   []models.DroppedSubject `json:"dropped"`
	FallbackReason            string                  `json:"fallback_reason,omitempty"`
	RemoteComplianceScore     *float64                `json:"remote_compliance_score,omitempty"`
	OptimizationNotes         []string                `json:"optimization_notes"`
	MultidisciplinarySessions []string                `json:"multidisciplinary_sessions"`
}

// TimetableGenerator tries the remote generator once and degrades to the local assigner on any failure.
type TimetableGenerator struct {
	completer Completer
	assigner  TimetableAssigner
	scorer    *ComplianceScorer
	cfg       GeneratorConfig
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewTimetableGenerator wires the generator. A nil completer disables remote generation.
func NewTimetableGenerator(completer Completer, assigner TimetableAssigner, scorer *ComplianceScorer, cfg GeneratorConfig, logger *zap.Logger) *TimetableGenerator {
	if assigner == nil {
		assigner = NewGreedyAssigner(nil)
	}
	if scorer == nil {
		scorer = NewComplianceScorer()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultGeneratorMaxTokens
	}
	if cfg.Temperature < 0 {
		cfg.Temperature = defaultGeneratorTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGeneratorTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableGenerator{
		completer: completer,
		assigner:  assigner,
		scorer:    scorer,
		cfg:       cfg,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// RemoteEnabled reports whether a completer is configured.
func (g *TimetableGenerator) RemoteEnabled() bool {
	return g.completer != nil
}

// Generate never surfaces remote failures. The only error returned comes from the assigner, for
// example when there are no teachers to place subjects with.
func (g *TimetableGenerator) Generate(ctx context.Context, catalog models.Catalog, req models.GenerationRequest) (*GenerationResult, error) {
	ctx, span := generatorTracer.Start(ctx, "TimetableGenerator.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("timetable.class_id", req.ClassID),
		attribute.Int("timetable.subjects", len(catalog.Subjects)),
		attribute.Int("timetable.time_slots", len(catalog.TimeSlots)),
	)

	if g.completer == nil {
		return g.fallback(catalog, req, "remote generation disabled", span.SetAttributes)
	}

	result, err := g.generateRemote(ctx, catalog, req)
	if err != nil {
		reason := fallbackReason(err)
		g.logger.Warn("remote timetable generation failed, using heuristic",
			zap.String("class_id", req.ClassID),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return g.fallback(catalog, req, reason, span.SetAttributes)
	}

	span.SetAttributes(attribute.String("timetable.source", string(SourceRemote)), attribute.Int("timetable.entries", len(result.Entries)))
	return result, nil
}

func (g *TimetableGenerator) fallback(catalog models.Catalog, req models.GenerationRequest, reason string, annotate func(...attribute.KeyValue)) (*GenerationResult, error) {
	assigned, err := g.assigner.Assign(catalog, req)
	if err != nil {
		return nil, err
	}
	annotate(
		attribute.String("timetable.source", string(SourceHeuristic)),
		attribute.String("timetable.fallback_reason", reason),
		attribute.Int("timetable.entries", len(assigned.Entries)),
		attribute.Int("timetable.dropped", len(assigned.Dropped)),
	)
	return &GenerationResult{
		Source:                    SourceHeuristic,
		Entries:                   assigned.Entries,
		Report:                    FallbackComplianceReport(),
		Dropped:                   assigned.Dropped,
		FallbackReason:            reason,
		OptimizationNotes:         []string{},
		MultidisciplinarySessions: []string{},
	}, nil
}

func (g *TimetableGenerator) generateRemote(ctx context.Context, catalog models.Catalog, req models.GenerationRequest) (*GenerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	text, err := g.completer.Complete(ctx, llm.CompletionRequest{
		System:      generatorSystemPrompt,
		User:        buildGenerationPrompt(catalog, req),
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	reply, err := parseRemoteReply(text)
	if err != nil {
		return nil, err
	}

	entries, err := g.toEntries(reply, catalog, req)
	if err != nil {
		return nil, err
	}

	score := reply.ComplianceScore
	return &GenerationResult{
		Source:                    SourceRemote,
		Entries:                   entries,
		Report:                    g.scorer.Score(entries, catalog.Subjects, catalog.TimeSlots),
		Dropped:                   []models.DroppedSubject{},
		RemoteComplianceScore:     &score,
		OptimizationNotes:         nonNil(reply.OptimizationNotes),
		MultidisciplinarySessions: nonNil(reply.MultidisciplinarySessions),
	}, nil
}

type remoteEntry struct {
	DayOfWeek      int        `json:"day_of_week"`
	TimeSlotID     flexibleID `json:"time_slot_id"`
	SubjectID      flexibleID `json:"subject_id"`
	TeacherID      flexibleID `json:"teacher_id"`
	RoomSuggestion string     `json:"room_suggestion"`
	ComplianceNote string     `json:"compliance_note"`
}

type remoteReply struct {
	Timetable                 []remoteEntry `json:"timetable"`
	ComplianceScore           float64       `json:"compliance_score"`
	OptimizationNotes         []string      `json:"optimization_notes"`
	MultidisciplinarySessions []string      `json:"multidisciplinary_sessions"`
}

// flexibleID accepts identifiers sent as either JSON strings or numbers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*f = flexibleID(n.String())
	return nil
}

func parseRemoteReply(text string) (*remoteReply, error) {
	body := stripCodeFence(text)
	var reply remoteReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if len(reply.Timetable) == 0 {
		return nil, fmt.Errorf("%w: empty timetable", ErrMalformedReply)
	}
	return &reply, nil
}

func stripCodeFence(text string) string {
	body := strings.TrimSpace(text)
	if !strings.HasPrefix(body, "```") {
		return body
	}
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:]
	} else {
		body = strings.TrimPrefix(body, "```")
	}
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

func (g *TimetableGenerator) toEntries(reply *remoteReply, catalog models.Catalog, req models.GenerationRequest) ([]models.TimetableEntry, error) {
	subjects := catalog.SubjectIndex()
	teachers := catalog.TeacherIndex()
	slots := catalog.TimeSlotIndex()
	confidence := clampUnit(reply.ComplianceScore / 100)
	createdAt := g.now()

	occupied := make(map[string]bool, len(reply.Timetable))
	entries := make([]models.TimetableEntry, 0, len(reply.Timetable))
	for i, item := range reply.Timetable {
		if item.DayOfWeek < models.FirstSchoolDay || item.DayOfWeek > models.LastSchoolDay {
			return nil, fmt.Errorf("%w: entry %d has day_of_week %d", ErrMalformedReply, i, item.DayOfWeek)
		}
		if _, ok := subjects[string(item.SubjectID)]; !ok {
			return nil, fmt.Errorf("%w: entry %d references unknown subject %q", ErrMalformedReply, i, item.SubjectID)
		}
		if _, ok := teachers[string(item.TeacherID)]; !ok {
			return nil, fmt.Errorf("%w: entry %d references unknown teacher %q", ErrMalformedReply, i, item.TeacherID)
		}
		slot, ok := slots[string(item.TimeSlotID)]
		if !ok || !slot.IsAssignable() {
			return nil, fmt.Errorf("%w: entry %d references unusable time slot %q", ErrMalformedReply, i, item.TimeSlotID)
		}
		key := strconv.Itoa(item.DayOfWeek) + "/" + slot.ID
		if occupied[key] {
			return nil, fmt.Errorf("%w: entry %d double-books day %d slot %s", ErrMalformedReply, i, item.DayOfWeek, slot.ID)
		}
		occupied[key] = true

		var room *string
		if r := strings.TrimSpace(item.RoomSuggestion); r != "" {
			room = &r
		}
		entries = append(entries, models.TimetableEntry{
			ID:                g.newID(),
			SchoolID:          req.SchoolID,
			ClassID:           req.ClassID,
			SubjectID:         string(item.SubjectID),
			TeacherID:         string(item.TeacherID),
			TimeSlotID:        slot.ID,
			DayOfWeek:         item.DayOfWeek,
			RoomNumber:        room,
			AIConfidenceScore: confidence,
			CreatedAt:         createdAt,
		})
	}
	return entries, nil
}

func fallbackReason(err error) string {
	var httpErr *llm.HTTPError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "remote generation timed out"
	case errors.Is(err, context.Canceled):
		return "remote generation canceled"
	case errors.As(err, &httpErr):
		return fmt.Sprintf("remote generation returned status %d", httpErr.StatusCode)
	case errors.Is(err, ErrMalformedReply), errors.Is(err, llm.ErrEmptyCompletion):
		return "remote generation reply was not a usable timetable"
	default:
		return "remote generation request failed"
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
