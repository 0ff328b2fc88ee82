package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/nep-timetable-api/internal/dto"
	appErrors "github.com/noah-isme/nep-timetable-api/pkg/errors"
	"github.com/noah-isme/nep-timetable-api/pkg/jobs"
)

// BatchJobType is the queue job type for one class of a batch.
const BatchJobType = "timetable.generate"

// BatchJobStatus is the lifecycle of a class inside a batch.
type BatchJobStatus string

const (
	BatchJobQueued    BatchJobStatus = "queued"
	BatchJobRunning   BatchJobStatus = "running"
	BatchJobSucceeded BatchJobStatus = "succeeded"
	BatchJobFailed    BatchJobStatus = "failed"
)

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type classGenerator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
}

type batchJobPayload struct {
	BatchID string
	Request dto.GenerateTimetableRequest
}

type batchRecord struct {
	ID          string
	SchoolID    string
	RequestedAt time.Time
	Classes     map[string]dto.BatchClassStatus
	Order       []string
}

// BatchService queues one generation job per class and tracks their outcome in memory for ResultTTL.
type BatchService struct {
	generator classGenerator
	queue     jobEnqueuer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	store     *batchStore
}

// NewBatchService constructs the service. Attach a queue with SetQueue before accepting batches.
func NewBatchService(generator classGenerator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, resultTTL time.Duration) *BatchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if resultTTL <= 0 {
		resultTTL = time.Hour
	}
	return &BatchService{
		generator: generator,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		store:     newBatchStore(resultTTL),
	}
}

// SetQueue attaches the worker queue. The queue's handler is HandleJob, hence the two-step wiring.
func (s *BatchService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// Submit records the batch and enqueues every class. Classes the queue rejects are marked failed.
func (s *BatchService) Submit(ctx context.Context, req dto.BatchGenerateRequest) (*dto.BatchStatusResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "batch generation is not available")
	}

	record := batchRecord{
		ID:          uuid.NewString(),
		SchoolID:    req.SchoolID,
		RequestedAt: time.Now().UTC(),
		Classes:     make(map[string]dto.BatchClassStatus, len(req.ClassIDs)),
		Order:       append([]string(nil), req.ClassIDs...),
	}
	for _, classID := range req.ClassIDs {
		record.Classes[classID] = dto.BatchClassStatus{ClassID: classID, Status: string(BatchJobQueued)}
	}
	s.store.Save(record)

	for _, classID := range req.ClassIDs {
		job := jobs.Job{
			ID:      record.ID + ":" + classID,
			Type:    BatchJobType,
			Payload: batchJobPayload{BatchID: record.ID, Request: req.ForClass(classID)},
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("batch job rejected", zap.String("batch_id", record.ID), zap.String("class_id", classID), zap.Error(err))
			s.store.Update(record.ID, dto.BatchClassStatus{ClassID: classID, Status: string(BatchJobFailed), Error: err.Error()})
			s.metrics.RecordBatchJob(BatchJobFailed)
		}
	}

	s.logger.Info("batch generation queued", zap.String("batch_id", record.ID), zap.String("school_id", req.SchoolID), zap.Int("classes", len(req.ClassIDs)))
	return s.Status(ctx, record.ID)
}

// Status reports the batch and each class.
func (s *BatchService) Status(_ context.Context, batchID string) (*dto.BatchStatusResponse, error) {
	record, ok := s.store.Get(batchID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found or expired")
	}
	resp := &dto.BatchStatusResponse{
		BatchID:     record.ID,
		SchoolID:    record.SchoolID,
		RequestedAt: record.RequestedAt.Format(time.RFC3339),
		Classes:     make([]dto.BatchClassStatus, 0, len(record.Order)),
	}
	for _, classID := range record.Order {
		resp.Classes = append(resp.Classes, record.Classes[classID])
	}
	resp.Status = string(aggregateStatus(resp.Classes))
	return resp, nil
}

// HandleJob is the queue handler. Generation failures are recorded here and not returned: a retry would
// repeat the remote call, and the errors Generate surfaces fail the same way again.
func (s *BatchService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(batchJobPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for job %s", job.ID)
	}
	classID := payload.Request.ClassID
	s.store.Update(payload.BatchID, dto.BatchClassStatus{ClassID: classID, Status: string(BatchJobRunning)})

	resp, err := s.generator.Generate(ctx, payload.Request)
	if err != nil {
		s.logger.Warn("batch class generation failed",
			zap.String("batch_id", payload.BatchID),
			zap.String("class_id", classID),
			zap.Error(err),
		)
		s.markFailed(payload, err)
		return nil
	}

	score := resp.Compliance.OverallScore
	s.store.Update(payload.BatchID, dto.BatchClassStatus{
		ClassID:      classID,
		Status:       string(BatchJobSucceeded),
		Source:       resp.Source,
		Entries:      len(resp.Timetable),
		DroppedCount: resp.DroppedCount,
		OverallScore: &score,
	})
	s.metrics.RecordBatchJob(BatchJobSucceeded)
	return nil
}

// OnJobFailed is the queue failure hook for jobs the handler could not run at all.
func (s *BatchService) OnJobFailed(job jobs.Job, err error) {
	payload, ok := job.Payload.(batchJobPayload)
	if !ok {
		return
	}
	s.markFailed(payload, err)
}

func (s *BatchService) markFailed(payload batchJobPayload, err error) {
	s.store.Update(payload.BatchID, dto.BatchClassStatus{
		ClassID: payload.Request.ClassID,
		Status:  string(BatchJobFailed),
		Error:   appErrors.FromError(err).Message,
	})
	s.metrics.RecordBatchJob(BatchJobFailed)
}

func aggregateStatus(classes []dto.BatchClassStatus) BatchJobStatus {
	counts := make(map[string]int, 4)
	for _, c := range classes {
		counts[c.Status]++
	}
	switch {
	case counts[string(BatchJobQueued)]+counts[string(BatchJobRunning)] > 0:
		if counts[string(BatchJobQueued)] == len(classes) {
			return BatchJobQueued
		}
		return BatchJobRunning
	case counts[string(BatchJobFailed)] == len(classes):
		return BatchJobFailed
	default:
		return BatchJobSucceeded
	}
}

type batchStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]batchRecord
}

func newBatchStore(ttl time.Duration) *batchStore {
	return &batchStore{ttl: ttl, items: make(map[string]batchRecord)}
}

func (s *batchStore) Save(record batchRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired()
	s.items[record.ID] = record
}

func (s *batchStore) Get(id string) (batchRecord, bool) {
	s.mu.RLock()
	record, ok := s.items[id]
	if ok {
		record = record.clone()
	}
	s.mu.RUnlock()
	if !ok {
		return batchRecord{}, false
	}
	if time.Since(record.RequestedAt) > s.ttl {
		s.Delete(id)
		return batchRecord{}, false
	}
	return record, true
}

// Update replaces one class's status. Terminal states are never overwritten by a late running update.
func (s *batchStore) Update(batchID string, status dto.BatchClassStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.items[batchID]
	if !ok {
		return
	}
	current := record.Classes[status.ClassID]
	if status.Status == string(BatchJobRunning) && (current.Status == string(BatchJobSucceeded) || current.Status == string(BatchJobFailed)) {
		return
	}
	record.Classes[status.ClassID] = status
}

func (s *batchStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *batchStore) evictExpired() {
	for id, record := range s.items {
		if time.Since(record.RequestedAt) > s.ttl {
			delete(s.items, id)
		}
	}
}

func (r batchRecord) clone() batchRecord {
	classes := make(map[string]dto.BatchClassStatus, len(r.Classes))
	for k, v := range r.Classes {
		classes[k] = v
	}
	r.Classes = classes
	r.Order = append([]string(nil), r.Order...)
	return r
}
