package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nep-timetable-api/internal/dto"
	"github.com/noah-isme/nep-timetable-api/internal/models"
	appErrors "github.com/noah-isme/nep-timetable-api/pkg/errors"
	"github.com/noah-isme/nep-timetable-api/pkg/jobs"
)

type classGeneratorStub struct {
	mu    sync.Mutex
	fail  map[string]error
	calls []string
}

func (s *classGeneratorStub) Generate(_ context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req.ClassID)
	if err := s.fail[req.ClassID]; err != nil {
		return nil, err
	}
	return &dto.GenerateTimetableResponse{
		Source:     string(SourceHeuristic),
		Timetable:  make([]models.TimetableEntry, 3),
		Compliance: FallbackComplianceReport(),
	}, nil
}

type recordingQueue struct {
	jobs        []jobs.Job
	rejectClass string
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	if q.rejectClass != "" && strings.HasSuffix(job.ID, ":"+q.rejectClass) {
		return errors.New("queue timetable-batch is full")
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func batchRequest(classIDs ...string) dto.BatchGenerateRequest {
	return dto.BatchGenerateRequest{SchoolID: "school-1", ClassIDs: classIDs}
}

func TestBatchServiceSubmitQueuesEveryClass(t *testing.T) {
	gen := &classGeneratorStub{}
	svc := NewBatchService(gen, nil, nil, nil, time.Hour)
	queue := &recordingQueue{}
	svc.SetQueue(queue)

	resp, err := svc.Submit(context.Background(), batchRequest("class-a", "class-b"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.BatchID)
	assert.Equal(t, string(BatchJobQueued), resp.Status)
	require.Len(t, resp.Classes, 2)
	assert.Equal(t, "class-a", resp.Classes[0].ClassID)
	require.Len(t, queue.jobs, 2)
	assert.Equal(t, BatchJobType, queue.jobs[0].Type)

	payload := queue.jobs[1].Payload.(batchJobPayload)
	assert.Equal(t, "class-b", payload.Request.ClassID)
	assert.Equal(t, "school-1", payload.Request.SchoolID)
}

func TestBatchServiceHandleJobTracksOutcome(t *testing.T) {
	gen := &classGeneratorStub{fail: map[string]error{"class-b": appErrors.Clone(appErrors.ErrNoTeachersAvailable, "no teachers")}}
	metrics := NewMetricsService()
	svc := NewBatchService(gen, metrics, nil, nil, time.Hour)
	queue := &recordingQueue{}
	svc.SetQueue(queue)

	resp, err := svc.Submit(context.Background(), batchRequest("class-a", "class-b"))
	require.NoError(t, err)

	require.NoError(t, svc.HandleJob(context.Background(), queue.jobs[0]))
	status, err := svc.Status(context.Background(), resp.BatchID)
	require.NoError(t, err)
	assert.Equal(t, string(BatchJobRunning), status.Status)

	require.NoError(t, svc.HandleJob(context.Background(), queue.jobs[1]))

	status, err = svc.Status(context.Background(), resp.BatchID)
	require.NoError(t, err)
	assert.Equal(t, string(BatchJobSucceeded), status.Status)
	assert.Equal(t, string(BatchJobSucceeded), status.Classes[0].Status)
	assert.Equal(t, 3, status.Classes[0].Entries)
	require.NotNil(t, status.Classes[0].OverallScore)
	assert.Equal(t, FallbackComplianceScore, *status.Classes[0].OverallScore)
	assert.Equal(t, string(BatchJobFailed), status.Classes[1].Status)
	assert.Equal(t, "no teachers", status.Classes[1].Error)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.batchJobsTotal.WithLabelValues(string(BatchJobSucceeded))))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.batchJobsTotal.WithLabelValues(string(BatchJobFailed))))
}

func TestBatchServiceRejectedEnqueueMarksFailed(t *testing.T) {
	svc := NewBatchService(&classGeneratorStub{}, nil, nil, nil, time.Hour)
	queue := &recordingQueue{rejectClass: "class-b"}
	svc.SetQueue(queue)

	resp, err := svc.Submit(context.Background(), batchRequest("class-a", "class-b"))
	require.NoError(t, err)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, string(BatchJobRunning), resp.Status)
	assert.Equal(t, string(BatchJobQueued), resp.Classes[0].Status)
	assert.Equal(t, string(BatchJobFailed), resp.Classes[1].Status)
	assert.Contains(t, resp.Classes[1].Error, "full")
}

func TestBatchAggregateStatus(t *testing.T) {
	assert.Equal(t, BatchJobQueued, aggregateStatus([]dto.BatchClassStatus{{Status: string(BatchJobQueued)}}))
	classes := []dto.BatchClassStatus{{Status: string(BatchJobFailed)}, {Status: string(BatchJobFailed)}}
	assert.Equal(t, BatchJobFailed, aggregateStatus(classes))
	assert.Equal(t, BatchJobSucceeded, aggregateStatus([]dto.BatchClassStatus{{Status: string(BatchJobFailed)}, {Status: string(BatchJobSucceeded)}}))
	assert.Equal(t, BatchJobRunning, aggregateStatus([]dto.BatchClassStatus{{Status: string(BatchJobQueued)}, {Status: string(BatchJobSucceeded)}}))
}

func TestBatchServiceValidation(t *testing.T) {
	svc := NewBatchService(&classGeneratorStub{}, nil, nil, nil, time.Hour)
	svc.SetQueue(&recordingQueue{})

	_, err := svc.Submit(context.Background(), batchRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Submit(context.Background(), batchRequest("a", "a"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestBatchServiceWithoutQueue(t *testing.T) {
	svc := NewBatchService(&classGeneratorStub{}, nil, nil, nil, time.Hour)
	_, err := svc.Submit(context.Background(), batchRequest("a"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnavailable))
}

func TestBatchServiceUnknownOrExpired(t *testing.T) {
	svc := NewBatchService(&classGeneratorStub{}, nil, nil, nil, time.Millisecond)
	svc.SetQueue(&recordingQueue{})

	_, err := svc.Status(context.Background(), "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	resp, err := svc.Submit(context.Background(), batchRequest("a"))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = svc.Status(context.Background(), resp.BatchID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestBatchServiceWithRealQueue(t *testing.T) {
	gen := &classGeneratorStub{}
	svc := NewBatchService(gen, nil, nil, nil, time.Hour)
	queue := jobs.NewQueue("timetable-batch", svc.HandleJob, jobs.QueueConfig{Workers: 2, OnFailure: svc.OnJobFailed})
	svc.SetQueue(queue)
	queue.Start(context.Background())
	defer queue.Stop()

	resp, err := svc.Submit(context.Background(), batchRequest("a", "b", "c"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, err := svc.Status(context.Background(), resp.BatchID)
		return err == nil && status.Status == string(BatchJobSucceeded)
	}, time.Second, 5*time.Millisecond)
}

func TestBatchServiceOnJobFailedMarksUnrunnableJob(t *testing.T) {
	svc := NewBatchService(&classGeneratorStub{}, nil, nil, nil, time.Hour)
	queue := &recordingQueue{}
	svc.SetQueue(queue)
	resp, err := svc.Submit(context.Background(), batchRequest("class-a"))
	require.NoError(t, err)

	svc.OnJobFailed(queue.jobs[0], errors.New("worker stopped"))
	status, err := svc.Status(context.Background(), resp.BatchID)
	require.NoError(t, err)
	assert.Equal(t, string(BatchJobFailed), status.Status)
}

func TestBatchServiceMakesOneRemoteCallPerClass(t *testing.T) {
	catalog := scenarioCatalog()
	catalog.Teachers = nil
	completer := &completerStub{err: errors.New("upstream down")}
	timetables := newTimetableServiceFixture(catalog, completer).svc

	svc := NewBatchService(timetables, nil, nil, nil, time.Hour)
	queue := jobs.NewQueue("timetable-batch", svc.HandleJob, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		OnFailure:  svc.OnJobFailed,
	})
	svc.SetQueue(queue)
	queue.Start(context.Background())
	defer queue.Stop()

	resp, err := svc.Submit(context.Background(), batchRequest("class-a"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return queue.Stats().Processed == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	status, err := svc.Status(context.Background(), resp.BatchID)
	require.NoError(t, err)
	assert.Equal(t, string(BatchJobFailed), status.Status)
	assert.Contains(t, status.Classes[0].Error, "no teachers")
	assert.Equal(t, 1, completer.calls)
	assert.Zero(t, queue.Stats().Failed)
}
