package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-roast/internal/logger"
	"alfredoptarigan/resume-roast/internal/models"
	"alfredoptarigan/resume-roast/internal/repositories"
)

// ArchiveJob is one successful generation waiting to be stored.
type ArchiveJob struct {
	ID         uuid.UUID
	Task       string
	ClientKey  string
	Mode       string
	Request    any
	Response   any
	DocumentID *uuid.UUID
}

// Archiver persists generations in the background so storage latency never
// reaches the response.
type Archiver interface {
	Start(ctx context.Context)
	Stop()
	// Enqueue queues job without blocking. It reports false when the job was dropped.
	Enqueue(job ArchiveJob) bool
}

type archiver struct {
	repo        repositories.GenerationRepository
	logger      *zap.Logger
	jobQueue    chan ArchiveJob
	concurrency int
	wg          sync.WaitGroup
	stopOnce    sync.Once
	stopChan    chan struct{}
}

func NewArchiver(repo repositories.GenerationRepository, concurrency, queueSize int, log *zap.Logger) Archiver {
	if concurrency <= 0 {
		concurrency = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	return &archiver{
		repo:        repo,
		logger:      logger.OrNop(log),
		jobQueue:    make(chan ArchiveJob, queueSize),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Archiver.
func (a *archiver) Start(ctx context.Context) {
	a.logger.Info("starting archiver", zap.Int("workers", a.concurrency))

	for i := 0; i < a.concurrency; i++ {
		a.wg.Add(1)
		go a.processJobs(ctx, i+1)
	}
}

// Stop implements Archiver. Queued jobs are written before it returns.
func (a *archiver) Stop() {
	a.stopOnce.Do(func() {
		a.logger.Info("stopping archiver")
		close(a.stopChan)
		a.wg.Wait()
		a.logger.Info("archiver stopped")
	})
}

// Enqueue implements Archiver.
func (a *archiver) Enqueue(job ArchiveJob) bool {
	select {
	case <-a.stopChan:
		a.logger.Warn("archiver stopped, dropping generation", zap.String("task", job.Task))
		return false
	default:
	}

	select {
	case a.jobQueue <- job:
		return true
	default:
		a.logger.Warn("archive queue full, dropping generation",
			zap.String("task", job.Task),
			zap.Int("queue_size", cap(a.jobQueue)),
		)
		return false
	}
}

func (a *archiver) processJobs(ctx context.Context, workerID int) {
	defer a.wg.Done()

	for {
		select {
		case <-a.stopChan:
			a.drain(ctx, workerID)
			return
		case job := <-a.jobQueue:
			a.store(ctx, workerID, job)
		}
	}
}

func (a *archiver) drain(ctx context.Context, workerID int) {
	for {
		select {
		case job := <-a.jobQueue:
			a.store(ctx, workerID, job)
		default:
			return
		}
	}
}

func (a *archiver) store(ctx context.Context, workerID int, job ArchiveJob) {
	gen, err := job.toGeneration()
	if err != nil {
		a.logger.Error("failed to encode generation", zap.String("task", job.Task), zap.Error(err))
		return
	}

	if err := a.repo.Create(context.WithoutCancel(ctx), gen); err != nil {
		a.logger.Error("failed to archive generation",
			zap.Int("worker", workerID),
			zap.String("task", job.Task),
			zap.Error(err),
		)
		return
	}

	a.logger.Debug("generation archived",
		zap.Int("worker", workerID),
		zap.String("task", job.Task),
		zap.String("id", gen.ID.String()),
	)
}

func (j ArchiveJob) toGeneration() (*models.Generation, error) {
	request, err := json.Marshal(j.Request)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	response, err := json.Marshal(j.Response)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}

	id := j.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &models.Generation{
		ID:           id,
		Task:         j.Task,
		ClientKey:    j.ClientKey,
		ProviderMode: j.Mode,
		Request:      request,
		Response:     response,
		DocumentID:   j.DocumentID,
	}, nil
}
