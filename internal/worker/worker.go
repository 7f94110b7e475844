package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campusbridge/connect/internal/conferences"
	"github.com/campusbridge/connect/pkg/queue"
)

// ArchiveSyncProcessor processes archive sync jobs: fetch the conference's
// recording catalog from Adobe Connect and upsert it into the local cache
// table. The live recordings endpoint stays authoritative; this keeps the
// cached copy eventually consistent.
type ArchiveSyncProcessor struct {
	repo       *conferences.Repository
	controller *conferences.Controller
	queue      *queue.Queue
	logger     *zap.Logger
}

// NewArchiveSyncProcessor creates an archive sync processor.
func NewArchiveSyncProcessor(repo *conferences.Repository, controller *conferences.Controller, q *queue.Queue, logger *zap.Logger) *ArchiveSyncProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveSyncProcessor{repo: repo, controller: controller, queue: q, logger: logger}
}

// Process executes one archive sync job.
func (p *ArchiveSyncProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeArchiveSync {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ArchiveSyncPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	conf, err := p.repo.GetByID(ctx, payload.ConferenceID)
	if err != nil {
		return fmt.Errorf("load conference: %w", err)
	}
	if conf == nil {
		return fmt.Errorf("conference not found: %d", payload.ConferenceID)
	}

	recordings, err := p.controller.Recordings(ctx, conf)
	if err != nil {
		return fmt.Errorf("fetch recordings: %w", err)
	}
	for i := range recordings {
		if err := p.repo.UpsertRecording(ctx, &recordings[i]); err != nil {
			return fmt.Errorf("upsert recording %s: %w", recordings[i].ScoID, err)
		}
	}

	p.logger.Info("archive sync completed",
		zap.Int64("conference_id", conf.ID),
		zap.Int("recordings", len(recordings)))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *ArchiveSyncProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("archive sync worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
