package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/datkv/itch-creators/app/cfg"
	"github.com/datkv/itch-creators/app/discover"
	"github.com/datkv/itch-creators/app/enrich"
	"github.com/datkv/itch-creators/app/scoring"
	"github.com/datkv/itch-creators/app/sources"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// backfillBatchSize bounds how many creators one pipeline cycle walks;
// the rest are picked up on later cycles.
const backfillBatchSize = 100

// taskTimeout bounds a single stage execution. Stages persist work as they
// go, so a timeout defers the remainder to the next cycle.
const taskTimeout = 10 * time.Minute

var ErrUnknownTaskType = errors.New("unknown task type")

type Scheduler struct {
	discovery   *discover.FeedDiscovery
	backfiller  *discover.Backfiller
	crawler     *discover.BrowseCrawler
	enricher    *enrich.Enricher
	scorer      *scoring.Scorer
	browsePages []sources.BrowsePage
	enrichLimit int
	staleDays   int
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(discovery *discover.FeedDiscovery, backfiller *discover.Backfiller,
	crawler *discover.BrowseCrawler, enricher *enrich.Enricher, scorer *scoring.Scorer,
	browsePages []sources.BrowsePage) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		discovery:   discovery,
		backfiller:  backfiller,
		crawler:     crawler,
		enricher:    enricher,
		scorer:      scorer,
		browsePages: browsePages,
		enrichLimit: cfg.EnrichLimit,
		staleDays:   cfg.StaleDays,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueuePipeline()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueuePipeline()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// Trigger builds and enqueues a stage task by its type name. Serves the
// manual trigger endpoint.
func (s *Scheduler) Trigger(taskType string) (TaskInterface, error) {
	task, err := s.newStageTask(TaskType(taskType))
	if err != nil {
		return nil, err
	}

	if err := s.EnqueueTask(task); err != nil {
		return nil, err
	}

	return task, nil
}

// enqueuePipeline queues one full pass in pipeline order. Browse discovery
// runs on manual trigger only.
func (s *Scheduler) enqueuePipeline() {
	pipeline := []TaskType{
		TaskTypePollFeeds,
		TaskTypeBackfillCreators,
		TaskTypeEnrichGames,
		TaskTypeRefreshStale,
		TaskTypeScoreCreators,
	}

	for _, taskType := range pipeline {
		task, err := s.newStageTask(taskType)
		if err != nil {
			slog.Warn("Failed to build stage task", "type", string(taskType), "error", err)
			continue
		}

		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue stage task", "type", string(taskType), "error", err)
		}
	}
}

func (s *Scheduler) newStageTask(taskType TaskType) (TaskInterface, error) {
	switch taskType {
	case TaskTypePollFeeds:
		return NewPollFeedsTask(s.discovery), nil
	case TaskTypeBackfillCreators:
		return NewBackfillCreatorsTask(s.backfiller, backfillBatchSize), nil
	case TaskTypeEnrichGames:
		return NewEnrichGamesTask(s.enricher, s.enrichLimit), nil
	case TaskTypeRefreshStale:
		return NewRefreshStaleTask(s.enricher, s.staleDays, s.enrichLimit), nil
	case TaskTypeScoreCreators:
		return NewScoreCreatorsTask(s.scorer), nil
	case TaskTypeDiscoverBrowse:
		return NewDiscoverBrowseTask(s.crawler, s.browsePages), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
