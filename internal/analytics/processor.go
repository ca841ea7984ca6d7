package analytics

import (
	"Linkfolio-Backend/internal/domain"
	"Linkfolio-Backend/internal/repository"
	"Linkfolio-Backend/pkg/useragent"
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Click is one visitor click waiting to be recorded.
type Click struct {
	LinkID    string
	ProfileID string
	Referrer  *string
	UserAgent *string
	Country   *string
	ClickedAt time.Time
}

// ProcessorConfig holds the worker pool settings.
type ProcessorConfig struct {
	WorkerCount     int           `yaml:"worker_count" env:"ANALYTICS_WORKER_COUNT" env-default:"3"`
	BufferSize      int           `yaml:"buffer_size" env:"ANALYTICS_BUFFER_SIZE" env-default:"1000"`
	RetryAttempts   int           `yaml:"retry_attempts" env:"ANALYTICS_RETRY_ATTEMPTS" env-default:"3"`
	RetryDelay      time.Duration `yaml:"retry_delay" env:"ANALYTICS_RETRY_DELAY" env-default:"1s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"ANALYTICS_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// DefaultConfig returns sensible defaults for the worker pool.
func DefaultConfig() ProcessorConfig {
	return ProcessorConfig{
		WorkerCount:     3,
		BufferSize:      1000,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Processor records click events asynchronously so the public click
// endpoint never waits on the database.
type Processor struct {
	config  ProcessorConfig
	storage repository.Storage
	parser  *useragent.Parser
	log     *zap.Logger

	jobQueue chan *Click
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
}

// NewProcessor creates a click processor. Start must be called before
// clicks are submitted.
func NewProcessor(storage repository.Storage, log *zap.Logger, config ProcessorConfig) *Processor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		config:   config,
		storage:  storage,
		parser:   useragent.Default(),
		log:      log,
		jobQueue: make(chan *Click, config.BufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the worker goroutines.
func (p *Processor) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("processor already started")
	}

	p.log.Info("starting click processor",
		zap.Int("workers", p.config.WorkerCount),
		zap.Int("buffer_size", p.config.BufferSize),
	)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.started = true
	return nil
}

// Stop drains the queue and waits for the workers, up to the
// configured shutdown timeout.
func (p *Processor) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return fmt.Errorf("processor not started")
	}

	p.log.Info("stopping click processor")
	p.cancel()
	close(p.jobQueue)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info("click processor stopped gracefully")
	case <-time.After(p.config.ShutdownTimeout):
		p.log.Warn("click processor shutdown timeout reached")
		return fmt.Errorf("shutdown timeout reached")
	}

	p.started = false
	return nil
}

// Submit queues a click for recording. A full queue drops the click
// rather than blocking the caller.
func (p *Processor) Submit(click *Click) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return fmt.Errorf("processor not started")
	}

	select {
	case p.jobQueue <- click:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("processor is shutting down")
	default:
		p.log.Error("click queue is full, dropping click",
			zap.String("link_id", click.LinkID),
			zap.Int("queue_size", len(p.jobQueue)),
		)
		return fmt.Errorf("click queue is full")
	}
}

func (p *Processor) worker(workerID int) {
	defer p.wg.Done()

	log := p.log.With(zap.Int("worker_id", workerID))
	log.Info("click worker started")

	for click := range p.jobQueue {
		p.recordWithRetry(log, click)
	}
	log.Info("click worker stopped")
}

// recordWithRetry records a single click with exponential backoff.
func (p *Processor) recordWithRetry(log *zap.Logger, click *Click) {
	var lastErr error

	for attempt := 1; attempt <= p.config.RetryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := p.record(ctx, click)
		cancel()

		if err == nil {
			if attempt > 1 {
				log.Info("click recorded after retry",
					zap.String("link_id", click.LinkID),
					zap.Int("attempt", attempt),
				)
			}
			return
		}

		lastErr = err
		log.Warn("click recording failed",
			zap.String("link_id", click.LinkID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt == p.config.RetryAttempts {
			break
		}

		delay := p.config.RetryDelay * time.Duration(1<<(attempt-1))
		select {
		case <-time.After(delay):
		case <-p.ctx.Done():
			log.Info("worker shutdown during retry delay")
			return
		}
	}

	log.Error("click recording failed after all retries",
		zap.String("link_id", click.LinkID),
		zap.Int("attempts", p.config.RetryAttempts),
		zap.Error(lastErr),
	)
}

func (p *Processor) record(ctx context.Context, click *Click) error {
	var deviceType *string
	if click.UserAgent != nil {
		device := p.parser.Parse(*click.UserAgent).DeviceType
		deviceType = &device
	}

	clickedAt := click.ClickedAt
	if clickedAt.IsZero() {
		clickedAt = time.Now()
	}

	event := &domain.ClickEvent{
		LinkID:     click.LinkID,
		ProfileID:  click.ProfileID,
		Referrer:   click.Referrer,
		UserAgent:  click.UserAgent,
		DeviceType: deviceType,
		Country:    click.Country,
		ClickedAt:  clickedAt,
	}
	if err := p.storage.CreateClickEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}
	return nil
}

// QueueStats reports queue depth for the readiness endpoint.
func (p *Processor) QueueStats() (length, capacity int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.jobQueue), cap(p.jobQueue)
}
