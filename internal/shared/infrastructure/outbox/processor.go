package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/kafeel/pkg/observability"
)

// ProcessorConfig holds configuration for the outbox processor.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
	// Retention is how long published messages are kept. Zero keeps them.
	Retention time.Duration
}

// DefaultProcessorConfig returns the worker defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     time.Second,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
		Retention:        7 * 24 * time.Hour,
	}
}

// Processor polls the outbox and publishes events to the message broker.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics
	now       func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	running  bool
	mu       sync.Mutex

	statsMu sync.Mutex
	stats   Stats
}

// NewProcessor creates a new outbox processor.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger, metrics observability.Metrics) *Processor {
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    observability.Component(logger, "outbox"),
		metrics:   observability.OrNoop(metrics),
		now:       time.Now,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the polling loop in a goroutine.
func (p *Processor) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
	)
}

// Stop waits for the in-flight batch and stops polling.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("outbox processor stopped")
}

// IsRunning reports whether the polling loop is active.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	cleanup := time.NewTicker(time.Hour)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error("failed to process outbox batch", "error", err)
			}
		case <-cleanup.C:
			if _, err := p.Cleanup(ctx); err != nil {
				p.logger.Warn("outbox cleanup failed", "error", err)
			}
		}
	}
}

// ProcessOnce processes a single batch synchronously.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	return p.processBatch(ctx)
}

// Cleanup deletes published messages past the retention window.
func (p *Processor) Cleanup(ctx context.Context) (int64, error) {
	if p.config.Retention <= 0 {
		return 0, nil
	}
	n, err := p.repo.DeleteOld(ctx, p.now().Add(-p.config.Retention))
	if err == nil && n > 0 {
		p.logger.Info("deleted published outbox messages", "count", n)
	}
	return n, err
}

func (p *Processor) processBatch(ctx context.Context) error {
	messages, err := p.repo.GetUnpublished(ctx, p.now(), p.config.BatchSize)
	if err != nil {
		p.recordError(err)
		return err
	}

	p.recordProcessed(messages)

	for _, msg := range messages {
		if err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload); err != nil {
			p.handleFailure(ctx, msg, err)
			continue
		}

		if err := p.repo.MarkPublished(ctx, msg.EventID, p.now()); err != nil {
			p.logger.Error("failed to mark message as published",
				"event_id", msg.EventID,
				"error", err,
			)
			continue
		}
		p.recordPublished()
		p.metrics.Counter(observability.MetricEventsPublished, 1, observability.T("routing_key", msg.RoutingKey))
	}

	return nil
}

func (p *Processor) handleFailure(ctx context.Context, msg *Message, err error) {
	p.logger.Warn("failed to publish message",
		"event_id", msg.EventID,
		"routing_key", msg.RoutingKey,
		"retry_count", msg.RetryCount,
		"error", err,
	)

	if p.shouldDeadLetter(msg) {
		p.recordDead(err)
		p.metrics.Counter(observability.MetricEventsDead, 1, observability.T("routing_key", msg.RoutingKey))
		if markErr := p.repo.MarkDead(ctx, msg.EventID, err.Error(), p.now()); markErr != nil {
			p.logger.Error("failed to dead-letter message", "event_id", msg.EventID, "error", markErr)
		}
		return
	}

	p.recordFailed(err)
	p.metrics.Counter(observability.MetricEventsFailed, 1, observability.T("routing_key", msg.RoutingKey))
	next := p.now().Add(p.retryBackoff(msg.RetryCount + 1))
	if markErr := p.repo.MarkFailed(ctx, msg.EventID, err.Error(), next); markErr != nil {
		p.logger.Error("failed to mark message as failed", "event_id", msg.EventID, "error", markErr)
	}
}

func (p *Processor) shouldDeadLetter(msg *Message) bool {
	if p.config.MaxRetries <= 0 {
		return true
	}
	return msg.RetryCount+1 >= p.config.MaxRetries
}

func (p *Processor) retryBackoff(attempt int) time.Duration {
	base := p.config.RetryBackoffBase
	if base <= 0 {
		base = time.Second
	}
	maxBackoff := p.config.RetryBackoffMax
	if maxBackoff <= 0 {
		maxBackoff = time.Minute
	}
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 31 {
		return maxBackoff
	}

	backoff := base << (attempt - 1)
	if backoff <= 0 || backoff > maxBackoff {
		return maxBackoff
	}
	return backoff
}

// Stats summarizes processor activity since start.
type Stats struct {
	IsRunning       bool
	PublishedCount  uint64
	FailedCount     uint64
	DeadCount       uint64
	LagSeconds      float64
	LastError       string
	LastErrorAt     *time.Time
	LastProcessedAt *time.Time
}

// GetStats returns a snapshot of the processor statistics.
func (p *Processor) GetStats() Stats {
	running := p.IsRunning()

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	s := p.stats
	s.IsRunning = running
	return s
}

func (p *Processor) recordPublished() {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.PublishedCount++
}

func (p *Processor) recordFailed(err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.FailedCount++
	p.setLastError(err)
}

func (p *Processor) recordDead(err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.DeadCount++
	p.setLastError(err)
}

func (p *Processor) recordError(err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.setLastError(err)
}

// setLastError requires statsMu.
func (p *Processor) setLastError(err error) {
	now := p.now()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &now
}

func (p *Processor) recordProcessed(messages []*Message) {
	now := p.now()
	lag := 0.0
	if len(messages) > 0 {
		oldest := messages[0].CreatedAt
		for _, msg := range messages[1:] {
			if msg.CreatedAt.Before(oldest) {
				oldest = msg.CreatedAt
			}
		}
		lag = now.Sub(oldest).Seconds()
	}
	p.metrics.Gauge(observability.MetricOutboxLag, lag)

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.LastProcessedAt = &now
	p.stats.LagSeconds = lag
}
