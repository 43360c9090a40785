package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabriel/content-resolver/internal/models"
	"github.com/gabriel/content-resolver/internal/notifications"
	"github.com/gabriel/content-resolver/internal/providers"
)

type statusRepository interface {
	Record(provider string, healthy bool, lastError string, checkedAt time.Time) (*models.ProviderStatus, error)
}

type healthSource interface {
	Health(ctx context.Context) []providers.HealthStatus
}

// HealthMonitor periodically checks every registered provider, stores the
// result and notifies when a provider goes down or comes back.
type HealthMonitor struct {
	repo     statusRepository
	registry healthSource
	notifier notifications.Notifier
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
	stopCh   chan struct{}
}

type MonitorConfig struct {
	Interval     time.Duration
	CheckTimeout time.Duration
}

func NewHealthMonitor(repo statusRepository, registry healthSource, notifier notifications.Notifier, cfg MonitorConfig, logger *slog.Logger) *HealthMonitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 20 * time.Second
	}
	if notifier == nil {
		notifier = notifications.NoopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthMonitor{
		repo:     repo,
		registry: registry,
		notifier: notifier,
		interval: cfg.Interval,
		timeout:  cfg.CheckTimeout,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		stopCh:   make(chan struct{}),
	}
}

func (m *HealthMonitor) Start(ctx context.Context) {
	m.logger.Info("health monitor started", "interval", m.interval.String())
	ticker := time.NewTicker(m.interval)
	go func() {
		defer ticker.Stop()
		if err := m.RunOnce(ctx); err != nil {
			m.logger.Warn("health monitor initial run failed", "error", err)
		}
		for {
			select {
			case <-ctx.Done():
				m.logger.Info("health monitor stopped")
				close(m.stopCh)
				return
			case <-ticker.C:
				if err := m.RunOnce(ctx); err != nil {
					m.logger.Warn("health monitor cycle failed", "error", err)
				}
			}
		}
	}()
}

func (m *HealthMonitor) StopWait(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	select {
	case <-m.stopCh:
	case <-time.After(timeout):
	}
}

// RunOnce checks all providers once. Storage failures for one provider do not
// stop the others; the first one is returned.
func (m *HealthMonitor) RunOnce(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
	statuses := m.registry.Health(checkCtx)
	cancel()

	if err := ctx.Err(); err != nil {
		return err
	}

	var firstErr error
	checkedAt := m.now()
	for _, status := range statuses {
		previous, err := m.repo.Record(status.Key.String(), status.Healthy, status.Error, checkedAt)
		if err != nil {
			m.logger.Warn("record provider status failed", "provider", status.Key.String(), "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("record %s status: %w", status.Key, err)
			}
			continue
		}

		if !flipped(previous, status.Healthy) {
			continue
		}

		m.logger.Info("provider health changed", "provider", status.Key.String(), "healthy", status.Healthy, "error", status.Error)
		if err := m.notifier.Notify(ctx, healthMessage(status, checkedAt)); err != nil {
			m.logger.Warn("health notification failed", "provider", status.Key.String(), "error", err)
		}
	}

	return firstErr
}

// flipped is true on a real transition, or when the very first check finds
// the provider down.
func flipped(previous *models.ProviderStatus, healthy bool) bool {
	if previous == nil {
		return !healthy
	}
	return previous.Healthy != healthy
}

func healthMessage(status providers.HealthStatus, checkedAt time.Time) notifications.Message {
	message := notifications.Message{
		Context: map[string]any{
			"provider":  status.Key.String(),
			"healthy":   status.Healthy,
			"checkedAt": checkedAt.Format(time.RFC3339),
		},
	}
	if status.Healthy {
		message.Title = fmt.Sprintf("%s is reachable again", status.Name)
		message.Body = fmt.Sprintf("Provider %s passed its health check.", status.Key)
		return message
	}

	message.Title = fmt.Sprintf("%s is unreachable", status.Name)
	message.Body = fmt.Sprintf("Provider %s failed its health check: %s", status.Key, status.Error)
	message.Context["error"] = status.Error
	return message
}
