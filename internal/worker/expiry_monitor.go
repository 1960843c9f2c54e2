package worker

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cheatloop/storefront/internal/domain"
	"github.com/cheatloop/storefront/internal/pkg/distlock"
	"github.com/cheatloop/storefront/internal/pkg/logger"
	"github.com/cheatloop/storefront/internal/service/keys"
)

const (
	// DefaultExpiryCheckInterval is how often redeemed keys are scanned for
	// approaching subscription expiry.
	DefaultExpiryCheckInterval = time.Hour

	// Warning buckets for the dashboard. A key falls in the tightest bucket
	// that still contains it.
	urgentWarning = 3 * 24 * time.Hour
	earlyWarning  = 7 * 24 * time.Hour
)

// ExpiringKey is one redeemed key approaching its subscription expiry.
type ExpiringKey struct {
	KeyID     string    `json:"key_id"`
	ProductID string    `json:"product_id"`
	Email     string    `json:"email"`
	UsedAt    time.Time `json:"used_at"`
	ExpiresAt time.Time `json:"expires_at"`
	DaysLeft  int       `json:"days_left"`
	Urgent    bool      `json:"urgent"`
}

// ExpiryReport summarizes the subscription state of all redeemed keys.
type ExpiryReport struct {
	GeneratedAt  time.Time     `json:"generated_at"`
	ActiveCount  int           `json:"active_count"`
	ExpiredCount int           `json:"expired_count"`
	ExpiringSoon []ExpiringKey `json:"expiring_soon"`
}

// ExpiryMonitor periodically scans redeemed keys and logs subscriptions that
// are about to run out. The latest report is kept for the admin API.
type ExpiryMonitor struct {
	svc         *keys.Service
	redisClient *redis.Client // optional; nil falls back to PG advisory locks
	db          *sql.DB
	interval    time.Duration

	lastReport *ExpiryReport
	reportMu   sync.RWMutex

	// Control
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewExpiryMonitor creates an expiry monitor with the default scan interval.
func NewExpiryMonitor(svc *keys.Service, db *sql.DB) *ExpiryMonitor {
	return &ExpiryMonitor{
		svc:      svc,
		db:       db,
		interval: DefaultExpiryCheckInterval,
	}
}

// SetRedisClient sets the Redis client for distributed locking.
func (m *ExpiryMonitor) SetRedisClient(client *redis.Client) {
	m.redisClient = client
}

// SetInterval overrides the scan interval.
func (m *ExpiryMonitor) SetInterval(d time.Duration) {
	if d > 0 {
		m.interval = d
	}
}

// Start begins the scan loop.
func (m *ExpiryMonitor) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("expiry monitor already running")
	}
	m.running = true
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.mu.Unlock()

	logger.Info("expiry monitor starting", "interval", m.interval)

	m.wg.Add(1)
	go m.scanLoop()
	return nil
}

// Stop halts the scan loop and waits for it to finish.
func (m *ExpiryMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.cancel()
	m.mu.Unlock()

	m.wg.Wait()
	logger.Info("expiry monitor stopped")
}

// LastReport returns the most recent scan result, or nil before the first scan.
func (m *ExpiryMonitor) LastReport() *ExpiryReport {
	m.reportMu.RLock()
	defer m.reportMu.RUnlock()
	return m.lastReport
}

func (m *ExpiryMonitor) scanLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.scan(m.ctx)

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.scan(m.ctx)
		}
	}
}

func (m *ExpiryMonitor) scan(ctx context.Context) {
	lock := distlock.NewLock(m.redisClient, m.db, "expiry-monitor", m.interval)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		logger.Warn("expiry monitor lock error", "error", err)
		return
	}
	if !acquired {
		return
	}
	defer lock.Release(ctx)

	report, err := m.BuildReport(ctx, time.Now())
	if err != nil {
		logger.Error("expiry scan failed", "error", err)
		return
	}

	m.reportMu.Lock()
	m.lastReport = report
	m.reportMu.Unlock()

	for _, k := range report.ExpiringSoon {
		if k.Urgent {
			logger.Warn("subscription expiring soon",
				"key_id", k.KeyID,
				"email", k.Email,
				"days_left", k.DaysLeft)
		}
	}
	logger.Info("expiry scan complete",
		"active", report.ActiveCount,
		"expired", report.ExpiredCount,
		"expiring_soon", len(report.ExpiringSoon))
}

// BuildReport computes expiry state for every redeemed key as of now.
func (m *ExpiryMonitor) BuildReport(ctx context.Context, now time.Time) (*ExpiryReport, error) {
	used := true
	redeemed, err := m.svc.List(ctx, keys.Filter{IsUsed: &used})
	if err != nil {
		return nil, err
	}

	report := &ExpiryReport{GeneratedAt: now}
	for _, k := range redeemed {
		if k.UsedAt == nil {
			continue
		}
		if keys.Status(*k.UsedAt, now) == keys.StatusExpired {
			report.ExpiredCount++
			continue
		}
		report.ActiveCount++
		if keys.ExpiringWithin(*k.UsedAt, now, earlyWarning) {
			report.ExpiringSoon = append(report.ExpiringSoon, expiringKey(k, now))
		}
	}
	return report, nil
}

func expiringKey(k domain.ProductKey, now time.Time) ExpiringKey {
	expiry := keys.ComputeExpiry(*k.UsedAt)
	email := ""
	if k.UsedByEmail != nil {
		email = *k.UsedByEmail
	}
	return ExpiringKey{
		KeyID:     k.ID,
		ProductID: k.ProductID,
		Email:     email,
		UsedAt:    *k.UsedAt,
		ExpiresAt: expiry,
		DaysLeft:  int(expiry.Sub(now).Hours() / 24),
		Urgent:    keys.ExpiringWithin(*k.UsedAt, now, urgentWarning),
	}
}
