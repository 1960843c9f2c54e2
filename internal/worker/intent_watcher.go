package worker

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cheatloop/storefront/internal/engine"
	"github.com/cheatloop/storefront/internal/pkg/distlock"
	"github.com/cheatloop/storefront/internal/pkg/logger"
	"github.com/cheatloop/storefront/internal/service/intents"
)

const (
	// DefaultWatchInterval is how often to poll for fresh purchase intents.
	DefaultWatchInterval = 5 * time.Second

	// DefaultIntentLimit bounds each poll to the newest intents; older rows
	// have already been seen or belong to history views.
	DefaultIntentLimit = 20
)

// IntentWatcher polls for new purchase intents and publishes them to the
// intent hub so dashboard clients get near-realtime notifications.
type IntentWatcher struct {
	svc         *intents.Service
	hub         *engine.IntentHub
	redisClient *redis.Client // optional; nil falls back to PG advisory locks
	db          *sql.DB
	interval    time.Duration
	limit       int

	// Stats
	polls     int64
	published int64

	// Control
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewIntentWatcher creates an intent watcher with default polling settings.
func NewIntentWatcher(svc *intents.Service, hub *engine.IntentHub, db *sql.DB) *IntentWatcher {
	return &IntentWatcher{
		svc:      svc,
		hub:      hub,
		db:       db,
		interval: DefaultWatchInterval,
		limit:    DefaultIntentLimit,
	}
}

// SetRedisClient sets the Redis client for distributed locking. If set, the
// watcher uses Redis-based locks; otherwise it falls back to PostgreSQL
// advisory locks.
func (w *IntentWatcher) SetRedisClient(client *redis.Client) {
	w.redisClient = client
}

// SetInterval overrides the poll interval.
func (w *IntentWatcher) SetInterval(d time.Duration) {
	if d > 0 {
		w.interval = d
	}
}

// SetLimit overrides how many newest intents each poll fetches.
func (w *IntentWatcher) SetLimit(n int) {
	if n > 0 {
		w.limit = n
	}
}

// Start begins the polling loop.
func (w *IntentWatcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("intent watcher already running")
	}
	w.running = true
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.mu.Unlock()

	logger.Info("intent watcher starting", "interval", w.interval, "limit", w.limit)

	w.wg.Add(1)
	go w.watchLoop()
	return nil
}

// Stop halts the polling loop and waits for it to finish.
func (w *IntentWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.cancel()
	w.mu.Unlock()

	w.wg.Wait()
	logger.Info("intent watcher stopped")
}

// Stats returns poll and publish counters.
func (w *IntentWatcher) Stats() map[string]int64 {
	return map[string]int64{
		"polls":     atomic.LoadInt64(&w.polls),
		"published": atomic.LoadInt64(&w.published),
	}
}

func (w *IntentWatcher) watchLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// First poll primes the hub's seen set so a restart doesn't replay
	// existing intents as new.
	w.poll(w.ctx)

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.poll(w.ctx)
		}
	}
}

func (w *IntentWatcher) poll(ctx context.Context) {
	// One replica polls at a time; the TTL covers a wedged poll.
	lock := distlock.NewLock(w.redisClient, w.db, "intent-watcher", 2*w.interval)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		logger.Warn("intent watcher lock error", "error", err)
		return
	}
	if !acquired {
		return
	}
	defer lock.Release(ctx)

	atomic.AddInt64(&w.polls, 1)

	latest, err := w.svc.List(ctx, w.limit)
	if err != nil {
		logger.Error("intent poll failed", "error", err)
		return
	}

	fresh := w.hub.Merge(latest)
	for _, in := range fresh {
		atomic.AddInt64(&w.published, 1)
		logger.Info("new purchase intent",
			"intent_id", in.ID,
			"product", in.ProductTitle,
			"email", in.Email,
			"country", in.Country)
	}
}
