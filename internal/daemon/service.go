// Package daemon keeps a workbook loaded for long-running surfaces and reloads
// it whenever the file changes on disk.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/clubsmell/fragdash/internal/metrics"
	"github.com/clubsmell/fragdash/internal/pipeline"
	"github.com/clubsmell/fragdash/internal/store"
)

// ErrNotLoaded is returned by Dataset before the first successful load.
var ErrNotLoaded = errors.New("workbook not loaded yet")

// Config controls the watcher runtime behavior.
type Config struct {
	Workbook     string
	Options      pipeline.Options
	UseCache     bool
	CachePath    string // defaults to pipeline.CachePath()
	Interval     time.Duration
	EventsBuffer int
	Logger       *zap.Logger
}

// Snapshot is a compact dataset state for status/event payloads.
type Snapshot struct {
	At         time.Time `json:"at"`
	Fragrances int       `json:"fragrances"`
	Tracked    int       `json:"tracked"`
	Periods    int       `json:"periods"`
	Wears      float64   `json:"wears"`
	Issues     int       `json:"issues"`
	CacheHit   bool      `json:"cache_hit"`
}

// Delta captures snapshot deltas between reloads.
type Delta struct {
	Fragrances int     `json:"fragrances"`
	Tracked    int     `json:"tracked"`
	Periods    int     `json:"periods"`
	Wears      float64 `json:"wears"`
}

func (d Delta) isZero() bool {
	return d.Fragrances == 0 &&
		d.Tracked == 0 &&
		d.Periods == 0 &&
		d.Wears == 0
}

// Event is emitted after the first load and whenever a reload changes the data.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"` // "snapshot", "wears_delta" or "reload_error"
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
	Error     string    `json:"error,omitempty"`
}

// Status is served at /api/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	LastReloadAt    time.Time `json:"last_reload_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	ReloadCount     int64     `json:"reload_count"`
	Workbook        string    `json:"workbook"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

// Service owns the current dataset. Readers get an immutable *pipeline.Dataset;
// a reload swaps the pointer and never touches a dataset already handed out.
type Service struct {
	cfg Config
	log *zap.Logger

	mu           sync.RWMutex
	startedAt    time.Time
	lastPollAt   time.Time
	lastReloadAt time.Time
	pollCount    int64
	reloadCount  int64
	lastError    string
	stamp        fileStamp
	dataset      *pipeline.Dataset
	hasSnapshot  bool
	snapshot     Snapshot
	nextEventID  int64
	events       []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new watcher with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.CachePath == "" {
		cfg.CachePath = pipeline.CachePath()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		cfg:       cfg,
		log:       log,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run loads the workbook and polls it until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	// Seed the dataset so the dashboard is useful immediately.
	s.PollOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.PollOnce()
		}
	}
}

// PollOnce reloads the workbook when its modification time or size differs
// from the loaded copy. A failed reload keeps serving the previous dataset.
func (s *Service) PollOnce() {
	info, err := os.Stat(s.cfg.Workbook)
	if err != nil {
		s.recordError(fmt.Errorf("stat workbook: %w", err))
		return
	}
	stamp := fileStamp{modTime: info.ModTime(), size: info.Size()}

	s.mu.Lock()
	s.lastPollAt = time.Now()
	s.pollCount++
	unchanged := s.dataset != nil && s.stamp == stamp
	s.mu.Unlock()

	if unchanged {
		return
	}
	if err := s.reload(stamp); err != nil {
		s.recordError(err)
	}
}

func (s *Service) reload(stamp fileStamp) error {
	start := time.Now()
	ds, cacheHit, err := s.loadDataset()
	metrics.WorkbookLoadDuration.Observe(time.Since(start).Seconds())

	origin := "parse"
	if cacheHit {
		origin = "cache"
	}
	if err != nil {
		metrics.WorkbookLoadsTotal.WithLabelValues(origin, "error").Inc()
		return err
	}
	metrics.WorkbookLoadsTotal.WithLabelValues(origin, "ok").Inc()

	now := time.Now()
	snap := snapshotFromDataset(ds, cacheHit, now)
	metrics.DatasetFragrances.Set(float64(snap.Fragrances))
	metrics.DatasetWears.Set(snap.Wears)
	metrics.WorkbookIssues.Set(float64(snap.Issues))

	s.log.Info("workbook loaded",
		zap.String("path", s.cfg.Workbook),
		zap.Bool("cache_hit", cacheHit),
		zap.Int("fragrances", snap.Fragrances),
		zap.Int("periods", snap.Periods),
		zap.Int("issues", snap.Issues),
		zap.Duration("took", time.Since(start)),
	)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.dataset = ds
	s.stamp = stamp
	s.hasSnapshot = true
	s.snapshot = snap
	s.lastReloadAt = now
	s.reloadCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "snapshot", Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "wears_delta", Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
	return nil
}

func (s *Service) recordError(err error) {
	s.log.Warn("workbook reload failed", zap.String("path", s.cfg.Workbook), zap.Error(err))

	s.mu.Lock()
	repeated := s.lastError == err.Error()
	s.lastError = err.Error()
	s.lastPollAt = time.Now()
	snap := s.snapshot
	var ev Event
	if !repeated {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "reload_error", Timestamp: time.Now(), Snapshot: snap, Error: err.Error()}
	}
	s.mu.Unlock()

	if !repeated {
		s.publishEvent(ev)
	}
}

func (s *Service) loadDataset() (*pipeline.Dataset, bool, error) {
	if s.cfg.UseCache {
		cache, err := store.Open(s.cfg.CachePath)
		if err == nil {
			defer func() { _ = cache.Close() }()
			cr, loadErr := pipeline.LoadWithCache(s.cfg.Workbook, s.cfg.Options, cache, nil)
			if loadErr == nil {
				return &cr.Dataset, cr.CacheHit, nil
			}
			s.log.Debug("cached load failed, parsing directly", zap.Error(loadErr))
		}
	}

	result, err := pipeline.Load(s.cfg.Workbook, s.cfg.Options, nil)
	if err != nil {
		return nil, false, err
	}
	return &result.Dataset, false, nil
}

func snapshotFromDataset(ds *pipeline.Dataset, cacheHit bool, at time.Time) Snapshot {
	stats := pipeline.Overview(ds.Catalog, ds.Records)
	return Snapshot{
		At:         at,
		Fragrances: stats.Fragrances,
		Tracked:    stats.Tracked,
		Periods:    len(ds.Periods),
		Wears:      stats.TotalUses,
		Issues:     len(ds.Issues),
		CacheHit:   cacheHit,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Fragrances: curr.Fragrances - prev.Fragrances,
		Tracked:    curr.Tracked - prev.Tracked,
		Periods:    curr.Periods - prev.Periods,
		Wears:      curr.Wears - prev.Wears,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

// Dataset returns the most recently loaded dataset.
func (s *Service) Dataset() (*pipeline.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		if s.lastError != "" {
			return nil, fmt.Errorf("%w: %s", ErrNotLoaded, s.lastError)
		}
		return nil, ErrNotLoaded
	}
	return s.dataset, nil
}

// Status reports poll counters and the current snapshot.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		LastReloadAt:    s.lastReloadAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		ReloadCount:     s.reloadCount,
		Workbook:        s.cfg.Workbook,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

// Events returns a copy of the buffered events, oldest first.
func (s *Service) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	return events
}

// Subscribe registers a channel that receives every future event. Slow
// subscribers miss events rather than block reloads. Call the returned
// function to unsubscribe.
func (s *Service) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, max(buffer, 1))

	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
