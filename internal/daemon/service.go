// Package daemon serves the calorie ledger over a local HTTP API and streams
// changes to subscribers.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/theirongolddev/foogie/internal/mealsync"
	"github.com/theirongolddev/foogie/internal/model"
)

// Ledger is the subset of the calorie ledger the daemon drives.
type Ledger interface {
	Summary(ctx context.Context) (model.Summary, error)
	LogMeal(ctx context.Context, name string, calories float64, n model.Nutrition) (model.MealEntry, error)
	RemoveMeal(ctx context.Context, index int) (model.MealEntry, bool, error)
	TodaysMeals(ctx context.Context) ([]model.MealEntry, error)
	Settings() model.Settings
	ApplySettings(ctx context.Context, u model.SettingsUpdate) (model.Settings, error)
	ReloadSettings(ctx context.Context) (model.Settings, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration
	EventsBuffer int
	AllowOrigins []string
	DBPath       string
}

// Snapshot is a compact ledger state for status/event payloads.
type Snapshot struct {
	At              time.Time `json:"at"`
	Date            string    `json:"date"`
	Goal            int       `json:"goal"`
	Consumed        float64   `json:"consumed"`
	Remaining       float64   `json:"remaining"`
	MealCount       int       `json:"meal_count"`
	MealsLeft       int       `json:"meals_left"`
	CaloriesPerMeal int       `json:"calories_per_meal"`
	PercentConsumed int       `json:"percent_consumed"`
	IsOverGoal      bool      `json:"is_over_goal"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	NewDay    bool    `json:"new_day,omitempty"`
	Goal      int     `json:"goal"`
	Consumed  float64 `json:"consumed"`
	MealCount int     `json:"meal_count"`
}

func (d Delta) isZero() bool {
	return !d.NewDay &&
		d.Goal == 0 &&
		d.Consumed == 0 &&
		d.MealCount == 0
}

// Event types.
const (
	EventSnapshot    = "snapshot"
	EventLedgerDelta = "ledger_delta"
	EventRemoteSync  = "remote_sync"
)

// Event is emitted whenever the ledger snapshot changes or a meal-sync
// notification arrives at the local sink.
type Event struct {
	ID        int64          `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Snapshot  Snapshot       `json:"snapshot"`
	Delta     Delta          `json:"delta"`
	Sync      *mealsync.Meal `json:"sync,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time      `json:"started_at"`
	LastPollAt      time.Time      `json:"last_poll_at"`
	PollIntervalSec int            `json:"poll_interval_sec"`
	PollCount       int64          `json:"poll_count"`
	DBPath          string         `json:"db_path,omitempty"`
	Settings        model.Settings `json:"settings"`
	Summary         Snapshot       `json:"summary"`
	LastError       string         `json:"last_error,omitempty"`
	EventCount      int            `json:"event_count"`
	SubscriberCount int            `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg    Config
	ledger Ledger
	log    *slog.Logger
	now    func() time.Time

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service over l with the provided config.
func New(cfg Config, l Ledger, logger *slog.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 15 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cfg:       cfg,
		ledger:    l,
		log:       logger.With("component", "daemon"),
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler builds the gin engine serving the HTTP API.
func (s *Service) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	origins := s.cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "X-Request-ID"},
	}))

	r.GET("/healthz", s.handleHealth)

	v1 := r.Group("/v1")
	v1.GET("/status", s.handleStatus)
	v1.GET("/summary", s.handleSummary)
	v1.GET("/meals", s.handleListMeals)
	v1.POST("/meals", s.handleLogMeal)
	v1.DELETE("/meals/:index", s.handleDeleteMeal)
	v1.GET("/settings", s.handleGetSettings)
	v1.PUT("/settings", s.handlePutSettings)
	v1.GET("/events", s.handleEvents)
	v1.GET("/stream", s.handleStream)

	r.POST("/api/calorie-tracker", s.handleSyncSink)

	return r
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("daemon listening", "addr", s.cfg.Addr, "interval", s.cfg.Interval)

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// pollOnce re-reads settings and the summary, publishing an event when the
// snapshot moved. Reading the summary also performs the day rollover.
func (s *Service) pollOnce(ctx context.Context) {
	if _, err := s.ledger.ReloadSettings(ctx); err != nil {
		s.recordPollError(err)
		return
	}
	sum, err := s.ledger.Summary(ctx)
	if err != nil {
		s.recordPollError(err)
		return
	}

	now := s.now()
	snap := snapshotFromSummary(sum, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      EventSnapshot,
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      EventLedgerDelta,
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func (s *Service) recordPollError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.lastPollAt = s.now()
	s.pollCount++
	s.mu.Unlock()
	s.log.Error("daemon poll failed", "err", err)
}

func snapshotFromSummary(sum model.Summary, at time.Time) Snapshot {
	return Snapshot{
		At:              at,
		Date:            model.DayOf(at),
		Goal:            sum.Goal,
		Consumed:        sum.Consumed,
		Remaining:       sum.Remaining,
		MealCount:       len(sum.Meals),
		MealsLeft:       sum.MealsLeft,
		CaloriesPerMeal: sum.CaloriesPerMeal,
		PercentConsumed: sum.PercentConsumed,
		IsOverGoal:      sum.IsOverGoal,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		NewDay:    prev.Date != curr.Date,
		Goal:      curr.Goal - prev.Goal,
		Consumed:  curr.Consumed - prev.Consumed,
		MealCount: curr.MealCount - prev.MealCount,
	}
}

// publishEvent appends ev to the ring buffer and fans it out without
// blocking on slow subscribers.
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

func (s *Service) snapshotStatus() Status {
	settings := s.ledger.Settings()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		Settings:        settings,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func (s *Service) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
