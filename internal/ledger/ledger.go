// Package ledger implements the daily calorie ledger: a day-scoped record of
// logged meals with running nutrition totals and derived budget metrics.
//
// Every read goes back to storage so that a log left over from a previous day
// is replaced by a fresh one before anything observes it. Writes are
// compare-and-swap against the bytes that were read, so two processes sharing
// one database cannot silently overwrite each other's meals.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/theirongolddev/foogie/internal/mealsync"
	"github.com/theirongolddev/foogie/internal/model"
	"github.com/theirongolddev/foogie/internal/store"
)

// Storage keys used unless overridden with WithKeys.
const (
	LogKey      = "foogie-calorie-log"
	SettingsKey = "foogie-settings"
)

const (
	maxAttempts        = 8
	defaultSyncTimeout = 10 * time.Second
)

var (
	// ErrConflict is returned when concurrent writers kept invalidating a write.
	ErrConflict = errors.New("ledger: too many concurrent updates")
	// ErrInvalidMeal is returned by LogMeal for negative or non-finite
	// calories or macros.
	ErrInvalidMeal = errors.New("ledger: invalid meal")
)

// Storage is the key-value substrate the ledger persists to.
// Get must return store.ErrNotFound for a key that was never written.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	CompareAndSwap(ctx context.Context, key string, prev, next []byte) (bool, error)
}

// Syncer receives a notification after every logged meal.
type Syncer interface {
	SyncMeal(ctx context.Context, m mealsync.Meal) error
}

// Archive keeps the logs of past days.
type Archive interface {
	ArchiveDay(ctx context.Context, rec model.DayRecord) error
	History(ctx context.Context, limit int) ([]model.DayRecord, error)
}

// Ledger owns the current day's log. Safe for concurrent use.
type Ledger struct {
	mu       sync.Mutex
	settings model.Settings

	storage     Storage
	syncer      Syncer
	archive     Archive
	log         *slog.Logger
	now         func() time.Time
	logKey      string
	settingsKey string
	syncTimeout time.Duration
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithSyncer sets the remote meal notifier.
func WithSyncer(s Syncer) Option { return func(l *Ledger) { l.syncer = s } }

// WithArchive stores superseded days in a.
func WithArchive(a Archive) Option { return func(l *Ledger) { l.archive = a } }

// WithLogger sets the logger used for swallowed failures.
func WithLogger(lg *slog.Logger) Option { return func(l *Ledger) { l.log = lg } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(l *Ledger) { l.now = now } }

// WithSyncTimeout bounds each remote notification.
func WithSyncTimeout(d time.Duration) Option { return func(l *Ledger) { l.syncTimeout = d } }

// WithKeys overrides the storage keys for the log and the settings.
func WithKeys(logKey, settingsKey string) Option {
	return func(l *Ledger) {
		l.logKey = logKey
		l.settingsKey = settingsKey
	}
}

// New loads the settings and makes sure today's log exists.
func New(ctx context.Context, storage Storage, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		storage:     storage,
		log:         slog.Default(),
		now:         time.Now,
		logKey:      LogKey,
		settingsKey: SettingsKey,
		syncTimeout: defaultSyncTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}

	settings, err := l.readSettings(ctx)
	if err != nil {
		return nil, err
	}
	l.settings = settings

	if _, _, err := l.current(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// Log returns today's log, replacing a stale or unreadable one first.
func (l *Ledger) Log(ctx context.Context) (model.DailyLog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	log, _, err := l.current(ctx)
	return log, err
}

// LogMeal appends a meal and persists it, then notifies the syncer.
// Sync failures are logged and never returned. Negative or non-finite
// amounts are rejected with ErrInvalidMeal before anything is written.
func (l *Ledger) LogMeal(ctx context.Context, name string, calories float64, n model.Nutrition) (model.MealEntry, error) {
	if err := checkAmounts(calories, n); err != nil {
		return model.MealEntry{}, err
	}
	servings := n.Servings
	if servings <= 0 {
		servings = 1
	}

	l.mu.Lock()
	entry := model.MealEntry{
		Name:      name,
		Calories:  calories,
		Protein:   n.Protein,
		Carbs:     n.Carbs,
		Fats:      n.Fats,
		Servings:  servings,
		Timestamp: l.now().UTC(),
	}
	_, _, err := l.mutate(ctx, func(log *model.DailyLog) bool {
		log.Add(entry)
		return true
	})
	l.mu.Unlock()
	if err != nil {
		return model.MealEntry{}, err
	}

	l.notify(ctx, entry)
	return entry, nil
}

// DeleteMeal removes the meal at index. It reports false, leaving the log
// untouched, when index is out of range.
func (l *Ledger) DeleteMeal(ctx context.Context, index int) (bool, error) {
	_, ok, err := l.RemoveMeal(ctx, index)
	return ok, err
}

// RemoveMeal is DeleteMeal that also returns the entry it removed, read in
// the same write that removed it.
func (l *Ledger) RemoveMeal(ctx context.Context, index int) (model.MealEntry, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed model.MealEntry
	_, changed, err := l.mutate(ctx, func(log *model.DailyLog) bool {
		if index < 0 || index >= len(log.Meals) {
			return false
		}
		removed = log.Meals[index]
		return log.Remove(index)
	})
	if err != nil || !changed {
		return model.MealEntry{}, false, err
	}
	return removed, true, nil
}

// TodaysMeals returns a copy of today's meals in logging order.
func (l *Ledger) TodaysMeals(ctx context.Context) ([]model.MealEntry, error) {
	log, err := l.Log(ctx)
	if err != nil {
		return nil, err
	}
	return log.Meals, nil
}

// ConsumedCalories returns today's calorie total.
func (l *Ledger) ConsumedCalories(ctx context.Context) (float64, error) {
	log, err := l.Log(ctx)
	if err != nil {
		return 0, err
	}
	return log.TotalCalories, nil
}

// RemainingCalories returns goal minus consumed. Negative means over goal.
func (l *Ledger) RemainingCalories(ctx context.Context) (float64, error) {
	s, log, err := l.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return remaining(s, log), nil
}

// MealsLeft returns how many of the planned meals are still to come.
func (l *Ledger) MealsLeft(ctx context.Context) (int, error) {
	s, log, err := l.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return mealsLeft(s, log), nil
}

// CaloriesPerMeal splits the remaining budget over the meals left.
func (l *Ledger) CaloriesPerMeal(ctx context.Context) (int, error) {
	s, log, err := l.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return caloriesPerMeal(s, log), nil
}

// Summary projects today's log against the settings.
func (l *Ledger) Summary(ctx context.Context) (model.Summary, error) {
	s, log, err := l.snapshot(ctx)
	if err != nil {
		return model.Summary{}, err
	}
	return summarize(s, log), nil
}

// History returns archived days, newest first. It is empty when no archive
// is configured.
func (l *Ledger) History(ctx context.Context, limit int) ([]model.DayRecord, error) {
	if l.archive == nil {
		return nil, nil
	}
	return l.archive.History(ctx, limit)
}

func (l *Ledger) snapshot(ctx context.Context) (model.Settings, model.DailyLog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	log, _, err := l.current(ctx)
	return l.settings, log, err
}

// current returns today's log and the exact bytes it was read from.
// Callers must hold l.mu.
func (l *Ledger) current(ctx context.Context) (model.DailyLog, []byte, error) {
	now := l.now()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := l.storage.Get(ctx, l.logKey)
		if errors.Is(err, store.ErrNotFound) {
			raw = nil
		} else if err != nil {
			return model.DailyLog{}, nil, fmt.Errorf("loading log: %w", err)
		}

		var stale *model.DailyLog
		if raw != nil {
			log, ok := decodeLog(raw)
			if ok && log.IsCurrent(now) {
				return log, raw, nil
			}
			if ok {
				stale = &log
			} else {
				l.log.Warn("discarding unreadable ledger", "key", l.logKey)
			}
		}

		fresh := model.NewDailyLog(now)
		enc, err := json.Marshal(fresh)
		if err != nil {
			return model.DailyLog{}, nil, err
		}
		swapped, err := l.storage.CompareAndSwap(ctx, l.logKey, raw, enc)
		if err != nil {
			return model.DailyLog{}, nil, fmt.Errorf("resetting log: %w", err)
		}
		if !swapped {
			continue
		}

		if stale != nil {
			l.archiveDay(ctx, *stale)
		}
		return fresh, enc, nil
	}
	return model.DailyLog{}, nil, ErrConflict
}

// mutate applies fn to today's log and writes the result if fn reports a
// change. On a lost race the log is re-read and fn applied again.
// Callers must hold l.mu.
func (l *Ledger) mutate(ctx context.Context, fn func(*model.DailyLog) bool) (model.DailyLog, bool, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		log, raw, err := l.current(ctx)
		if err != nil {
			return model.DailyLog{}, false, err
		}

		next := log.Clone()
		if !fn(&next) {
			return log, false, nil
		}

		enc, err := json.Marshal(next)
		if err != nil {
			return model.DailyLog{}, false, err
		}
		swapped, err := l.storage.CompareAndSwap(ctx, l.logKey, raw, enc)
		if err != nil {
			return model.DailyLog{}, false, fmt.Errorf("saving log: %w", err)
		}
		if swapped {
			return next, true, nil
		}
		l.log.Debug("ledger changed underneath, retrying", "key", l.logKey)
	}
	return model.DailyLog{}, false, ErrConflict
}

func (l *Ledger) archiveDay(ctx context.Context, log model.DailyLog) {
	if l.archive == nil {
		return
	}
	rec := model.DayRecord{
		Date:          log.Date,
		Goal:          l.settings.DailyCalories,
		MealCount:     len(log.Meals),
		TotalCalories: log.TotalCalories,
		TotalProtein:  log.TotalProtein,
		TotalCarbs:    log.TotalCarbs,
		TotalFats:     log.TotalFats,
		Meals:         log.Meals,
	}
	if err := l.archive.ArchiveDay(ctx, rec); err != nil {
		l.log.Warn("failed to archive day", "date", log.Date, "err", err)
	}
}

func (l *Ledger) notify(ctx context.Context, entry model.MealEntry) {
	if l.syncer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, l.syncTimeout)
	defer cancel()

	err := l.syncer.SyncMeal(ctx, mealsync.Meal{
		Calories:   entry.Calories,
		RecipeName: entry.Name,
	})
	if err != nil {
		l.log.Warn("failed to sync meal with server", "meal", entry.Name, "err", err)
	}
}

func checkAmounts(calories float64, n model.Nutrition) error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"calories", calories},
		{"protein", n.Protein},
		{"carbs", n.Carbs},
		{"fats", n.Fats},
		{"servings", n.Servings},
	} {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidMeal, f.name, f.v)
		}
	}
	return nil
}

func decodeLog(raw []byte) (model.DailyLog, bool) {
	var log model.DailyLog
	if err := json.Unmarshal(raw, &log); err != nil {
		return model.DailyLog{}, false
	}
	if log.Date == "" {
		return model.DailyLog{}, false
	}
	if log.Meals == nil {
		log.Meals = []model.MealEntry{}
	}
	return log, true
}
