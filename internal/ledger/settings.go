package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/foogie/internal/model"
	"github.com/theirongolddev/foogie/internal/store"
)

// Settings returns the settings currently in effect.
func (l *Ledger) Settings() model.Settings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.settings
}

// UpdateSettings applies a partial change in memory. Unparsable or missing
// goal fields keep their previous value. It does not persist; see SaveSettings
// and ApplySettings.
func (l *Ledger) UpdateSettings(u model.SettingsUpdate) model.Settings {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.settings = applyUpdate(l.settings, u)
	return l.settings
}

// ApplySettings applies u and persists the result as one step. Reloads from
// other goroutines cannot land between the update and the write.
func (l *Ledger) ApplySettings(ctx context.Context, u model.SettingsUpdate) (model.Settings, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := applyUpdate(l.settings, u)
	if err := l.writeSettings(ctx, next); err != nil {
		return l.settings, err
	}
	l.settings = next
	return next, nil
}

// ReloadSettings re-reads the settings key, defaulting each field on its own.
func (l *Ledger) ReloadSettings(ctx context.Context) (model.Settings, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, err := l.readSettings(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	l.settings = s
	return s, nil
}

// SaveSettings writes the in-memory settings to the settings key.
func (l *Ledger) SaveSettings(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writeSettings(ctx, l.settings)
}

func applyUpdate(prev model.Settings, u model.SettingsUpdate) model.Settings {
	next := prev
	if n, ok := parseLooseInt(u.DailyCalories); ok {
		next.DailyCalories = n
	}
	if n, ok := parseLooseInt(u.DailyMeals); ok {
		next.DailyMeals = n
	}
	next.ShowCalorieProgress = u.ShowCalorieProgress == nil || *u.ShowCalorieProgress
	return next
}

func (l *Ledger) writeSettings(ctx context.Context, s model.Settings) error {
	enc, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := l.storage.Put(ctx, l.settingsKey, enc); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

func (l *Ledger) readSettings(ctx context.Context) (model.Settings, error) {
	raw, err := l.storage.Get(ctx, l.settingsKey)
	if errors.Is(err, store.ErrNotFound) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	return decodeSettings(raw), nil
}

// decodeSettings never fails: anything unreadable falls back per field.
func decodeSettings(raw []byte) model.Settings {
	s := model.DefaultSettings()

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return s
	}
	if n, ok := parseLooseInt(fields["dailyCalories"]); ok {
		s.DailyCalories = n
	}
	if n, ok := parseLooseInt(fields["dailyMeals"]); ok {
		s.DailyMeals = n
	}
	if v, ok := fields["showCalorieProgress"].(bool); ok && !v {
		s.ShowCalorieProgress = false
	}
	return s
}

// parseLooseInt accepts numbers (truncated) and strings with a leading
// integer ("5", " 12 meals", "7.9"). Only positive results are accepted.
func parseLooseInt(v any) (int, bool) {
	var n int64
	switch x := v.(type) {
	case nil:
		return 0, false
	case int:
		n = int64(x)
	case int64:
		n = x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		n = int64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		n = int64(f)
	case string:
		p, ok := leadingInt(x)
		if !ok {
			return 0, false
		}
		n = p
	default:
		return 0, false
	}
	if n <= 0 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

func leadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
