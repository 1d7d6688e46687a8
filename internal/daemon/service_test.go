package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/foogie/internal/ledger"
	"github.com/theirongolddev/foogie/internal/logger"
	"github.com/theirongolddev/foogie/internal/model"
	"github.com/theirongolddev/foogie/internal/store"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *clock) {
	t.Helper()
	clk := &clock{t: time.Date(2024, 3, 4, 9, 0, 0, 0, time.Local)}
	l, err := ledger.New(context.Background(), store.NewMemStore(),
		ledger.WithClock(clk.now),
		ledger.WithLogger(logger.Discard()),
	)
	require.NoError(t, err)

	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 50}, l, logger.Discard())
	s.now = clk.now
	return s, clk
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Date:      "2024-03-04",
		Goal:      2000,
		Consumed:  800,
		MealCount: 2,
	}
	curr := Snapshot{
		Date:      "2024-03-04",
		Goal:      2200,
		Consumed:  1250.5,
		MealCount: 3,
	}

	delta := diffSnapshots(prev, curr)
	if delta.NewDay {
		t.Fatal("NewDay = true on the same date")
	}
	if delta.Goal != 200 {
		t.Fatalf("Goal delta = %d, want 200", delta.Goal)
	}
	if delta.MealCount != 1 {
		t.Fatalf("MealCount delta = %d, want 1", delta.MealCount)
	}
	if math.Abs(delta.Consumed-450.5) > 1e-9 {
		t.Fatalf("Consumed delta = %.2f, want 450.50", delta.Consumed)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}

	if !diffSnapshots(prev, prev).isZero() {
		t.Fatal("identical snapshots produced a non-zero delta")
	}
	next := prev
	next.Date = "2024-03-05"
	if !diffSnapshots(prev, next).NewDay {
		t.Fatal("date change not reported as NewDay")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	}, nil, logger.Discard())

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOnce_SnapshotThenDeltas(t *testing.T) {
	s, clk := newTestService(t)
	ctx := context.Background()

	s.pollOnce(ctx)
	s.pollOnce(ctx)
	require.Len(t, s.events, 1, "unchanged ledger must not publish")
	assert.Equal(t, EventSnapshot, s.events[0].Type)

	_, err := s.ledger.LogMeal(ctx, "Oatmeal", 350, model.Nutrition{})
	require.NoError(t, err)
	s.pollOnce(ctx)
	require.Len(t, s.events, 2)
	assert.Equal(t, EventLedgerDelta, s.events[1].Type)
	assert.Equal(t, 1, s.events[1].Delta.MealCount)
	assert.InDelta(t, 350, s.events[1].Delta.Consumed, 1e-9)

	clk.t = clk.t.Add(24 * time.Hour)
	s.pollOnce(ctx)
	require.Len(t, s.events, 3)
	last := s.events[2]
	assert.True(t, last.Delta.NewDay)
	assert.Equal(t, 0, last.Snapshot.MealCount)
	assert.Equal(t, "2024-03-05", last.Snapshot.Date)
}

func TestHTTP_LogListSummaryDelete(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/v1/meals", `{"name":"Chicken Bowl","kcal":"600 kcal","protein_g":45,"servings":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var entry model.MealEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, "Chicken Bowl", entry.Name)
	assert.InDelta(t, 600, entry.Calories, 1e-9)
	assert.InDelta(t, 45, entry.Protein, 1e-9)

	rec = do(t, h, http.MethodGet, "/v1/meals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var meals []model.MealEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meals))
	require.Len(t, meals, 1)

	rec = do(t, h, http.MethodGet, "/v1/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sum model.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.InDelta(t, 1400, sum.Remaining, 1e-9)
	assert.Equal(t, 2, sum.MealsLeft)
	assert.Equal(t, 700, sum.CaloriesPerMeal)
	assert.Equal(t, 30, sum.PercentConsumed)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodDelete, "/v1/meals/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/v1/meals/5", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/v1/meals/0", "").Code)

	rec = do(t, h, http.MethodGet, "/v1/summary", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.InDelta(t, 0, sum.Consumed, 1e-9)
}

func TestHTTP_LogMealRequiresCalories(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/v1/meals", `{"name":"Mystery"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/v1/meals", `{"calories":100}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/v1/meals", `not json`).Code)
}

func TestHTTP_LogMealRejectsNegativeAmounts(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()

	for _, body := range []string{
		`{"name":"refund","calories":-500}`,
		`{"name":"refund","calories":100,"protein":"-20g"}`,
		`{"name":"refund","calories":100,"fats":-1}`,
	} {
		rec := do(t, h, http.MethodPost, "/v1/meals", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec := do(t, h, http.MethodGet, "/v1/summary", "")
	var sum model.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Zero(t, sum.Consumed)
	assert.Equal(t, 2000.0, sum.Remaining)
	assert.Zero(t, sum.Nutrition.Protein)
}

func TestHTTP_DeleteReturnsRemovedMeal(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/meals", `{"name":"Toast","calories":200}`).Code)

	rec := do(t, h, http.MethodDelete, "/v1/meals/0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Removed model.MealEntry `json:"removed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Toast", body.Removed.Name)
}

func TestHTTP_Settings(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPut, "/v1/settings", `{"dailyCalories":"1800","dailyMeals":"oops","showCalorieProgress":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got model.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1800, got.DailyCalories)
	assert.Equal(t, model.DefaultDailyMeals, got.DailyMeals)
	assert.False(t, got.ShowCalorieProgress)

	// Persisted: a reload reads back the same values.
	reloaded, err := s.ledger.ReloadSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got, reloaded)

	rec = do(t, h, http.MethodGet, "/v1/settings", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1800, got.DailyCalories)
}

// pollingLedger runs a daemon poll alongside every settings write.
type pollingLedger struct {
	*ledger.Ledger
	svc *Service
}

func (p *pollingLedger) ApplySettings(ctx context.Context, u model.SettingsUpdate) (model.Settings, error) {
	var wg sync.WaitGroup
	for n := 0; n < 4; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.svc.pollOnce(ctx)
		}()
	}
	defer wg.Wait()
	return p.Ledger.ApplySettings(ctx, u)
}

func TestHTTP_SettingsSurviveConcurrentPoll(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	l, err := ledger.New(ctx, st, ledger.WithLogger(logger.Discard()))
	require.NoError(t, err)

	pl := &pollingLedger{Ledger: l}
	s := New(Config{Interval: 10 * time.Second}, pl, logger.Discard())
	pl.svc = s
	h := s.Handler()

	for _, goal := range []int{1600, 1700, 1800} {
		rec := do(t, h, http.MethodPut, "/v1/settings", fmt.Sprintf(`{"dailyCalories":%d}`, goal))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		raw, err := st.Get(ctx, ledger.SettingsKey)
		require.NoError(t, err)
		var stored model.Settings
		require.NoError(t, json.Unmarshal(raw, &stored))
		assert.Equal(t, goal, stored.DailyCalories, "stored settings")
		assert.Equal(t, goal, l.Settings().DailyCalories, "in-memory settings")
	}
}

func TestHTTP_SyncSinkRecordsEvent(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/calorie-tracker", `{"calories":450,"recipe_name":"Pasta"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/events", "")
	var events []Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, EventRemoteSync, events[0].Type)
	require.NotNil(t, events[0].Sync)
	assert.Equal(t, "Pasta", events[0].Sync.RecipeName)
	assert.InDelta(t, 450, events[0].Sync.Calories, 1e-9)
}

func TestHTTP_HealthStatusAndCORS(t *testing.T) {
	s, _ := newTestService(t)
	s.pollOnce(context.Background())
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, "ok\n", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/v1/status", "")
	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, int64(1), st.PollCount)
	assert.Equal(t, 2000, st.Summary.Goal)
	assert.Equal(t, 1, st.EventCount)

	req := httptest.NewRequest(http.MethodGet, "/v1/summary", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestStream_SendsInitialSnapshot(t *testing.T) {
	s, _ := newTestService(t)
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	sc := bufio.NewScanner(resp.Body)
	require.True(t, sc.Scan())
	assert.Equal(t, "event: snapshot", sc.Text())
	require.True(t, sc.Scan())
	assert.True(t, strings.HasPrefix(sc.Text(), "data: {"))
}
