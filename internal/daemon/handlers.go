package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/theirongolddev/foogie/internal/ledger"
	"github.com/theirongolddev/foogie/internal/mealsync"
	"github.com/theirongolddev/foogie/internal/model"
	"github.com/theirongolddev/foogie/internal/nutrition"
)

func (s *Service) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

func (s *Service) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleSummary(c *gin.Context) {
	sum, err := s.ledger.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// GET /v1/meals
func (s *Service) handleListMeals(c *gin.Context) {
	meals, err := s.ledger.TodaysMeals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meals)
}

// POST /v1/meals  body: {"name":"...", "calories":500, "protein":30, ...}
// Macro keys are matched loosely, so "kcal" or "fat_g" work too.
func (s *Service) handleLogMeal(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	name := firstString(raw, "name", "recipe_name")
	fields := nutrition.Decode(raw)
	if name == "" || !fields.Calories.OK {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and calories are required"})
		return
	}

	entry, err := s.ledger.LogMeal(c.Request.Context(), name, fields.Calories.V, model.Nutrition{
		Protein:  fields.Protein.Or(0),
		Carbs:    fields.Carbs.Or(0),
		Fats:     fields.Fats.Or(0),
		Servings: fields.Servings.Or(1),
	})
	if errors.Is(err, ledger.ErrInvalidMeal) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.pollOnce(c.Request.Context())
	c.JSON(http.StatusCreated, entry)
}

// DELETE /v1/meals/:index
func (s *Service) handleDeleteMeal(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}
	removed, ok, err := s.ledger.RemoveMeal(c.Request.Context(), idx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no meal at index " + strconv.Itoa(idx)})
		return
	}
	s.pollOnce(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"ok": true, "removed": removed})
}

func (s *Service) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.ledger.Settings())
}

// PUT /v1/settings  body: any subset of {dailyCalories, dailyMeals, showCalorieProgress}
func (s *Service) handlePutSettings(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	u := model.SettingsUpdate{
		DailyCalories: raw["dailyCalories"],
		DailyMeals:    raw["dailyMeals"],
	}
	if show, ok := raw["showCalorieProgress"].(bool); ok {
		u.ShowCalorieProgress = &show
	}

	settings, err := s.ledger.ApplySettings(c.Request.Context(), u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.pollOnce(c.Request.Context())
	c.JSON(http.StatusOK, settings)
}

func (s *Service) handleEvents(c *gin.Context) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	c.JSON(http.StatusOK, events)
}

// POST /api/calorie-tracker records meal-sync notifications sent by foogie
// processes configured to sync against this daemon.
func (s *Service) handleSyncSink(c *gin.Context) {
	var m mealsync.Meal
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	s.mu.Lock()
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      EventRemoteSync,
		Timestamp: s.now(),
		Snapshot:  s.snapshot,
		Sync:      &m,
	}
	s.mu.Unlock()

	s.publishEvent(ev)
	s.log.Info("meal sync received", "recipe", m.RecipeName, "calories", m.Calories)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Service) handleStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(c.Writer, current)
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case ev := <-ch:
			writeSSE(c.Writer, ev)
			c.Writer.Flush()
		}
	}
}

func writeSSE(w io.Writer, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
