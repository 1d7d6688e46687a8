package cmd

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/foogie/internal/config"
	"github.com/theirongolddev/foogie/internal/ledger"
	"github.com/theirongolddev/foogie/internal/model"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), buf.String())
	return buf.String()
}

func runCLIErr(t *testing.T, args ...string) error {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestParseCalories(t *testing.T) {
	c, err := parseCalories(" 350.5 ")
	require.NoError(t, err)
	assert.InDelta(t, 350.5, c, 1e-9)

	for _, bad := range []string{"", "abc", "-5", "NaN", "Inf"} {
		_, err := parseCalories(bad)
		assert.ErrorIs(t, err, errBadCalories, bad)
	}
}

func TestCLI_LogSettingsSummaryDelete(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	db := filepath.Join(dir, "ledger.db")
	common := []string{"--db", db, "--no-sync", "--quiet"}

	out := runCLI(t, append([]string{"log", "Oatmeal", "500", "--protein", "20"}, common...)...)
	assert.Contains(t, out, "Logged Oatmeal (500 kcal)")
	assert.Contains(t, out, "Remaining today: 1,500 kcal")
	assert.Contains(t, out, "750 kcal per meal over 2 meals")

	out = runCLI(t, append([]string{"meals"}, common...)...)
	assert.Contains(t, out, "Oatmeal")
	assert.Contains(t, out, "20g")

	out = runCLI(t, append([]string{"settings", "set", "--calories", "1800", "--meals", "4"}, common...)...)
	assert.Contains(t, out, "1,800 kcal")

	out = runCLI(t, append([]string{"summary"}, common...)...)
	assert.Contains(t, out, "1,300 kcal")
	assert.Contains(t, out, "28%")

	out = runCLI(t, append([]string{"delete", "3"}, common...)...)
	assert.Contains(t, out, "No meal at index 3")

	out = runCLI(t, append([]string{"delete", "0"}, common...)...)
	assert.Contains(t, out, "Deleted Oatmeal (500 kcal)")

	out = runCLI(t, append([]string{"meals"}, common...)...)
	assert.Contains(t, out, "No meals logged today.")
}

func TestDaemonConfig_FlagsOverrideConfig(t *testing.T) {
	defer func() {
		flagDaemonAddr, flagDaemonInterval, flagDaemonEventsBuffer = "", 0, 0
	}()

	cfg := config.DefaultConfig()
	cfg.Daemon.AllowOrigins = []string{"http://localhost:3000"}

	dc := daemonConfig(cfg, "/tmp/x.db")
	assert.Equal(t, cfg.Daemon.Addr, dc.Addr)
	assert.Equal(t, 15*time.Second, dc.Interval)
	assert.Equal(t, 200, dc.EventsBuffer)
	assert.Equal(t, []string{"http://localhost:3000"}, dc.AllowOrigins)
	assert.Equal(t, "/tmp/x.db", dc.DBPath)

	flagDaemonAddr = "0.0.0.0:9999"
	flagDaemonInterval = 5 * time.Second
	flagDaemonEventsBuffer = 10
	dc = daemonConfig(cfg, "")
	assert.Equal(t, "0.0.0.0:9999", dc.Addr)
	assert.Equal(t, 5*time.Second, dc.Interval)
	assert.Equal(t, 10, dc.EventsBuffer)
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"daemon", "--detach", "--addr", "x", "--detach=true"})
	assert.Equal(t, []string{"daemon", "--addr", "x"}, got)
}

func TestCLI_LogRejectsNegativeMacros(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	defer func() { flagProtein, flagCarbs, flagFats, flagServings = 0, 0, 0, 1 }()
	common := []string{"--db", filepath.Join(dir, "ledger.db"), "--no-sync", "--quiet"}

	for _, flag := range []string{"--protein=-10", "--carbs=-1", "--fats=-0.5", "--servings=-2"} {
		err := runCLIErr(t, append([]string{"log", "Refund", "100", flag}, common...)...)
		assert.ErrorIs(t, err, ledger.ErrInvalidMeal, flag)
		flagProtein, flagCarbs, flagFats, flagServings = 0, 0, 0, 1
	}

	out := runCLI(t, append([]string{"meals"}, common...)...)
	assert.Contains(t, out, "No meals logged today.")
}

func TestHistoryRange(t *testing.T) {
	_, _, filtered, err := historyRange("", "")
	require.NoError(t, err)
	assert.False(t, filtered)

	from, to, filtered, err := historyRange("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.True(t, filtered)
	assert.Equal(t, "2024-03-01", model.DayOf(from))
	assert.Equal(t, "2024-03-31", model.DayOf(to))

	_, _, _, err = historyRange("03/01/2024", "")
	assert.Error(t, err)
	_, _, _, err = historyRange("2024-03-10", "2024-03-01")
	assert.Error(t, err)
}

func TestSelectHistory(t *testing.T) {
	newestFirst := []model.DayRecord{
		{Date: "2024-03-05"}, {Date: "2024-03-04"}, {Date: "2024-03-03"},
		{Date: "2024-03-02"}, {Date: "2024-03-01"},
	}
	dates := func(days []model.DayRecord) []string {
		out := make([]string, len(days))
		for i, d := range days {
			out[i] = d.Date
		}
		return out
	}

	all := append([]model.DayRecord(nil), newestFirst...)
	got := selectHistory(all, time.Time{}, time.Time{}, false, 2)
	assert.Equal(t, []string{"2024-03-04", "2024-03-05"}, dates(got))

	from, to, filtered, err := historyRange("2024-03-02", "2024-03-04")
	require.NoError(t, err)
	all = append([]model.DayRecord(nil), newestFirst...)
	got = selectHistory(all, from, to, filtered, 0)
	assert.Equal(t, []string{"2024-03-02", "2024-03-03", "2024-03-04"}, dates(got))

	all = append([]model.DayRecord(nil), newestFirst...)
	got = selectHistory(all, from, to, filtered, 1)
	assert.Equal(t, []string{"2024-03-04"}, dates(got))
}

func TestCLI_ConfigShowsSections(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("FOOGIE_SYNC_URL", "")
	t.Setenv("FOOGIE_BACKEND_URL", "")

	out := runCLI(t, "config")
	for _, want := range []string{"using defaults", "[Sync]", "Endpoint", "[Daemon]", "127.0.0.1:8788", "flexoki-dark"} {
		assert.Contains(t, out, want)
	}
}
