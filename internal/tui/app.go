// Package tui provides the interactive Bubble Tea dashboard for foogie.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/foogie/internal/cli"
	"github.com/theirongolddev/foogie/internal/model"
	"github.com/theirongolddev/foogie/internal/tui/components"
	"github.com/theirongolddev/foogie/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Ledger is what the dashboard reads and edits.
type Ledger interface {
	Summary(ctx context.Context) (model.Summary, error)
	RemoveMeal(ctx context.Context, index int) (model.MealEntry, bool, error)
	Settings() model.Settings
	ApplySettings(ctx context.Context, u model.SettingsUpdate) (model.Settings, error)
}

// SummaryMsg carries a freshly read summary.
type SummaryMsg struct {
	Summary model.Summary
	Err     error
}

type deletedMsg struct {
	name string
	ok   bool
	err  error
}

type savedMsg struct{ err error }

type tickMsg time.Time

const (
	refreshInterval = 30 * time.Second
	maxContentWidth = 100
	keyHints        = "[j/k]move  [d]elete  [r]eload  [s]ettings  [q]uit"
)

// App is the root Bubble Tea model.
type App struct {
	ctx    context.Context
	ledger Ledger
	now    func() time.Time

	sum    model.Summary
	loaded bool
	err    error
	status string

	width  int
	height int
	cursor int

	bar     progress.Model
	spinner spinner.Model

	form     *huh.Form
	formVals *SettingsValues
}

// NewApp creates a new TUI app model over l.
func NewApp(ctx context.Context, l Ledger) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	return App{
		ctx:     ctx,
		ledger:  l,
		now:     time.Now,
		bar:     progress.New(progress.WithSolidFill(string(theme.Active.Good)), progress.WithoutPercentage()),
		spinner: sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.loadSummary(),
		a.spinner.Tick,
		tickCmd(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.bar.Width = a.barWidth()
		if a.form != nil {
			a.form = a.form.WithWidth(a.contentWidth())
		}
		return a, nil

	case SummaryMsg:
		a.loaded = true
		a.err = msg.Err
		if msg.Err == nil {
			a.sum = msg.Summary
		}
		a.clampCursor()
		return a, nil

	case deletedMsg:
		switch {
		case msg.err != nil:
			a.err = msg.err
		case !msg.ok:
			a.status = "nothing to delete"
		default:
			a.status = "deleted " + msg.name
		}
		return a, a.loadSummary()

	case savedMsg:
		if msg.err != nil {
			a.err = msg.err
		} else {
			a.status = "settings saved"
		}
		return a, a.loadSummary()

	case tickMsg:
		// Periodic reload picks up writes from other processes and the day rollover.
		return a, tea.Batch(a.loadSummary(), tickCmd())

	case spinner.TickMsg:
		if a.loaded {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		return a.handleKey(msg)
	}

	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !a.loaded {
		return a, nil
	}

	switch msg.String() {
	case "q", "esc":
		return a, tea.Quit
	case "j", "down":
		if a.cursor < len(a.sum.Meals)-1 {
			a.cursor++
		}
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
	case "d", "delete":
		if len(a.sum.Meals) == 0 {
			return a, nil
		}
		return a, a.deleteMeal(a.cursor)
	case "r":
		a.status = ""
		return a, a.loadSummary()
	case "s":
		a.formVals = SettingsValuesFrom(a.ledger.Settings(), theme.Active.Name)
		a.form = NewSettingsForm(a.formVals, false).WithWidth(a.contentWidth())
		return a, a.form.Init()
	}
	return a, nil
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		u := a.formVals.Update()
		a.form = nil
		return a, a.saveSettings(u)
	case huh.StateAborted:
		a.form = nil
		a.status = "settings unchanged"
		return a, nil
	}
	return a, cmd
}

func (a *App) clampCursor() {
	if a.cursor >= len(a.sum.Meals) {
		a.cursor = len(a.sum.Meals) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) barWidth() int {
	w := a.contentWidth() - 12
	if w < 10 {
		w = 10
	}
	return w
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if !a.loaded {
		return "\n  " + a.spinner.View() + " Loading today's log...\n"
	}
	if a.form != nil {
		return a.form.View()
	}
	return a.viewMain()
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.contentWidth()
	s := a.sum

	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	budget := t.BudgetColor(s.PercentConsumed)

	var b strings.Builder
	b.WriteString(titleStyle.Render(" foogie"))
	b.WriteString(mutedStyle.Render("  " + cli.FormatDate(model.DayOf(a.now()))))
	b.WriteString("\n")

	mealsLeft := fmt.Sprintf("%d meals left", s.MealsLeft)
	if s.MealsLeft == 1 {
		mealsLeft = "1 meal left"
	}
	remainingColor := t.TextPrimary
	if s.IsOverGoal {
		remainingColor = t.Over
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Goal", Value: cli.FormatCalories(float64(s.Goal))},
		{Label: "Consumed", Value: cli.FormatCalories(s.Consumed), Delta: cli.FormatPercent(s.PercentConsumed), Color: budget},
		{Label: "Remaining", Value: cli.FormatCalories(s.Remaining), Color: remainingColor},
		{Label: "Per meal", Value: cli.FormatCalories(float64(s.CaloriesPerMeal)), Delta: mealsLeft},
	}, w))
	b.WriteString("\n")

	if a.ledger.Settings().ShowCalorieProgress {
		bar := a.bar
		bar.FullColor = string(budget)
		pctStyle := lipgloss.NewStyle().Foreground(budget).Bold(true)
		b.WriteString(" ")
		b.WriteString(bar.ViewAs(displayFraction(s.PercentConsumed)))
		b.WriteString(" ")
		b.WriteString(pctStyle.Render(cli.FormatPercent(s.PercentConsumed)))
		b.WriteString("\n")
	}

	b.WriteString(components.ContentCard("Today's meals", a.renderMeals(), w))
	b.WriteString("\n")

	if a.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Over).Render(" error: " + a.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(components.RenderStatusBar(w, keyHints, a.status))
	return b.String()
}

func (a App) renderMeals() string {
	t := theme.Active
	s := a.sum
	if len(s.Meals) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Render("No meals logged yet")
	}

	cursorStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	nameWidth := 0
	for _, m := range s.Meals {
		if n := len(m.Name); n > nameWidth {
			nameWidth = n
		}
	}
	if nameWidth > 28 {
		nameWidth = 28
	}

	now := a.now()
	var lines []string
	for i, m := range s.Meals {
		line := fmt.Sprintf("%2d  %-*s %10s  P %-6s C %-6s F %-6s",
			i, nameWidth, truncStr(m.Name, nameWidth), cli.FormatCalories(m.Calories),
			cli.FormatGrams(m.Protein), cli.FormatGrams(m.Carbs), cli.FormatGrams(m.Fats))
		ago := dimStyle.Render(cli.FormatAgo(m.Timestamp, now))
		if i == a.cursor {
			lines = append(lines, cursorStyle.Render("> "+line)+" "+ago)
		} else {
			lines = append(lines, "  "+line+" "+ago)
		}
	}

	totals := fmt.Sprintf("    Total protein %s  carbs %s  fats %s",
		cli.FormatGrams(s.Nutrition.Protein), cli.FormatGrams(s.Nutrition.Carbs), cli.FormatGrams(s.Nutrition.Fats))
	lines = append(lines, "", dimStyle.Render(totals))
	return strings.Join(lines, "\n")
}

// displayFraction clamps a percent-of-goal to the [0, 1] range a bar can show.
func displayFraction(percent int) float64 {
	f := float64(percent) / 100
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

func (a App) loadSummary() tea.Cmd {
	ctx, l := a.ctx, a.ledger
	return func() tea.Msg {
		sum, err := l.Summary(ctx)
		return SummaryMsg{Summary: sum, Err: err}
	}
}

func (a App) deleteMeal(index int) tea.Cmd {
	ctx, l := a.ctx, a.ledger
	return func() tea.Msg {
		m, ok, err := l.RemoveMeal(ctx, index)
		return deletedMsg{name: m.Name, ok: ok, err: err}
	}
}

func (a App) saveSettings(u model.SettingsUpdate) tea.Cmd {
	ctx, l := a.ctx, a.ledger
	return func() tea.Msg {
		_, err := l.ApplySettings(ctx, u)
		return savedMsg{err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
