// internal/tui/dashboard.go
//
// Terminal dashboard for the council. Built on bubbletea's Elm loop:
// state lives in Dashboard, messages mutate it in Update, View renders
// it to a string. Iterations run inside a tea.Cmd so the UI stays
// responsive while agents debate.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tkaria/council/internal/council"
	"github.com/tkaria/council/internal/journal"
	"github.com/tkaria/council/internal/orchestrator"
)

const (
	maxVisibleIterations = 12
	maxVisibleLogLines   = 8
)

type iterationFinishedMsg struct {
	iter *orchestrator.Iteration
	err  error
}

// Dashboard is the bubbletea model: roster weights on the left,
// iteration history on the right.
type Dashboard struct {
	orch     *orchestrator.Orchestrator
	campaign council.CampaignContext
	runOpts  orchestrator.RunOptions

	spinner   spinner.Model
	running   bool
	statusMsg string
	report    *orchestrator.ComparisonReport
	err       error

	sessionLog *journal.Journal
	showLog    bool

	selection int
	width     int
	height    int
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithJournal attaches the session journal so the log panel can tail it.
func WithJournal(j *journal.Journal) Option {
	return func(d *Dashboard) { d.sessionLog = j }
}

// NewDashboard builds the dashboard over a live orchestrator.
func NewDashboard(orch *orchestrator.Orchestrator, campaign council.CampaignContext, runOpts orchestrator.RunOptions, opts ...Option) *Dashboard {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#EAB308"))
	d := &Dashboard{
		orch:      orch,
		campaign:  campaign,
		runOpts:   runOpts,
		spinner:   sp,
		statusMsg: "Press r to run an iteration",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init is called once when the program starts.
func (d *Dashboard) Init() tea.Cmd {
	return d.spinner.Tick
}

func (d *Dashboard) runIteration() tea.Cmd {
	orch := d.orch
	campaign := d.campaign
	opts := d.runOpts
	return func() tea.Msg {
		iter, err := orch.RunCampaignIteration(context.Background(), campaign, opts)
		return iterationFinishedMsg{iter: iter, err: err}
	}
}

// Update is called when a message is received.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		return d, nil

	case iterationFinishedMsg:
		d.running = false
		if msg.err != nil {
			d.err = msg.err
			d.statusMsg = "Iteration failed"
			return d, nil
		}
		d.err = nil
		d.report = nil
		d.selection = len(d.orch.Iterations()) - 1
		d.statusMsg = fmt.Sprintf("Iteration complete · winner %s · score %.1f",
			msg.iter.Decision.Winner, msg.iter.Engagement.OverallScore)
		return d, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return d, tea.Quit
		case "r":
			if d.running {
				return d, nil
			}
			d.running = true
			d.err = nil
			d.statusMsg = "Council in session..."
			return d, tea.Batch(d.spinner.Tick, d.runIteration())
		case "c":
			return d.compareLatest()
		case "up", "k":
			if d.selection > 0 {
				d.selection--
			}
			return d, nil
		case "down", "j":
			if d.selection < len(d.orch.Iterations())-1 {
				d.selection++
			}
			return d, nil
		case "l":
			if d.sessionLog != nil {
				d.showLog = !d.showLog
			}
			return d, nil
		case "esc":
			d.report = nil
			return d, nil
		}
	}

	var cmd tea.Cmd
	d.spinner, cmd = d.spinner.Update(msg)
	return d, cmd
}

// compareLatest contrasts the two most recent iterations.
func (d *Dashboard) compareLatest() (tea.Model, tea.Cmd) {
	history := d.orch.Iterations()
	if len(history) < 2 {
		d.statusMsg = "Need at least two iterations to compare"
		return d, nil
	}
	report, err := d.orch.CompareIterations(len(history)-2, len(history)-1)
	if err != nil {
		d.err = err
		return d, nil
	}
	d.report = report
	d.statusMsg = "Comparing the two most recent iterations (esc to close)"
	return d, nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EAB308")).
			Bold(true)
)

// View renders the dashboard.
func (d *Dashboard) View() string {
	header := titleStyle.Render("⬡ MARKETING COUNCIL")
	if d.campaign.BrandName != "" {
		header += dimStyle.Render("  ·  " + d.campaign.BrandName)
	}

	left := boxStyle.Render(d.renderWeights())
	right := boxStyle.Render(d.renderIterations())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	sections := []string{header, body}
	if d.report != nil {
		sections = append(sections, boxStyle.Render(d.renderComparison()))
	}
	if d.showLog {
		sections = append(sections, boxStyle.Render(d.renderLog()))
	}

	status := d.statusMsg
	if d.running {
		status = d.spinner.View() + " " + status
	}
	sections = append(sections, status)
	if d.err != nil {
		sections = append(sections, errStyle.Render(d.err.Error()))
	}
	hints := "r run · c compare · ↑/↓ select · q quit"
	if d.sessionLog != nil {
		hints = "r run · c compare · l log · ↑/↓ select · q quit"
	}
	sections = append(sections, dimStyle.Render(hints))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (d *Dashboard) renderWeights() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("AGENTS"))
	b.WriteString("\n")
	// Weights come through the orchestrator's locked snapshot; an
	// iteration may be mutating the agents on another goroutine while
	// spinner ticks re-render this view.
	weights := d.orch.Weights()
	for _, agent := range d.orch.Roster().Members {
		name := agent.Name()
		if color := agent.Color(); color != "" {
			name = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(name)
		}
		weight := weights[agent.ID()]
		fmt.Fprintf(&b, "%s\n", name)
		fmt.Fprintf(&b, "  weight %.2f %s\n", weight, weightBar(weight))
	}
	return b.String()
}

// weightBar draws the [0.5, 2.0] weight range as a ten-cell bar.
func weightBar(weight float64) string {
	filled := int((weight - council.MinWeight) / (council.MaxWeight - council.MinWeight) * 10)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return dimStyle.Render("[" + strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + "]")
}

func (d *Dashboard) renderIterations() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ITERATIONS"))
	b.WriteString("\n")
	history := d.orch.Iterations()
	if len(history) == 0 {
		b.WriteString(dimStyle.Render("none yet"))
		return b.String()
	}

	start := 0
	if len(history) > maxVisibleIterations {
		start = len(history) - maxVisibleIterations
	}
	for i := start; i < len(history); i++ {
		iter := history[i]
		platform := "-"
		if iter.Content != nil {
			platform = string(iter.Content.Platform)
		}
		line := fmt.Sprintf("#%d %s  %s  %s  %.1f",
			i,
			iter.Timestamp.Format("15:04:05"),
			iter.Decision.Winner,
			platform,
			iter.Engagement.OverallScore)
		if i == d.selection {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (d *Dashboard) renderComparison() string {
	r := d.report
	var b strings.Builder
	b.WriteString(titleStyle.Render("COMPARISON"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "#%d winner %s (%.1f)  vs  #%d winner %s (%.1f)\n",
		r.First.Index, r.First.Winner, r.First.Engagement,
		r.Second.Index, r.Second.Winner, r.Second.Engagement)
	if r.WinnerChanged {
		b.WriteString("winner changed\n")
	}
	fmt.Fprintf(&b, "engagement diff %+.2f", r.EngagementDiff)
	return b.String()
}

func (d *Dashboard) renderLog() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("SESSION LOG"))
	b.WriteString("\n")
	lines, total := d.sessionLog.Tail(maxVisibleLogLines)
	if total == 0 {
		b.WriteString(dimStyle.Render("empty"))
		return b.String()
	}
	if total > len(lines) {
		fmt.Fprintf(&b, "%s\n", dimStyle.Render(fmt.Sprintf("… %d earlier entries", total-len(lines))))
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Run starts the dashboard in the caller's terminal and blocks until quit.
func Run(orch *orchestrator.Orchestrator, campaign council.CampaignContext, runOpts orchestrator.RunOptions, opts ...Option) error {
	program := tea.NewProgram(NewDashboard(orch, campaign, runOpts, opts...), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
