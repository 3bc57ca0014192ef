// Package tui is an interactive terminal tester for the answer pipeline.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github/itish2003/meetassist/models"
	"github/itish2003/meetassist/prompts"
)

// Answerer is the TUI-facing subset of the RAG service.
type Answerer interface {
	Answer(ctx context.Context, req models.QueryTextRequest) *models.QueryRAGResponse
}

type answerMsg struct {
	query string
	resp  *models.QueryRAGResponse
}

// Model is the Bubble Tea model for the chat tester.
type Model struct {
	ctx      context.Context
	service  Answerer
	topK     int
	input    textinput.Model
	viewport viewport.Model
	summary  string
	status   string
	last     *models.QueryRAGResponse
	query    string
	busy     bool
	ready    bool
}

// New creates a new TUI model. summary is shown under the title.
func New(ctx context.Context, service Answerer, topK int, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your meetings and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	return Model{
		ctx:      ctx,
		service:  service,
		topK:     topK,
		input:    ti,
		viewport: viewport.New(0, 0),
		summary:  summary,
		status:   "Ready. PgUp/PgDn scroll, Ctrl+C quits.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+summary, status, query box, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.render())
		return m, nil

	case answerMsg:
		m.busy = false
		m.last = msg.resp
		m.query = msg.query
		m.status = fmt.Sprintf("Answered %q (%s)", msg.query, msg.resp.AssistanceType)
		m.viewport.SetContent(m.render())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.status = fmt.Sprintf("Thinking about %q...", q)
			m.input.SetValue("")
			return m, m.ask(q)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask runs the pipeline off the UI loop.
func (m Model) ask(query string) tea.Cmd {
	service, ctx, topK := m.service, m.ctx, m.topK
	return func() tea.Msg {
		return answerMsg{query: query, resp: service.Answer(ctx, models.QueryTextRequest{Query: query, TopK: topK})}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("Meeting Assistant")
	summary := mutedStyle.Render(m.summary)
	answer := answerBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) render() string {
	if m.last == nil {
		return "No answer yet."
	}
	r := m.last
	var b strings.Builder

	b.WriteString(labelStyle.Render("Answer") + "\n")
	b.WriteString(r.Answer + "\n\n")

	b.WriteString(labelStyle.Render("Intent") + "  ")
	if r.IntentAnalysis.PrimaryIntent == "" {
		b.WriteString("n/a\n")
	} else {
		fmt.Fprintf(&b, "%s (confidence %.2f)%s\n", r.IntentAnalysis.PrimaryIntent, r.IntentAnalysis.Confidence, formatWeights(r.IntentAnalysis.AllWeights))
	}

	b.WriteString(labelStyle.Render("Verification") + "  ")
	if r.VerificationVerdict != "" {
		b.WriteString(verdictStyle(r.VerificationVerdict).Render(string(r.VerificationVerdict)) + "  ")
	}
	b.WriteString(r.AccuracyVerification + "\n\n")

	fmt.Fprintf(&b, "%s  %d\n", labelStyle.Render("Sources"), len(r.Sources))
	for i, s := range r.Sources {
		fmt.Fprintf(&b, "%d. %s score=%.3f\n   %s\n", i+1, prompts.CitationHeader(s.Metadata), s.Score,
			mutedStyle.Render(prompts.Truncate(s.Metadata.TextSnippet, 160)))
	}
	return b.String()
}

func formatWeights(weights map[models.Intent]int) string {
	var parts []string
	for intent, w := range weights {
		if w > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", intent, w))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	sort.Strings(parts)
	return "  [" + strings.Join(parts, " ") + "]"
}

func verdictStyle(v models.Verdict) lipgloss.Style {
	switch v {
	case models.VerdictAccurate:
		return goodStyle
	case models.VerdictInaccurate, models.VerdictUncertain:
		return badStyle
	default:
		return warnStyle
	}
}

var (
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	labelStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	goodStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	badStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)
