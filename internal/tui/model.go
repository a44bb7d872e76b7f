// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typeroo/internal/engine"
	"github.com/verte-zerg/typeroo/internal/model"
)

const (
	defaultTimeout = 10 * time.Second
	shownLines     = 3
	pickerHeight   = 10
	previewWidth   = 60
)

// Sink receives finished results.
type Sink interface {
	SaveResult(ctx context.Context, res model.Result) (int64, error)
}

// NamedSink labels a Sink in notices.
type NamedSink struct {
	Name string
	Sink Sink
}

// TextStore lists and stores custom texts.
type TextStore interface {
	CustomTexts(ctx context.Context) ([]model.CustomText, error)
	AddCustomText(ctx context.Context, content string, public bool) (int64, error)
}

// Options configures the collaborators of a Model.
type Options struct {
	Sinks   []NamedSink
	Texts   TextStore
	Timeout time.Duration
}

type screen int

const (
	screenTest screen = iota
	screenResult
	screenTexts
	screenAddText
)

// Model implements the Bubble Tea typing UI on top of an engine.Engine.
type Model struct {
	engine  *engine.Engine
	sinks   []NamedSink
	texts   TextStore
	timeout time.Duration

	screen screen
	width  int
	height int

	notices []string
	errMsg  string

	picker      table.Model
	pickerTexts []model.CustomText
	loading     bool
	addInput    textinput.Model
	addPublic   bool
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	extraStyle       = incorrectStyle.Underline(true)
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = currentWordStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	clockStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	cardStyle        = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// NewModel constructs a typing TUI model. e must hold a session; the model
// becomes its only caller.
func NewModel(e *engine.Engine, opts Options) *Model {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	m := &Model{
		engine:  e,
		sinks:   opts.Sinks,
		texts:   opts.Texts,
		timeout: timeout,
		picker: table.New(
			table.WithColumns(pickerColumns()),
			table.WithFocused(true),
			table.WithHeight(pickerHeight),
		),
		addInput: textinput.New(),
	}
	m.addInput.Prompt = "Text: "
	m.addInput.Placeholder = "paste or type the words to practise"
	m.addInput.CharLimit = 0
	if e.Session().WordCount() == 0 {
		m.errMsg = "nothing to type: " + engine.ErrNoContent.Error()
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.addInput.Width = max(10, min(msg.Width, previewWidth+20)-lipgloss.Width(m.addInput.Prompt)-1)
		return m, nil
	case tickMsg:
		return m, m.handleTick(msg)
	case savedMsg:
		if msg.err != nil {
			m.notices = append(m.notices, errorStyle.Render(fmt.Sprintf("%s: save failed: %v", msg.sink, msg.err)))
		} else {
			m.notices = append(m.notices, fmt.Sprintf("%s: saved", msg.sink))
		}
		return m, nil
	case textsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("failed to load texts: %v", msg.err)
			return m, nil
		}
		m.setTexts(msg.texts)
		return m, nil
	case textAddedMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("failed to add text: %v", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.screen = screenTexts
		m.addInput.Reset()
		m.addInput.Blur()
		return m, m.loadTexts()
	case tea.KeyMsg:
		if msg.String() == KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenResult:
			return m.updateResult(msg)
		case screenTexts:
			return m.updateTexts(msg)
		case screenAddText:
			return m.updateAddText(msg)
		default:
			return m.updateTest(msg)
		}
	}
	return m, nil
}

func (m *Model) updateTest(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyRestart:
		m.reset(m.engine.Source())
		return m, nil
	case KeyFinish:
		return m, m.after(m.engine.Finish())
	case KeyCycleDuration:
		m.reset(engine.Timed(nextDuration(m.engine.Source())))
		return m, nil
	case KeyCountUp:
		m.reset(engine.CountUp())
		return m, nil
	case KeyTexts:
		return m, m.openTexts()
	}
	switch msg.Type {
	case tea.KeySpace:
		return m, m.after(m.engine.Key(engine.SpaceKey()))
	case tea.KeyBackspace:
		return m, m.after(m.engine.Key(engine.BackspaceKey()))
	case tea.KeyRunes:
		cmds := make([]tea.Cmd, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			cmds = append(cmds, m.after(m.engine.Key(engine.CharKey(r))))
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m *Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyBack:
		return m, tea.Quit
	case KeyRestart, KeyEnter:
		m.reset(m.engine.Source())
	case KeyCycleDuration:
		m.reset(engine.Timed(nextDuration(m.engine.Source())))
	case KeyCountUp:
		m.reset(engine.CountUp())
	case KeyTexts:
		return m, m.openTexts()
	}
	return m, nil
}

func (m *Model) updateTexts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyBack:
		m.screen = screenTest
		m.errMsg = ""
		return m, nil
	case KeyEnter:
		idx := m.picker.Cursor()
		if idx < 0 || idx >= len(m.pickerTexts) {
			return m, nil
		}
		m.reset(engine.StoredText(m.pickerTexts[idx]))
		return m, nil
	case KeyAddText:
		m.screen = screenAddText
		m.errMsg = ""
		m.addPublic = false
		return m, m.addInput.Focus()
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) updateAddText(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyBack:
		m.screen = screenTexts
		m.errMsg = ""
		m.addInput.Blur()
		return m, nil
	case KeyTogglePublic:
		m.addPublic = !m.addPublic
		return m, nil
	case KeyEnter:
		content := strings.TrimSpace(m.addInput.Value())
		if content == "" {
			m.errMsg = "text is empty"
			return m, nil
		}
		return m, m.addText(content, m.addPublic)
	}
	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

// after turns an engine transition into follow-up commands: a clock when a
// session starts and one save per sink when it finishes.
func (m *Model) after(tr engine.Transition) tea.Cmd {
	var cmds []tea.Cmd
	if tr.Started {
		m.errMsg = ""
		m.notices = nil
		cmds = append(cmds, m.tick())
	}
	if tr.Finished {
		m.screen = screenResult
		cmds = append(cmds, m.saveResult()...)
	}
	return tea.Batch(cmds...)
}

func (m *Model) tick() tea.Cmd {
	id := m.engine.Session().ID()
	return tea.Tick(engine.TickInterval, func(time.Time) tea.Msg {
		return tickMsg{id: id}
	})
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if msg.id != m.engine.Session().ID() {
		return nil
	}
	cmd := m.after(m.engine.Tick(msg.id))
	if m.engine.Session().Status() == engine.StatusActive {
		return tea.Batch(cmd, m.tick())
	}
	return cmd
}

func (m *Model) saveResult() []tea.Cmd {
	res, ok := m.engine.Result()
	if !ok {
		return nil
	}
	timeout := m.timeout
	cmds := make([]tea.Cmd, 0, len(m.sinks))
	for _, sink := range m.sinks {
		cmds = append(cmds, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			_, err := sink.Sink.SaveResult(ctx, res)
			return savedMsg{sink: sink.Name, err: err}
		})
	}
	return cmds
}

// reset starts over with src. An invalid source keeps the current session.
func (m *Model) reset(src engine.Source) {
	m.notices = nil
	m.errMsg = ""
	m.screen = screenTest
	if _, err := m.engine.Reset(src); err != nil {
		switch {
		case errors.Is(err, engine.ErrNoContent):
			m.errMsg = "nothing to type: " + err.Error()
		default:
			m.errMsg = err.Error()
		}
	}
}

func (m *Model) openTexts() tea.Cmd {
	if m.texts == nil {
		m.errMsg = "custom texts are not available"
		return nil
	}
	m.screen = screenTexts
	m.errMsg = ""
	return m.loadTexts()
}

func (m *Model) loadTexts() tea.Cmd {
	m.loading = true
	texts := m.texts
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		list, err := texts.CustomTexts(ctx)
		return textsLoadedMsg{texts: list, err: err}
	}
}

func (m *Model) addText(content string, public bool) tea.Cmd {
	texts := m.texts
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		id, err := texts.AddCustomText(ctx, content, public)
		return textAddedMsg{id: id, err: err}
	}
}

func (m *Model) setTexts(texts []model.CustomText) {
	m.pickerTexts = slices.Clone(texts)
	rows := make([]table.Row, 0, len(texts))
	for _, t := range texts {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", t.ID),
			fmt.Sprintf("%d", len(strings.Fields(t.Content))),
			preview(t.Content, previewWidth),
		})
	}
	m.picker.SetRows(rows)
	if m.picker.Cursor() >= len(rows) {
		m.picker.SetCursor(max(len(rows)-1, 0))
	}
}

func pickerColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Words", Width: 6},
		{Title: "Text", Width: previewWidth},
	}
}

func preview(content string, width int) string {
	flat := strings.Join(strings.Fields(content), " ")
	runes := []rune(flat)
	if len(runes) <= width {
		return flat
	}
	return string(runes[:width-3]) + "..."
}

// nextDuration cycles through the standard durations.
func nextDuration(src engine.Source) int {
	durations := model.StandardDurations
	if src.Mode != model.ModeTimed {
		return durations[0]
	}
	for _, d := range durations {
		if d > src.Duration {
			return d
		}
	}
	return durations[0]
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.screen {
	case screenResult:
		body = m.renderResult()
	case screenTexts:
		body = m.renderTexts()
	case screenAddText:
		body = m.renderAddText()
	default:
		body = m.renderTest()
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return body + "\n\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	footerHeight := lipgloss.Height(footer)
	content := lipgloss.Place(m.width, max(m.height-footerHeight, 1), lipgloss.Center, lipgloss.Center, body)
	return content + "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer)
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 0
	}
	return max(int(float64(m.width)*0.70), 1)
}

func (m *Model) renderTest() string {
	s := m.engine.Session()
	words := styleSession(s)
	lines := visibleLines(layoutLines(words, m.contentWidth()), s.WordIndex(), shownLines)
	text := renderLines(words, lines)
	return m.renderStatus(s) + "\n\n" + text
}

func (m *Model) renderStatus(s engine.Session) string {
	live := engine.LiveMetrics(s)
	var clock string
	switch s.Mode() {
	case model.ModeTimed:
		clock = fmt.Sprintf("%ds", s.TimeRemaining())
	case model.ModeFixedText:
		clock = fmt.Sprintf("%d/%d  %ds", min(s.WordIndex(), s.WordCount()), s.WordCount(), s.Elapsed())
	default:
		clock = fmt.Sprintf("%ds", s.Elapsed())
	}
	stats := fmt.Sprintf("%d wpm  %d%% acc", live.WPM, live.Accuracy)
	return clockStyle.Render(clock) + "  " + footerStyle.Render(stats)
}

func (m *Model) renderResult() string {
	res, ok := m.engine.Result()
	if !ok {
		return ""
	}
	cards := []string{
		metricCard("WPM", fmt.Sprintf("%d", res.WPM)),
		metricCard("Raw", fmt.Sprintf("%d", res.RawWPM)),
		metricCard("Accuracy", fmt.Sprintf("%d%%", res.Accuracy)),
		metricCard("Chars", fmt.Sprintf("%d/%d", res.CorrectChars, res.IncorrectChars)),
		metricCard("Words", fmt.Sprintf("%d/%d", res.CorrectWords, res.IncorrectWords)),
		metricCard("Time", fmt.Sprintf("%ds", res.DurationSeconds)),
	}
	if m.width > 0 && m.width < 60 {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...)
	return lipgloss.JoinVertical(lipgloss.Center, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func (m *Model) renderTexts() string {
	switch {
	case m.loading:
		return "Loading texts..."
	case len(m.pickerTexts) == 0:
		return "No custom texts yet. Press a to add one."
	}
	return m.picker.View()
}

func (m *Model) renderAddText() string {
	visibility := "private"
	if m.addPublic {
		visibility = "public"
	}
	return m.addInput.View() + "\n" + footerStyle.Render("visibility: "+visibility)
}

func (m *Model) renderFooter() string {
	var help string
	switch m.screen {
	case screenResult:
		help = "enter/ctrl+r: again  tab: duration  ctrl+u: count-up  ctrl+t: texts  q: quit"
	case screenTexts:
		help = "enter: type text  a: add  esc: back  ctrl+c: quit"
	case screenAddText:
		help = "enter: save  ctrl+p: public/private  esc: cancel"
	default:
		help = "tab: duration  ctrl+u: count-up  ctrl+t: texts  ctrl+r: restart  esc: finish  ctrl+c: quit"
	}
	lines := []string{footerStyle.Render(help)}
	if len(m.notices) > 0 {
		lines = append(lines, footerStyle.Render(strings.Join(m.notices, "  ")))
	}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	}
	return strings.Join(lines, "\n")
}
