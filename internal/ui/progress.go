package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Spinner shows indeterminate activity.
type Spinner interface {
	SetTitle(title string)
	Stop()
}

// ProgressBar shows determinate progress.
type ProgressBar interface {
	Increment(n int)
	Done()
}

// Progress creates spinners and progress bars. Animations render on
// stderr so they never mix with command output.
type Progress struct {
	theme    *Theme
	terminal *Terminal
	writer   io.Writer
}

// NewProgress creates a Progress. Headless output goes to w.
func NewProgress(theme *Theme, terminal *Terminal, w io.Writer) *Progress {
	return &Progress{theme: theme, terminal: terminal, writer: w}
}

func (p *Progress) animated() bool {
	return !p.terminal.IsHeadless() && !p.theme.NoColor
}

// Spinner starts a spinner. In headless mode nothing is printed.
func (p *Progress) Spinner(title string) Spinner {
	if !p.animated() {
		return &quietSpinner{}
	}
	return newInteractiveSpinner(p.theme, title)
}

// Bar starts a progress bar over total steps. In headless mode it writes
// one log line per step.
func (p *Progress) Bar(title string, total int) ProgressBar {
	if !p.animated() {
		return &headlessBar{title: title, total: total, writer: p.writer}
	}
	return newInteractiveBar(p.theme, title, total)
}

func newProgram(m tea.Model) *tea.Program {
	return tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithInput(nil))
}

// --- interactive spinner ---

type spinnerTitleMsg string

type stopMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	title   string
	done    bool
}

func (m spinnerModel) Init() tea.Cmd { return m.spinner.Tick }

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTitleMsg:
		m.title = string(msg)
		return m, nil
	case stopMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.title + "\n"
}

type interactiveSpinner struct {
	program *tea.Program
	once    sync.Once
}

func newInteractiveSpinner(theme *Theme, title string) *interactiveSpinner {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = lipgloss.NewStyle().Foreground(theme.Primary)
	p := newProgram(spinnerModel{spinner: s, title: title})
	go func() { _, _ = p.Run() }()
	return &interactiveSpinner{program: p}
}

func (s *interactiveSpinner) SetTitle(title string) {
	s.program.Send(spinnerTitleMsg(title))
}

func (s *interactiveSpinner) Stop() {
	s.once.Do(func() {
		s.program.Send(stopMsg{})
		s.program.Wait()
	})
}

type quietSpinner struct{}

func (*quietSpinner) SetTitle(string) {}
func (*quietSpinner) Stop()           {}

// --- interactive progress bar ---

type incrMsg int

type barModel struct {
	bar     progress.Model
	title   string
	current int
	total   int
	done    bool
}

func (m barModel) Init() tea.Cmd { return nil }

func (m barModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case incrMsg:
		m.current = min(m.current+int(msg), m.total)
		return m, nil
	case stopMsg:
		m.current = m.total
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m barModel) View() string {
	if m.done {
		return ""
	}
	pct := 0.0
	if m.total > 0 {
		pct = float64(m.current) / float64(m.total)
	}
	return m.bar.ViewAs(pct) + fmt.Sprintf(" [%d/%d] %s\n", m.current, m.total, m.title)
}

type interactiveBar struct {
	program *tea.Program
	once    sync.Once
}

func newInteractiveBar(theme *Theme, title string, total int) *interactiveBar {
	bar := progress.New(
		progress.WithGradient(theme.Primary.Dark, theme.Accent.Dark),
		progress.WithWidth(40),
	)
	p := newProgram(barModel{bar: bar, title: title, total: total})
	go func() { _, _ = p.Run() }()
	return &interactiveBar{program: p}
}

func (b *interactiveBar) Increment(n int) {
	b.program.Send(incrMsg(n))
}

func (b *interactiveBar) Done() {
	b.once.Do(func() {
		b.program.Send(stopMsg{})
		b.program.Wait()
	})
}

// --- headless progress bar ---

type headlessBar struct {
	title   string
	total   int
	current int
	writer  io.Writer
}

func (b *headlessBar) Increment(n int) {
	b.current = min(b.current+n, b.total)
	_, _ = fmt.Fprintf(b.writer, "[%d/%d] %s\n", b.current, b.total, b.title)
}

func (b *headlessBar) Done() {}
