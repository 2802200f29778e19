package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	// ErrHeadless is returned when a prompt is needed but no terminal is attached.
	ErrHeadless = errors.New("ui: confirmation required but stdin is not a terminal")

	// ErrCancelled is returned when the user aborts a prompt.
	ErrCancelled = errors.New("ui: cancelled by user")
)

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(title, description string) (bool, error)
}

// Prompt implements Confirmer with a huh form.
type Prompt struct {
	terminal *Terminal
	theme    *Theme
}

// NewPrompt creates a Prompt. Prompts fail with ErrHeadless when terminal
// reports headless mode.
func NewPrompt(terminal *Terminal, theme *Theme) *Prompt {
	return &Prompt{terminal: terminal, theme: theme}
}

// Confirm shows the question and returns the answer.
func (p *Prompt) Confirm(title, description string) (bool, error) {
	if p.terminal.IsHeadless() {
		return false, ErrHeadless
	}

	ok := false
	field := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)
	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(p.huhTheme()).
		WithAccessible(false)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, ErrCancelled
		}
		return false, fmt.Errorf("confirm: %w", err)
	}
	return ok, nil
}

func (p *Prompt) huhTheme() *huh.Theme {
	t := huh.ThemeBase()
	if p.theme == nil || p.theme.NoColor {
		return t
	}
	t.Focused.Title = t.Focused.Title.Foreground(p.theme.Primary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(p.theme.Muted)
	t.Focused.FocusedButton = t.Focused.FocusedButton.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(p.theme.Primary)
	t.Focused.BlurredButton = t.Focused.BlurredButton.Foreground(p.theme.Muted)
	t.Blurred = t.Focused
	return t
}

// Static is a Confirmer with a fixed answer, for --yes and tests.
type Static bool

// Confirm returns the fixed answer.
func (s Static) Confirm(string, string) (bool, error) { return bool(s), nil }
