package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown renders md for the terminal. With colors disabled, or when
// rendering fails, md is returned unchanged.
func (t *Theme) Markdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if t.NoColor {
		return md
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out) + "\n"
}
