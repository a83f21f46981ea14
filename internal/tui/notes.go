package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/clubsmell/fragdash/internal/tui/theme"
)

// notesRenderer renders review notes as markdown. The glamour renderer is
// rebuilt only when the width or theme changes; output is cached per text.
type notesRenderer struct {
	width    int
	style    string
	renderer *glamour.TermRenderer
	cache    map[string]string
}

func newNotesRenderer() *notesRenderer {
	return &notesRenderer{cache: make(map[string]string)}
}

func (n *notesRenderer) reset() {
	n.renderer = nil
	n.cache = make(map[string]string)
}

// render returns md rendered for width, or md itself if glamour fails.
func (n *notesRenderer) render(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}

	style := theme.Active.GlamourStyle
	if n.renderer == nil || n.width != width || n.style != style {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		n.renderer, n.width, n.style = r, width, style
		n.cache = make(map[string]string)
	}

	if out, ok := n.cache[md]; ok {
		return out
	}
	out, err := n.renderer.Render(md)
	if err != nil {
		return md
	}
	out = strings.Trim(out, "\n")
	n.cache[md] = out
	return out
}
