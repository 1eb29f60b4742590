// Package header adds and removes the path header: a single comment line at
// the top of a file recording its path inside the project.
package header

import (
	"strings"

	"github.com/netajam/filedress/internal/comment"
)

// Action is what Add did to a file.
type Action int

const (
	Added Action = iota
	Replaced
	Exists
)

func (a Action) String() string {
	switch a {
	case Added:
		return "added"
	case Replaced:
		return "replaced"
	default:
		return "exists"
	}
}

// Line renders the header for a display path. Styles without a line
// comment close the header on the same line.
func Line(style comment.Style, display string) string {
	display = strings.ReplaceAll(display, "\\", "/")
	if style.Line != "" {
		return style.HeaderPrefix() + " " + display
	}
	return style.HeaderPrefix() + " " + display + " " + style.BlockEnd
}

// Has reports whether the first line of content is a path header.
func Has(content string, style comment.Style) bool {
	first, _ := cut(content)
	return strings.HasPrefix(strings.TrimSpace(first), style.HeaderPrefix())
}

// Add puts the header for display on top of content. An existing header is
// left alone unless force is set, in which case it is replaced.
func Add(content string, style comment.Style, display string, force bool) (string, Action) {
	line := Line(style, display)
	if !Has(content, style) {
		return line + eol(content) + content, Added
	}
	if !force {
		return content, Exists
	}
	_, rest := cut(content)
	return line + eol(content) + rest, Replaced
}

// Remove drops the header line. It reports false when there is none.
func Remove(content string, style comment.Style) (string, bool) {
	if !Has(content, style) {
		return content, false
	}
	_, rest := cut(content)
	return rest, true
}

// cut splits content after its first line. The newline is consumed.
func cut(content string) (first, rest string) {
	i := strings.IndexByte(content, '\n')
	if i < 0 {
		return content, ""
	}
	return strings.TrimSuffix(content[:i], "\r"), content[i+1:]
}

func eol(content string) string {
	if strings.Contains(content, "\r\n") {
		return "\r\n"
	}
	return "\n"
}
