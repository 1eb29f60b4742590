package comment

import (
	"path/filepath"
	"sort"
	"strings"
)

// Flavor is the language family that decides which comment and string
// rules apply to a file.
type Flavor int

const (
	CLike Flavor = iota
	StyleSheet
	Markup
	Script
	Python
)

func (f Flavor) String() string {
	switch f {
	case CLike:
		return "c-like"
	case StyleSheet:
		return "style"
	case Markup:
		return "markup"
	case Script:
		return "script"
	case Python:
		return "python"
	default:
		return "unknown"
	}
}

// Style describes the comment syntax of a file. An empty string means the
// marker does not exist for that language.
type Style struct {
	Line       string
	BlockStart string
	BlockEnd   string
	Flavor     Flavor
	// Quotes lists the bytes that open and close a string literal.
	Quotes string
	// RawQuotes is the subset of Quotes whose strings take backslashes
	// literally, like Go raw strings.
	RawQuotes string
	// LineNeedsSpace requires the line marker to start a word, so that
	// shell constructs like ${#arr[@]} are not taken as comments.
	LineNeedsSpace bool
}

// HasBlock reports whether the style has a complete block comment pair.
func (s Style) HasBlock() bool {
	return s.BlockStart != "" && s.BlockEnd != ""
}

// Prefix is the marker used to open a header comment.
func (s Style) Prefix() string {
	if s.Line != "" {
		return s.Line
	}
	return s.BlockStart
}

// HeaderPrefix is the reserved start of a path header line.
func (s Style) HeaderPrefix() string {
	return s.Prefix() + " Path:"
}

var (
	cLike  = Style{Line: "//", BlockStart: "/*", BlockEnd: "*/", Flavor: CLike, Quotes: "\"'`"}
	goLang = Style{Line: "//", BlockStart: "/*", BlockEnd: "*/", Flavor: CLike, Quotes: "\"'`", RawQuotes: "`"}
	sheet  = Style{BlockStart: "/*", BlockEnd: "*/", Flavor: StyleSheet, Quotes: "\"'"}
	markup = Style{BlockStart: "<!--", BlockEnd: "-->", Flavor: Markup, Quotes: "\"'"}
	script = Style{Line: "#", Flavor: Script, Quotes: "\"'", LineNeedsSpace: true}
	python = Style{Line: "#", Flavor: Python, Quotes: "\"'"}

	// fallback is used for anything the table does not know.
	fallback = Style{Line: "//", Flavor: CLike, Quotes: "\"'"}
)

var styles = map[string]Style{
	"c": cLike, "h": cLike, "cpp": cLike, "cc": cLike, "hpp": cLike,
	"cs": cLike, "go": goLang, "java": cLike, "rs": cLike, "swift": cLike,
	"kt": cLike, "kts": cLike, "js": cLike, "jsx": cLike, "mjs": cLike,
	"cjs": cLike, "ts": cLike, "tsx": cLike, "dart": cLike, "scala": cLike,
	"php": cLike,

	"css": sheet, "scss": sheet, "less": sheet,

	"html": markup, "htm": markup, "xml": markup, "svelte": markup,
	"vue": markup, "md": markup,

	"rb": script, "sh": script, "bash": script, "zsh": script, "pl": script,
	"ps1": script, "yaml": script, "yml": script, "toml": script, "r": script,
	"dockerfile": script, "makefile": script,

	"py": python, "pyi": python,
}

// Resolve maps a file extension, with or without its leading dot, to a
// comment style. Unknown extensions get a "//" line style.
func Resolve(ext string) Style {
	key := strings.ToLower(strings.TrimPrefix(ext, "."))
	if s, ok := styles[key]; ok {
		return s
	}
	return fallback
}

// ForPath resolves the style of a file. Files without an extension are
// looked up by name, which covers Dockerfile and Makefile.
func ForPath(path string) Style {
	if ext := filepath.Ext(path); ext != "" {
		return Resolve(ext)
	}
	return Resolve(filepath.Base(path))
}

// Extensions returns every key known to the style table, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(styles))
	for k := range styles {
		if k == "dockerfile" || k == "makefile" {
			continue
		}
		exts = append(exts, k)
	}
	sort.Strings(exts)
	return exts
}
