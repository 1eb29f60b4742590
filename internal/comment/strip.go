package comment

import (
	"strings"
	"unicode"
)

// Result is the outcome of stripping one file.
type Result struct {
	Lines   []string
	Changed bool
}

// Text is a file body split into lines, remembering its newline sequence.
type Text struct {
	Lines []string
	EOL   string
}

// Split breaks content into lines. A final newline does not produce an
// extra empty line.
func Split(content string) Text {
	eol := "\n"
	if strings.Contains(content, "\r\n") {
		eol = "\r\n"
	}
	if content == "" {
		return Text{EOL: eol}
	}
	norm := strings.TrimSuffix(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	return Text{Lines: strings.Split(norm, "\n"), EOL: eol}
}

// Strip removes comments from the lines of one file. Path headers, string
// literals and Python docstrings are kept as they are.
//
// A block comment still open at the end of the file is not removed: it is
// emitted from its opening marker to the end of the file unchanged.
func Strip(lines []string, style Style) Result {
	var (
		st        State
		out       = make([]string, 0, len(lines))
		openLine  = -1
		openCount int
		// openCode is the opening line with only its closed comments
		// removed, used if the block never ends.
		openCode string
	)

	for n, line := range lines {
		before := len(out)
		if !st.Open() && keepDirective(lines, n, style) {
			out = append(out, line)
			continue
		}

		o := Classify(line, style, &st)
		switch o.Kind {
		case Preserve:
			out = append(out, line)
		case Rewrite:
			if code := strings.TrimRightFunc(o.Code, unicode.IsSpace); code != "" {
				out = append(out, code)
			}
		}

		if st.InBlock && o.Kind == Rewrite {
			openLine, openCount = n, before
			openCode = o.Code + line[o.Opener:]
		}
	}

	if st.InBlock && openLine >= 0 {
		out = append(out[:openCount], openCode)
		out = append(out, lines[openLine+1:]...)
	}

	return Result{
		Lines:   out,
		Changed: normalize(strings.Join(out, "\n")) != normalize(strings.Join(lines, "\n")),
	}
}

// StripText strips a whole file body. It returns the content unchanged and
// false when there was nothing to remove; otherwise the new body ends with
// exactly one newline, or is empty when no lines remain.
func StripText(content string, style Style) (string, bool) {
	t := Split(content)
	res := Strip(t.Lines, style)
	if !res.Changed {
		return content, false
	}
	if len(res.Lines) == 0 {
		return "", true
	}
	return strings.Join(res.Lines, t.EOL) + t.EOL, true
}

// keepDirective reports lines that look like comments but are read by a
// tool: a shebang at the top of the file and Go compiler directives.
func keepDirective(lines []string, n int, style Style) bool {
	line := lines[n]
	if strings.HasPrefix(line, "#!") {
		if n == 0 {
			return true
		}
		if n == 1 && strings.HasPrefix(strings.TrimSpace(lines[0]), style.HeaderPrefix()) {
			return true
		}
	}
	return style.Flavor == CLike && strings.HasPrefix(strings.TrimSpace(line), "//go:")
}

func normalize(s string) string {
	return strings.TrimRight(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}
