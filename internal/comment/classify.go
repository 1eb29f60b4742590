package comment

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind tells the engine what to do with a classified line.
type Kind int

const (
	// Preserve keeps the original line byte for byte.
	Preserve Kind = iota
	// Drop removes the line; it is entirely inside a block comment.
	Drop
	// Rewrite replaces the line with the code left after removing comments.
	Rewrite
)

func (k Kind) String() string {
	switch k {
	case Preserve:
		return "preserve"
	case Drop:
		return "drop"
	case Rewrite:
		return "rewrite"
	default:
		return "unknown"
	}
}

// Outcome is the classification of a single line.
type Outcome struct {
	Kind Kind
	Code string
	// Opener is the byte offset of a block comment that opens on this
	// line and does not close on it. Only meaningful when the line left
	// the state in a block.
	Opener int
}

// State is carried from one line to the next within a single file.
type State struct {
	InBlock        bool
	InTripleDouble bool
	InTripleSingle bool
}

// Open reports whether a block comment or docstring is still unterminated.
func (s State) Open() bool {
	return s.InBlock || s.InTripleDouble || s.InTripleSingle
}

const (
	tripleDouble = `"""`
	tripleSingle = `'''`
)

// Classify scans one line and reports which part of it is code. The state
// is updated when a block comment or a Python docstring opens or closes.
//
// The line is scanned as bytes. Every marker and quote is ASCII, so kept
// code is built from slices of line and other bytes, valid UTF-8 or not,
// come out unchanged.
//
// Strings do not span lines: quote tracking starts over on every line.
func Classify(line string, style Style, st *State) Outcome {
	if strings.HasPrefix(strings.TrimSpace(line), style.HeaderPrefix()) {
		return Outcome{Kind: Preserve}
	}

	if style.Flavor == Python && (st.InTripleDouble || st.InTripleSingle) {
		delim := tripleDouble
		if st.InTripleSingle {
			delim = tripleSingle
		}
		if countDelims(line, delim)%2 == 1 {
			st.InTripleDouble, st.InTripleSingle = false, false
		}
		return Outcome{Kind: Preserve}
	}

	var (
		out     strings.Builder
		removed bool
		i       int
		// start is where the pending span of kept code begins.
		start int
	)

	if st.InBlock {
		end := strings.Index(line, style.BlockEnd)
		if end < 0 {
			return Outcome{Kind: Drop}
		}
		st.InBlock = false
		removed = true
		rest := line[end+len(style.BlockEnd):]
		i = len(line) - len(strings.TrimLeftFunc(rest, unicode.IsSpace))
		start = i
	}

	var open byte
	for i < len(line) {
		c := line[i]

		if c == '\\' && !(open != 0 && strings.IndexByte(style.RawQuotes, open) >= 0) {
			i += 1 + runeWidth(line[i+1:])
			continue
		}

		if open != 0 {
			if c == open {
				open = 0
			}
			i++
			continue
		}

		if style.Flavor == Python {
			if delim := tripleAt(line[i:]); delim != "" {
				if countDelims(line[i:], delim)%2 == 1 {
					st.InTripleDouble = delim == tripleDouble
					st.InTripleSingle = delim == tripleSingle
				}
				return Outcome{Kind: Preserve}
			}
		}

		if strings.IndexByte(style.Quotes, c) >= 0 {
			open = c
			i++
			continue
		}

		if style.HasBlock() && strings.HasPrefix(line[i:], style.BlockStart) {
			removed = true
			out.WriteString(line[start:i])
			from := i + len(style.BlockStart)
			end := strings.Index(line[from:], style.BlockEnd)
			if end < 0 {
				st.InBlock = true
				return Outcome{Kind: Rewrite, Code: out.String(), Opener: i}
			}
			i = from + end + len(style.BlockEnd)
			start = i
			continue
		}

		if style.Line != "" && strings.HasPrefix(line[i:], style.Line) && wordStart(line, i, style) {
			out.WriteString(line[start:i])
			return Outcome{Kind: Rewrite, Code: out.String()}
		}

		i++
	}

	if !removed {
		return Outcome{Kind: Preserve}
	}
	out.WriteString(line[start:])
	return Outcome{Kind: Rewrite, Code: out.String()}
}

func wordStart(line string, i int, style Style) bool {
	if !style.LineNeedsSpace || i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(line[:i])
	return unicode.IsSpace(r)
}

// runeWidth is the byte length of the first rune of s. An invalid byte
// counts as one.
func runeWidth(s string) int {
	if s == "" {
		return 0
	}
	_, w := utf8.DecodeRuneInString(s)
	return w
}

// tripleAt returns the triple quote delimiter s starts with, if any.
func tripleAt(s string) string {
	switch {
	case strings.HasPrefix(s, tripleDouble):
		return tripleDouble
	case strings.HasPrefix(s, tripleSingle):
		return tripleSingle
	default:
		return ""
	}
}

// countDelims counts occurrences of delim in s, skipping backslash
// escaped bytes.
func countDelims(s, delim string) int {
	n := 0
	for i := 0; i < len(s); {
		switch {
		case s[i] == '\\':
			i += 2
		case strings.HasPrefix(s[i:], delim):
			n++
			i += len(delim)
		default:
			i++
		}
	}
	return n
}
