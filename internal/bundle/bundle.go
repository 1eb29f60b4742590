// Package bundle joins the content of many files into one text blob, each
// file introduced by its path.
package bundle

import (
	"fmt"
	"strings"
)

const separator = "\n\n---\n"

// Entry is one file of a bundle.
type Entry struct {
	Path    string
	Content string
}

// Builder accumulates entries in order.
type Builder struct {
	b     strings.Builder
	files int
	bytes int
}

// Add appends a file to the bundle.
func (b *Builder) Add(e Entry) {
	if b.files > 0 {
		b.b.WriteString(separator)
	}
	fmt.Fprintf(&b.b, "FILE: %s\n---\n\n", e.Path)
	b.b.WriteString(e.Content)
	b.files++
	b.bytes += len(e.Content)
}

// String returns the bundle text.
func (b *Builder) String() string {
	return b.b.String()
}

// Files is the number of entries added.
func (b *Builder) Files() int {
	return b.files
}

// Bytes is the total size of the file contents, headers excluded.
func (b *Builder) Bytes() int {
	return b.bytes
}

// Build renders entries in the given order.
func Build(entries []Entry) string {
	var b Builder
	for _, e := range entries {
		b.Add(e)
	}
	return b.String()
}
