// Package structure turns an indented outline of files and folders into
// the corresponding tree on disk.
package structure

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/netajam/filedress/internal/fs"
)

const boxDrawing = "│├└─"

// Node is a file or directory of the outline.
type Node struct {
	Name     string
	Level    int
	Path     string
	Children []*Node
}

// IsDir reports whether the node stands for a directory.
func (n *Node) IsDir() bool {
	return strings.HasSuffix(n.Name, "/") || len(n.Children) > 0
}

// Lines returns the outline lines of the input. When the input holds a
// fenced Markdown code block, only that block is used.
func Lines(content string) []string {
	if strings.Contains(content, "```") || strings.Contains(content, "~~~") {
		if block, ok := fencedBlock([]byte(content)); ok {
			content = block
		}
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.Split(content, "\n")
}

// ParseLine splits an outline line into its indentation level and name.
// Whitespace and box drawing characters count toward the indentation; a
// tab counts as a full level. Trailing "# note" annotations are dropped.
func ParseLine(line string, indent int) (int, string, bool) {
	if strings.TrimSpace(line) == "" {
		return 0, "", false
	}
	if indent < 1 {
		indent = 1
	}

	width, offset := 0, 0
	for _, c := range line {
		if c == '\t' {
			width += indent
		} else if c == ' ' || strings.ContainsRune(boxDrawing, c) {
			width++
		} else {
			break
		}
		offset += len(string(c))
	}

	name := strings.TrimSpace(line[offset:])
	if i := strings.Index(name, " #"); i > 0 {
		name = strings.TrimSpace(name[:i])
	}
	if name == "" {
		return 0, "", false
	}
	return width / indent, name, true
}

// Build parses lines into a tree under an unnamed root.
func Build(lines []string, indent int) *Node {
	root := &Node{Level: -1}
	stack := []*Node{root}

	for _, line := range lines {
		level, name, ok := ParseLine(line, indent)
		if !ok {
			continue
		}
		for len(stack) > 1 && stack[len(stack)-1].Level >= level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		node := &Node{
			Name:  name,
			Level: level,
			Path:  path.Join(parent.Path, strings.TrimSuffix(name, "/")),
		}
		parent.Children = append(parent.Children, node)
		stack = append(stack, node)
	}
	return root
}

// Entry is one path created by Materialize.
type Entry struct {
	Path    string
	Dir     bool
	Created bool
}

// Materialize creates every node of the tree below t.Root. Existing files
// are left untouched.
func Materialize(t *fs.Tree, root *Node) ([]Entry, error) {
	var entries []Entry
	var walk func(n *Node) error
	walk = func(n *Node) error {
		for _, child := range n.Children {
			if !filepath.IsLocal(filepath.FromSlash(child.Path)) {
				return fmt.Errorf("refusing to create %q outside the target directory", child.Path)
			}
			if child.IsDir() {
				if err := t.MkdirAll(child.Path); err != nil {
					return err
				}
				entries = append(entries, Entry{Path: child.Path, Dir: true, Created: true})
				if err := walk(child); err != nil {
					return err
				}
				continue
			}
			created, err := t.Touch(child.Path)
			if err != nil {
				return err
			}
			entries = append(entries, Entry{Path: child.Path, Created: created})
		}
		return nil
	}
	err := walk(root)
	return entries, err
}
