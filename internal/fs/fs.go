package fs

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// DefaultExclude lists directories that are never worth walking into.
var DefaultExclude = []string{"**/.git", "**/node_modules", "**/target"}

// Tree is a directory tree read and written through a billy filesystem.
// Paths handed out by a Tree are slash separated and relative to Root.
type Tree struct {
	FS   billy.Filesystem
	Root string
}

// NewOSTree opens dir on the native filesystem.
func NewOSTree(dir string) (*Tree, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("open directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}
	return &Tree{FS: NewNative(), Root: abs}, nil
}

// Filter selects the files returned by Files.
type Filter struct {
	// Extensions without the dot. Files without an extension match on
	// their base name, e.g. "Dockerfile".
	Extensions []string
	// MaxDepth limits the walk; 1 means only entries directly in Root.
	// Zero means no limit.
	MaxDepth int
	// Exclude holds doublestar patterns matched against relative paths.
	// A matching directory is skipped as a whole.
	Exclude []string
}

// Files walks the tree and returns the matching regular files, sorted.
func (t *Tree) Files(f Filter) ([]string, error) {
	exts := make(map[string]struct{}, len(f.Extensions))
	for _, e := range f.Extensions {
		exts[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}
	for _, p := range f.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}

	var files []string
	err := util.Walk(t.FS, t.Root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if p == t.Root {
				return err
			}
			return nil
		}
		rel, err := filepath.Rel(t.Root, p)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		depth := strings.Count(rel, "/") + 1

		if info.IsDir() {
			if excluded(rel, f.Exclude) || (f.MaxDepth > 0 && depth >= f.MaxDepth) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() || excluded(rel, f.Exclude) {
			return nil
		}
		if f.MaxDepth > 0 && depth > f.MaxDepth {
			return nil
		}
		if _, ok := exts[key(rel)]; ok {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", t.Root, err)
	}
	sort.Strings(files)
	return files, nil
}

// key is the lookup key of a file in an extension set.
func key(rel string) string {
	if ext := path.Ext(rel); ext != "" {
		return strings.ToLower(ext[1:])
	}
	return strings.ToLower(path.Base(rel))
}

func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Abs returns the filesystem path of rel.
func (t *Tree) Abs(rel string) string {
	return t.FS.Join(t.Root, filepath.FromSlash(rel))
}

// ReadFile reads a file of the tree.
func (t *Tree) ReadFile(rel string) (string, error) {
	b, err := util.ReadFile(t.FS, t.Abs(rel))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rel, err)
	}
	return string(b), nil
}

// WriteFile replaces a file's content. The data goes to a temporary file
// first, so the target ends up with either the old or the new content.
func (t *Tree) WriteFile(rel, content string) error {
	target := t.Abs(rel)
	mode := os.FileMode(0o644)
	if info, err := t.FS.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := util.TempFile(t.FS, filepath.Dir(target), ".filedress-")
	if err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write([]byte(content)); err != nil {
		tmp.Close()
		t.FS.Remove(name)
		return fmt.Errorf("write %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		t.FS.Remove(name)
		return fmt.Errorf("write %s: %w", rel, err)
	}
	if err := t.FS.Rename(name, target); err != nil {
		t.FS.Remove(name)
		return fmt.Errorf("write %s: %w", rel, err)
	}
	if ch, ok := t.FS.(billy.Change); ok {
		// Temp files are created 0600.
		if err := ch.Chmod(target, mode); err != nil {
			return fmt.Errorf("chmod %s: %w", rel, err)
		}
	}
	return nil
}

// MkdirAll creates a directory and its parents.
func (t *Tree) MkdirAll(rel string) error {
	if err := t.FS.MkdirAll(t.Abs(rel), 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", rel, err)
	}
	return nil
}

// Touch creates an empty file, with its parent directories, unless it
// already exists. It reports whether the file was created.
func (t *Tree) Touch(rel string) (bool, error) {
	target := t.Abs(rel)
	if _, err := t.FS.Stat(target); err == nil {
		return false, nil
	}
	if err := t.FS.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return false, fmt.Errorf("create directory for %s: %w", rel, err)
	}
	f, err := t.FS.Create(target)
	if err != nil {
		return false, fmt.Errorf("create %s: %w", rel, err)
	}
	return true, f.Close()
}

// DisplayPath is the path written into a header: rel prefixed with the
// name of root and up more of its parent directories.
func DisplayPath(root, rel string, up int) string {
	var parts []string
	for _, p := range strings.Split(filepath.ToSlash(filepath.Clean(root)), "/") {
		if p != "" && !strings.HasSuffix(p, ":") {
			parts = append(parts, p)
		}
	}
	n := up + 1
	if n > len(parts) {
		n = len(parts)
	}
	return path.Join(append(parts[len(parts)-n:], rel)...)
}
