package filedress

import (
	"context"
	"fmt"

	"github.com/netajam/filedress/cli"
	"github.com/netajam/filedress/internal/comment"
	"github.com/netajam/filedress/model"
)

// Config for using filedress as a library.
type Config struct {
	// Directory to process.
	Directory string
	// Filter by extension (e.g. 'py', 'ts'). Empty means every known language.
	Extensions []string
	// Depth limits the search; 1 means only files directly in Directory.
	Depth int
	// Up adds this many parent directories to header paths.
	Up int
	// Force replaces headers that already exist.
	Force bool
}

// Run executes one of add, remove or clean on a directory and returns the
// outcome of every file.
func Run(ctx context.Context, command string, config Config) (model.Summary, error) {
	cmd := cli.Command(command)
	switch cmd {
	case cli.Add, cli.Remove, cli.Clean:
	default:
		return model.Summary{}, fmt.Errorf("unsupported library command %q", command)
	}

	app, err := New(&cli.Config{
		Command:   cmd,
		Directory: config.Directory,
		Exts:      config.Extensions,
		Depth:     config.Depth,
		Up:        config.Up,
		Force:     config.Force,
	})
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to initialize filedress app: %w", err)
	}
	return app.Execute(ctx)
}

// CleanText removes the comments from content, choosing the comment style
// from the extension or name of path. It reports whether anything was
// removed; when nothing was, content is returned as is.
func CleanText(content, path string) (string, bool) {
	return comment.StripText(content, comment.ForPath(path))
}
