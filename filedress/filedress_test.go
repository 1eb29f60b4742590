package filedress

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/netajam/filedress/cli"
	"github.com/netajam/filedress/internal/fs"
	"github.com/netajam/filedress/internal/source"
	"github.com/netajam/filedress/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTree(t *testing.T, root string, files map[string]string) *fs.Tree {
	t.Helper()
	tree := &fs.Tree{FS: memfs.New(), Root: root}
	for rel, content := range files {
		if err := util.WriteFile(tree.FS, tree.Abs(rel), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to seed %s: %v", rel, err)
		}
	}
	return tree
}

func read(t *testing.T, tree *fs.Tree, rel string) string {
	t.Helper()
	content, err := tree.ReadFile(rel)
	if err != nil {
		t.Fatalf("failed to read %s: %v", rel, err)
	}
	return content
}

func execute(t *testing.T, cfg *cli.Config, opts ...Option) model.Summary {
	t.Helper()
	app, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	summary, err := app.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if summary.RunID != app.RunID() || summary.RunID == "" {
		t.Errorf("summary run id = %q, app run id = %q", summary.RunID, app.RunID())
	}
	return summary
}

func TestAddAndRemoveHeader(t *testing.T) {
	tree := newTree(t, "/work/project_root", map[string]string{
		"config.py": "pass\n",
		"README.md": "# Title\n",
	})

	summary := execute(t, &cli.Config{Command: cli.Add, Project: "python"}, WithTree(tree))
	if diff := cmp.Diff([]string{"config.py"}, summary.Paths(model.StatusAdded)); diff != "" {
		t.Errorf("added mismatch (-want +got):\n%s", diff)
	}
	if got := read(t, tree, "config.py"); got != "# Path: project_root/config.py\npass\n" {
		t.Errorf("after add: %q", got)
	}
	if got := read(t, tree, "README.md"); got != "# Title\n" {
		t.Errorf("markdown file was touched: %q", got)
	}

	summary = execute(t, &cli.Config{Command: cli.Add, Project: "python"}, WithTree(tree))
	if n := summary.Count(model.StatusSkipped); n != 1 {
		t.Errorf("second add skipped %d files, want 1", n)
	}

	summary = execute(t, &cli.Config{Command: cli.Remove, Exts: []string{"py"}}, WithTree(tree))
	if diff := cmp.Diff([]string{"config.py"}, summary.Paths(model.StatusRemoved)); diff != "" {
		t.Errorf("removed mismatch (-want +got):\n%s", diff)
	}
	if got := read(t, tree, "config.py"); got != "pass\n" {
		t.Errorf("after remove: %q", got)
	}
}

func TestAddWithUpLevels(t *testing.T) {
	tree := newTree(t, "/work/project_root/src/api/v1", map[string]string{
		"user.py": "pass\n",
	})

	execute(t, &cli.Config{Command: cli.Add, Exts: []string{"py"}, Up: 2}, WithTree(tree))

	if got := read(t, tree, "user.py"); !strings.HasPrefix(got, "# Path: src/api/v1/user.py\n") {
		t.Errorf("header = %q", got)
	}
}

func TestAddForceReplaces(t *testing.T) {
	tree := newTree(t, "/work/app", map[string]string{
		"main.go": "// Path: old/main.go\npackage main\n",
	})

	summary := execute(t, &cli.Config{Command: cli.Add, Exts: []string{"go"}, Force: true}, WithTree(tree))

	if n := summary.Count(model.StatusReplaced); n != 1 {
		t.Errorf("replaced %d files, want 1", n)
	}
	if got := read(t, tree, "main.go"); got != "// Path: app/main.go\npackage main\n" {
		t.Errorf("after force: %q", got)
	}
}

func TestDepth(t *testing.T) {
	files := map[string]string{
		"top.py":        "pass\n",
		"a/mid.py":      "pass\n",
		"a/b/c/deep.py": "pass\n",
	}

	tests := []struct {
		depth int
		want  []string
	}{
		{1, []string{"top.py"}},
		{2, []string{"a/mid.py", "top.py"}},
		{0, []string{"a/b/c/deep.py", "a/mid.py", "top.py"}},
	}
	for _, tt := range tests {
		tree := newTree(t, "/work/project_root", files)
		summary := execute(t, &cli.Config{Command: cli.Add, Exts: []string{"py"}, Depth: tt.depth}, WithTree(tree))
		if diff := cmp.Diff(tt.want, summary.Paths(model.StatusAdded)); diff != "" {
			t.Errorf("depth %d mismatch (-want +got):\n%s", tt.depth, diff)
		}
	}
}

func TestClean(t *testing.T) {
	tree := newTree(t, "/work/project_root", map[string]string{
		"src/lib.rs":        "// Path: project_root/src/lib.rs\nlet url = \"http://x.com/#a\"; // note\n",
		"src/clean.rs":      "fn main() {}\n",
		"vendor/skip.rs":    "// vendored\n",
		"web/site.css":      "/* banner */\nbody { color: red; }\n",
		"scripts/run.sh":    "#!/bin/sh\n# comment\necho ${#x}\n",
		"node_modules/x.js": "// ignored\n",
	})

	summary := execute(t, &cli.Config{Command: cli.Clean, Exclude: []string{"vendor/**"}, Workers: 2}, WithTree(tree))

	if diff := cmp.Diff([]string{"scripts/run.sh", "src/lib.rs", "web/site.css"}, summary.Paths(model.StatusCleaned)); diff != "" {
		t.Errorf("cleaned mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"src/clean.rs"}, summary.Paths(model.StatusSkipped)); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}

	want := map[string]string{
		"src/lib.rs":        "// Path: project_root/src/lib.rs\nlet url = \"http://x.com/#a\";\n",
		"web/site.css":      "body { color: red; }\n",
		"scripts/run.sh":    "#!/bin/sh\necho ${#x}\n",
		"vendor/skip.rs":    "// vendored\n",
		"node_modules/x.js": "// ignored\n",
	}
	for rel, content := range want {
		if diff := cmp.Diff(content, read(t, tree, rel)); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", rel, diff)
		}
	}
}

func TestCopyToClipboard(t *testing.T) {
	tree := newTree(t, "/work/project_root", map[string]string{
		"b.py": "print('b')\n",
		"a.py": "print('a')\n",
	})
	var copied string
	provider := &source.Provider{WriteClipboard: func(s string) error {
		copied = s
		return nil
	}}

	summary := execute(t, &cli.Config{Command: cli.Copy, Exts: []string{"py"}}, WithTree(tree), WithSource(provider))

	want := "FILE: project_root/a.py\n---\n\nprint('a')\n" +
		"\n\n---\n" +
		"FILE: project_root/b.py\n---\n\nprint('b')\n"
	if diff := cmp.Diff(want, copied); diff != "" {
		t.Errorf("bundle mismatch (-want +got):\n%s", diff)
	}
	if n := summary.Count(model.StatusCopied); n != 2 {
		t.Errorf("copied %d files, want 2", n)
	}
}

func TestCopyToFile(t *testing.T) {
	tree := newTree(t, "/work/project_root", map[string]string{"a.py": "x = 1\n"})
	out := filepath.Join(t.TempDir(), "bundle.txt")

	execute(t, &cli.Config{Command: cli.Copy, Exts: []string{"py"}, Output: out}, WithTree(tree))

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read bundle: %v", err)
	}
	if string(got) != "FILE: project_root/a.py\n---\n\nx = 1\n" {
		t.Errorf("bundle = %q", got)
	}
}

func TestStructure(t *testing.T) {
	tree := newTree(t, "/work/new", map[string]string{"src/main.go": "package main\n"})
	piped := true
	outline := "Here it is:\n\n```\nsrc/\n    main.go\n    util/\n        helpers.go  # shared\ndocs/\n```\n"
	provider := &source.Provider{Stdin: strings.NewReader(outline), Piped: &piped}

	summary := execute(t, &cli.Config{Command: cli.Structure, Indent: 4}, WithTree(tree), WithSource(provider))

	if diff := cmp.Diff([]string{"docs", "src", "src/util", "src/util/helpers.go"}, summary.Paths(model.StatusCreated)); diff != "" {
		t.Errorf("created mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"src/main.go"}, summary.Paths(model.StatusSkipped)); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}
	if got := read(t, tree, "src/main.go"); got != "package main\n" {
		t.Errorf("existing file was overwritten: %q", got)
	}
}

func TestReadFailureDoesNotStopBatch(t *testing.T) {
	tree := newTree(t, "/work/project_root", map[string]string{
		"a.py": "x = 1  # c\n",
		"b.py": "y = 2  # c\n",
	})
	app, err := New(&cli.Config{Command: cli.Clean, Exts: []string{"py"}}, WithTree(tree))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	files := []string{"a.py", "missing.py", "b.py"}

	outcomes, err := app.run(context.Background(), files, app.cleanComments)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	statuses := map[string]model.Status{}
	for _, o := range outcomes {
		statuses[o.Path] = o.Status
	}
	want := map[string]model.Status{
		"a.py":       model.StatusCleaned,
		"missing.py": model.StatusFailed,
		"b.py":       model.StatusCleaned,
	}
	if diff := cmp.Diff(want, statuses); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestCancelledContext(t *testing.T) {
	tree := newTree(t, "/work/project_root", map[string]string{"a.py": "x = 1  # c\n"})
	app, err := New(&cli.Config{Command: cli.Clean, Exts: []string{"py"}}, WithTree(tree))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = app.Execute(ctx)
	if !IsInterrupted(err) {
		t.Fatalf("expected an interrupted error, got %v", err)
	}
	if got := read(t, tree, "a.py"); got != "x = 1  # c\n" {
		t.Errorf("file changed after cancellation: %q", got)
	}
}

func TestProgressCallback(t *testing.T) {
	tree := newTree(t, "/work/project_root", map[string]string{"a.py": "", "b.py": "", "c.py": ""})
	app, err := New(&cli.Config{Command: cli.Add, Exts: []string{"py"}, Workers: 1}, WithTree(tree))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	var calls [][2]int
	app.SetProgressCallback(func(current, total int) {
		calls = append(calls, [2]int{current, total})
	})

	if _, err := app.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	want := [][2]int{{0, 3}, {1, 3}, {2, 3}, {3, 3}}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(&cli.Config{Command: cli.Clean, Project: "rust", Exts: []string{"rs"}}, WithTree(newTree(t, "/w", nil)))
	if err == nil {
		t.Fatal("expected an error for --project with --exts")
	}
}

func TestDetailedErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := error(&DetailedError{Err: inner})
	if !errors.Is(err, inner) {
		t.Error("DetailedError does not unwrap")
	}
}

func TestWorkerPanicBecomesFailure(t *testing.T) {
	tree := newTree(t, "/work/project_root", map[string]string{"a.py": "", "b.py": ""})
	app, err := New(&cli.Config{Command: cli.Clean, Exts: []string{"py"}, Workers: 2}, WithTree(tree))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	outcomes, err := app.run(context.Background(), []string{"a.py", "b.py"}, func(rel string) model.Outcome {
		if rel == "b.py" {
			panic("boom")
		}
		return model.Outcome{Path: rel, Status: model.StatusSkipped}
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}

	o := outcomes[1]
	if o.Path != "b.py" || o.Status != model.StatusFailed {
		t.Fatalf("outcome = %+v", o)
	}
	var detailed *DetailedError
	if !errors.As(o.Err, &detailed) || len(detailed.Stack) == 0 {
		t.Errorf("panic was not recorded with a stack: %v", o.Err)
	}
	if !strings.Contains(o.Err.Error(), "boom") {
		t.Errorf("error = %v", o.Err)
	}
}
