package filedress_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/netajam/filedress/filedress"
	"github.com/netajam/filedress/model"
)

func TestCleanText(t *testing.T) {
	got, changed := filedress.CleanText("x = 1  # note\n", "tool.py")
	if !changed || got != "x = 1\n" {
		t.Errorf("CleanText = %q, %v", got, changed)
	}

	got, changed = filedress.CleanText("FROM scratch\n", "Dockerfile")
	if changed || got != "FROM scratch\n" {
		t.Errorf("CleanText reported a change: %q", got)
	}
}

func TestLibraryRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project_root")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.py")
	if err := os.WriteFile(path, []byte("pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := filedress.Run(context.Background(), "add", filedress.Config{Directory: dir, Extensions: []string{"py"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Count(model.StatusAdded) != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "# Path: project_root/config.py\npass\n" {
		t.Errorf("content = %q", content)
	}

	if _, err := filedress.Run(context.Background(), "structure", filedress.Config{Directory: dir}); err == nil {
		t.Error("expected an error for an unsupported command")
	}
}
