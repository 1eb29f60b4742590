package bundle

import "testing"

func TestBuild(t *testing.T) {
	got := Build([]Entry{
		{Path: "proj/a.go", Content: "package a\n"},
		{Path: "proj/b.go", Content: "package b\n"},
	})
	want := "FILE: proj/a.go\n---\n\npackage a\n" +
		"\n\n---\n" +
		"FILE: proj/b.go\n---\n\npackage b\n"
	if got != want {
		t.Errorf("Build mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestBuilderCounts(t *testing.T) {
	var b Builder
	b.Add(Entry{Path: "x", Content: "1234"})
	b.Add(Entry{Path: "y", Content: ""})
	if b.Files() != 2 || b.Bytes() != 4 {
		t.Errorf("Files() = %d, Bytes() = %d", b.Files(), b.Bytes())
	}
	if Build(nil) != "" {
		t.Error("empty bundle should be empty")
	}
}
