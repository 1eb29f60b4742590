package cli

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"

	"github.com/netajam/filedress/internal/config"
)

func TestExtensions(t *testing.T) {
	c := &Config{Project: "Python"}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if diff := cmp.Diff([]string{"py"}, c.Extensions()); diff != "" {
		t.Errorf("preset mismatch (-want +got):\n%s", diff)
	}

	c = &Config{Exts: []string{".toml", "yaml", " "}}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if diff := cmp.Diff([]string{"toml", "yaml"}, c.Extensions()); diff != "" {
		t.Errorf("custom exts mismatch (-want +got):\n%s", diff)
	}

	all := (&Config{}).Extensions()
	for _, want := range []string{"rs", "py", "svelte"} {
		found := false
		for _, e := range all {
			found = found || e == want
		}
		if !found {
			t.Errorf("default extensions miss %q", want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"project and exts", Config{Project: "rust", Exts: []string{"rs"}}},
		{"unknown project", Config{Project: "cobol"}},
		{"negative depth", Config{Depth: -1}},
		{"zero indent", Config{Command: Structure, Indent: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestFlagsAndFile(t *testing.T) {
	cfg := &Config{}
	fs := pflag.NewFlagSet("clean", pflag.ContinueOnError)
	BindGlobalFlags(fs, cfg)
	BindFileFlags(fs, cfg)
	if err := fs.Parse([]string{"--exts", "go,rs", "-d", "2", "--exclude", "vendor/**"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cfg.ApplyFile(&config.File{Exts: []string{"py"}, Depth: 5, Up: 1, Workers: 3}, fs.Changed)

	want := &Config{Exts: []string{"go", "rs"}, Depth: 2, Up: 1, Workers: 3, Exclude: []string{"vendor/**"}}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}
