package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/netajam/filedress/internal/comment"
	"github.com/netajam/filedress/internal/config"
)

// Command names a subcommand.
type Command string

const (
	Add       Command = "add"
	Remove    Command = "remove"
	Clean     Command = "clean"
	Copy      Command = "copy"
	Structure Command = "structure"
)

// Presets maps --project values to their extensions.
var Presets = map[string][]string{
	"rust":    {"rs"},
	"python":  {"py"},
	"web":     {"ts", "js", "jsx", "tsx", "svelte", "vue", "html", "css", "scss"},
	"java":    {"java", "xml"},
	"flutter": {"dart"},
}

// Config holds all the command-line flag values.
type Config struct {
	Command   Command
	Directory string

	Project    string
	Exts       []string
	Up         int
	Depth      int
	Force      bool
	Exclude    []string
	Workers    int
	ConfigPath string
	Output     string

	InputFile string
	Indent    int

	Verbose       bool
	Plain         bool
	NoUpdateCheck bool
}

// BindGlobalFlags defines the flags shared by every subcommand.
func BindGlobalFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Print debug logs to stderr.")
	fs.BoolVar(&cfg.Plain, "plain", false, "Print one line per file instead of the progress view.")
	fs.BoolVar(&cfg.NoUpdateCheck, "no-update-check", false, "Do not check for a newer release.")
}

// BindFileFlags defines the flags of the commands that walk a directory.
func BindFileFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Project, "project", "", "A preset for common project types ("+strings.Join(presetNames(), ", ")+").")
	fs.StringSliceVar(&cfg.Exts, "exts", nil, "A custom list of file extensions to process (e.g. \"ts,js,css\").")
	fs.IntVarP(&cfg.Up, "up", "u", 0, "How many levels up from the target directory to include in the path.")
	fs.IntVarP(&cfg.Depth, "depth", "d", 0, "How many levels deep to search for files (0 means no limit).")
	fs.BoolVarP(&cfg.Force, "force", "f", false, "Overwrite an existing path header.")
	fs.StringArrayVar(&cfg.Exclude, "exclude", nil, "Glob of paths to skip, relative to the directory (repeatable).")
	fs.IntVarP(&cfg.Workers, "workers", "w", 0, "Number of files processed in parallel (default: number of CPUs).")
	fs.StringVar(&cfg.ConfigPath, "config", "", "Configuration file (default: .filedress.yaml in the directory).")
	fs.StringVarP(&cfg.Output, "output", "o", "", "copy: write the bundle to this file instead of the clipboard.")
}

// BindStructureFlags defines the flags of the structure command.
func BindStructureFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.InputFile, "file", "f", "", "The outline file. Reads piped stdin or the clipboard when empty.")
	fs.StringVarP(&cfg.Directory, "directory", "d", ".", "The directory where the structure is created.")
	fs.IntVarP(&cfg.Indent, "indent", "i", 4, "The number of spaces that make one level of indentation.")
	fs.StringVar(&cfg.ConfigPath, "config", "", "Configuration file (default: .filedress.yaml in the directory).")
}

// Validate checks flag combinations and normalizes extensions.
func (c *Config) Validate() error {
	if c.Project != "" && len(c.Exts) > 0 {
		return fmt.Errorf("error: --project and --exts are mutually exclusive")
	}
	if c.Project != "" {
		c.Project = strings.ToLower(c.Project)
		if _, ok := Presets[c.Project]; !ok {
			return fmt.Errorf("error: unknown project type %q (valid: %s)", c.Project, strings.Join(presetNames(), ", "))
		}
	}
	if c.Up < 0 || c.Depth < 0 || c.Workers < 0 {
		return fmt.Errorf("error: --up, --depth and --workers must not be negative")
	}
	if c.Command == Structure && c.Indent < 1 {
		return fmt.Errorf("error: --indent must be at least 1")
	}

	// Normalize extensions
	var exts []string
	for _, ext := range c.Exts {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	c.Exts = exts
	return nil
}

// Extensions returns the final list of extensions: the preset, the custom
// list, or every extension with a known comment style.
func (c *Config) Extensions() []string {
	if c.Project != "" {
		return Presets[c.Project]
	}
	if len(c.Exts) > 0 {
		return c.Exts
	}
	return comment.Extensions()
}

// ApplyFile fills settings from a configuration file. Flags the user set
// explicitly win; changed reports whether a flag was set.
func (c *Config) ApplyFile(f *config.File, changed func(name string) bool) {
	if f == nil {
		return
	}
	if len(f.Exts) > 0 && !changed("exts") && !changed("project") {
		c.Exts = append([]string(nil), f.Exts...)
	}
	if len(f.Exclude) > 0 && !changed("exclude") {
		c.Exclude = append([]string(nil), f.Exclude...)
	}
	if f.Depth > 0 && !changed("depth") {
		c.Depth = f.Depth
	}
	if f.Up > 0 && !changed("up") {
		c.Up = f.Up
	}
	if f.Workers > 0 && !changed("workers") {
		c.Workers = f.Workers
	}
	if f.Indent > 0 && !changed("indent") {
		c.Indent = f.Indent
	}
}

func presetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
