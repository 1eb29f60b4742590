package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
)

// Provider reads input text and delivers output text. The zero value uses
// the process stdin and the system clipboard.
type Provider struct {
	Stdin io.Reader
	// Piped overrides the terminal check on Stdin, for tests.
	Piped *bool
	// ReadClipboard and WriteClipboard default to the system clipboard.
	ReadClipboard  func() (string, error)
	WriteClipboard func(string) error
}

// New creates a Provider bound to the process stdin and the clipboard.
func New() *Provider {
	return &Provider{}
}

func (p *Provider) stdin() io.Reader {
	if p.Stdin != nil {
		return p.Stdin
	}
	return os.Stdin
}

func (p *Provider) isPiped() bool {
	if p.Piped != nil {
		return *p.Piped
	}
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// GetContent retrieves content from a file when path is set, else from
// stdin when it is piped, else from the clipboard.
func (p *Provider) GetContent(path string) (string, error) {
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(content), nil
	}

	if p.isPiped() {
		content, err := io.ReadAll(p.stdin())
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(content), nil
	}

	read := p.ReadClipboard
	if read == nil {
		read = clipboard.ReadAll
	}
	content, err := read()
	if err != nil {
		return "", fmt.Errorf("failed to read from clipboard: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	return content, nil
}

// Copy puts text on the clipboard.
func (p *Provider) Copy(text string) error {
	write := p.WriteClipboard
	if write == nil {
		write = clipboard.WriteAll
	}
	if err := write(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard (the content might be too large): %w", err)
	}
	return nil
}
