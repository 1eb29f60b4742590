// Package update checks, at most once a day, whether a newer release of
// filedress has been published.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/netajam/filedress/internal/state"
)

const (
	CheckInterval = 24 * time.Hour
	Repo          = "netajam/filedress"
	DisableEnv    = "FILEDRESS_NO_UPDATE_CHECK"
	// CheckTimeout bounds the release request.
	CheckTimeout  = 3 * time.Second

	defaultBaseURL = "https://api.github.com"
)

// Release is a newer version found by Check.
type Release struct {
	Version string
	URL     string
}

// Checker queries the GitHub releases API.
type Checker struct {
	Current string
	State   *state.Manager
	Client  *http.Client
	BaseURL string
	Logger  *zap.Logger
	Now     func() time.Time
}

// Disabled reports whether the environment turns update checks off.
func Disabled() bool {
	v := os.Getenv(DisableEnv)
	return v != "" && v != "0" && v != "false"
}

// Check returns the latest release when it is newer than Current. It does
// nothing until CheckInterval has passed since the previous check.
func (c *Checker) Check(ctx context.Context) (*Release, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if c.State != nil && !c.State.Due(now(), CheckInterval) {
		logger.Debug("update check skipped", zap.Time("last_checked", c.State.LastChecked()))
		return nil, nil
	}

	current, err := semver.NewVersion(c.Current)
	if err != nil {
		return nil, fmt.Errorf("invalid current version %q: %w", c.Current, err)
	}

	tag, url, err := c.latest(ctx)
	if err != nil {
		return nil, err
	}
	if c.State != nil {
		if err := c.State.MarkChecked(now()); err != nil {
			logger.Debug("could not record update check", zap.Error(err))
		}
	}

	latest, err := semver.NewVersion(tag)
	if err != nil {
		return nil, fmt.Errorf("invalid release tag %q: %w", tag, err)
	}
	logger.Debug("update check done", zap.String("current", current.String()), zap.String("latest", latest.String()))
	if !latest.GreaterThan(current) {
		return nil, nil
	}
	return &Release{Version: latest.String(), URL: url}, nil
}

func (c *Checker) latest(ctx context.Context) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/repos/"+Repo+"/releases/latest", nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "filedress/"+c.Current)

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch latest release: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("fetch latest release: unexpected status %s", resp.Status)
	}

	var body struct {
		TagName string `json:"tag_name"`
		HTMLURL string `json:"html_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", fmt.Errorf("decode latest release: %w", err)
	}
	return body.TagName, body.HTMLURL, nil
}
