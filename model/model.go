package model

import "sort"

// Status is the result of processing one file.
type Status string

const (
	StatusAdded    Status = "added"
	StatusReplaced Status = "replaced"
	StatusRemoved  Status = "removed"
	StatusCleaned  Status = "cleaned"
	StatusSkipped  Status = "skipped"
	StatusCopied   Status = "copied"
	StatusCreated  Status = "created"
	StatusFailed   Status = "failed"
)

// Outcome is what happened to a single file.
type Outcome struct {
	Path   string
	Status Status
	// Detail explains a skip, e.g. "header exists".
	Detail string
	Err    error
}

// Summary holds the results of an operation for display.
type Summary struct {
	Command  string
	RunID    string
	Outcomes []Outcome
	Message  string
}

// Count returns how many outcomes have the given status.
func (s Summary) Count(status Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Paths returns the paths of outcomes with the given status.
func (s Summary) Paths(status Status) []string {
	var paths []string
	for _, o := range s.Outcomes {
		if o.Status == status {
			paths = append(paths, o.Path)
		}
	}
	return paths
}

// Failed reports whether any file failed.
func (s Summary) Failed() bool {
	return s.Count(StatusFailed) > 0
}

// Sort orders outcomes by path.
func (s *Summary) Sort() {
	sort.SliceStable(s.Outcomes, func(i, j int) bool {
		return s.Outcomes[i].Path < s.Outcomes[j].Path
	})
}
