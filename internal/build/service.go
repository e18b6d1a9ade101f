package build

import (
	"time"

	"git.home.luguber.info/inful/docpage/internal/config"
)

// Request contains all inputs for one build run.
type Request struct {
	// Config is the loaded configuration.
	Config *config.Config

	// Pages overrides the configured page definition list when non-empty.
	Pages []string

	// Force rebuilds pages whose inputs are unchanged since the last build.
	Force bool
}

// Status is the outcome of a build or of one page.
type Status string

const (
	// StatusSuccess means every API block found its record.
	StatusSuccess Status = "success"
	// StatusDegraded means the page was written with absent API records.
	StatusDegraded Status = "degraded"
	// StatusSkipped means the inputs matched the previous manifest.
	StatusSkipped Status = "skipped"
	// StatusFailed means the page or run aborted without output.
	StatusFailed Status = "failed"
)

// IsSuccess reports whether output is usable.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess || s == StatusDegraded || s == StatusSkipped
}

// PageResult describes one processed page definition.
type PageResult struct {
	Name        string
	Definition  string
	Output      string
	Manifest    string
	Status      Status
	Blocks      int
	Missing     []string
	Fingerprint string
	InputHash   string
	Duration    time.Duration
}

// Result is the outcome of a Run.
type Result struct {
	BuildID   string
	Status    Status
	Pages     []PageResult
	Records   int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Built returns the number of pages written in this run.
func (r *Result) Built() int {
	n := 0
	for _, p := range r.Pages {
		if p.Status == StatusSuccess || p.Status == StatusDegraded {
			n++
		}
	}
	return n
}

// MissingMetadata returns the total count of absent API records across pages.
func (r *Result) MissingMetadata() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Missing)
	}
	return n
}

// overall folds page statuses into a run status.
func overall(pages []PageResult) Status {
	status := StatusSkipped
	if len(pages) == 0 {
		return StatusSuccess
	}
	for _, p := range pages {
		switch p.Status {
		case StatusFailed:
			return StatusFailed
		case StatusDegraded:
			status = StatusDegraded
		case StatusSuccess:
			if status == StatusSkipped {
				status = StatusSuccess
			}
		}
	}
	return status
}
