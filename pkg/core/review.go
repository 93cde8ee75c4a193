package core

import (
	"fmt"
	"strings"
	"time"
)

// Status is the review decision recorded for a script.
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusNeedsFix   Status = "needs_fix"
	StatusRejected   Status = "rejected"
	StatusReviewedOK Status = "reviewed_ok"
	StatusSkip       Status = "skip"
)

// SettableStatuses lists the statuses a reviewer may assign. Pending is implicit.
var SettableStatuses = []Status{StatusApproved, StatusNeedsFix, StatusRejected, StatusReviewedOK, StatusSkip}

// AllStatuses lists every status, pending first.
var AllStatuses = append([]Status{StatusPending}, SettableStatuses...)

// ParseStatus validates a status assigned by a reviewer.
func ParseStatus(s string) (Status, error) {
	for _, v := range SettableStatuses {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w %q: must be one of %s", ErrInvalidStatus, s, joinStatuses(SettableStatuses))
}

func joinStatuses(list []Status) string {
	parts := make([]string, len(list))
	for i, s := range list {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// Quality is the lint-derived quality bucket of a script.
type Quality string

const (
	QualityGood    Quality = "good"
	QualityWarning Quality = "warning"
	QualityError   Quality = "error"
	QualityUnknown Quality = "unknown"
)

// AllQualities lists every quality bucket.
var AllQualities = []Quality{QualityGood, QualityWarning, QualityError, QualityUnknown}

// QualityFor derives the bucket from diagnostic counts.
func QualityFor(errors, warnings int) Quality {
	switch {
	case errors > 0:
		return QualityError
	case warnings > 0:
		return QualityWarning
	default:
		return QualityGood
	}
}

// Diagnostic is a single linter finding. The shape is owned by the external
// linter, so it is kept as a free-form object.
type Diagnostic map[string]any

// Severity returns the numeric severity (1 error, 2 warning) or 0 when absent.
func (d Diagnostic) Severity() int {
	switch v := d["severity"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

// Message returns the diagnostic message, if any.
func (d Diagnostic) Message() string {
	s, _ := d["message"].(string)
	return s
}

// QualityInfo is the persisted result of the last lint run of a script.
type QualityInfo struct {
	Quality     Quality      `json:"quality"`
	Errors      int          `json:"errors"`
	Warnings    int          `json:"warnings"`
	LintResults []Diagnostic `json:"lint_results"`
	LintedAt    time.Time    `json:"linted_at"`
}

// Script is a reviewable source file discovered under the scripts directory.
type Script struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	Category     string    `json:"category"`
	RelativePath string    `json:"relative_path"`
	AbsolutePath string    `json:"absolute_path"`
	Size         int64     `json:"size"`
	Modified     time.Time `json:"modified"`
}

// ScriptView is a script joined with its review state.
type ScriptView struct {
	Script
	Status      Status       `json:"status"`
	Quality     Quality      `json:"quality"`
	Errors      int          `json:"errors"`
	Warnings    int          `json:"warnings"`
	LintResults []Diagnostic `json:"lint_results,omitempty"`
}

// Filter narrows a script listing. Empty fields match everything.
type Filter struct {
	Category string
	Status   Status
	Quality  Quality
}

// Match reports whether a view passes the filter.
func (f Filter) Match(v ScriptView) bool {
	if f.Category != "" && v.Category != f.Category {
		return false
	}
	if f.Status != "" && v.Status != f.Status {
		return false
	}
	if f.Quality != "" && v.Quality != f.Quality {
		return false
	}
	return true
}

// CategoryCount summarizes review progress in one category.
type CategoryCount struct {
	Name     string `json:"name"`
	Total    int    `json:"total"`
	Pending  int    `json:"pending"`
	Reviewed int    `json:"reviewed"`
}

// Stats summarizes review progress over the whole catalog.
type Stats struct {
	Total          int             `json:"total"`
	ByStatus       map[Status]int  `json:"by_status"`
	ByQuality      map[Quality]int `json:"by_quality"`
	Reviewed       int             `json:"reviewed"`
	ReviewProgress float64         `json:"review_progress"`
}
