package core

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"
)

// LintResult is the outcome of running the external linter on one script.
type LintResult struct {
	Errors      int          `json:"errors"`
	Warnings    int          `json:"warnings"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	RawOutput   string       `json:"raw_output,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// Service handles the review business rules on top of a StatusStore.
type Service struct {
	store StatusStore
	now   func() time.Time
}

// NewService creates a new Service.
func NewService(store StatusStore) *Service {
	return &Service{store: store, now: time.Now}
}

// Store exposes the underlying status store.
func (s *Service) Store() StatusStore {
	return s.store
}

// SetStatus validates and records a review decision.
func (s *Service) SetStatus(ctx context.Context, id string, raw string) (Status, error) {
	if id == "" {
		return "", errors.New("script ID cannot be empty")
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return "", err
	}
	if err := s.store.SetStatus(ctx, id, st); err != nil {
		return "", err
	}
	return st, nil
}

// RecordLint derives the script quality from a lint result and persists it.
func (s *Service) RecordLint(ctx context.Context, id string, res LintResult) (QualityInfo, error) {
	diags := res.Diagnostics
	if diags == nil {
		diags = []Diagnostic{}
	}
	q := QualityInfo{
		Quality:     QualityFor(res.Errors, res.Warnings),
		Errors:      res.Errors,
		Warnings:    res.Warnings,
		LintResults: diags,
		LintedAt:    s.now(),
	}
	if err := s.store.SetQuality(ctx, id, q); err != nil {
		return QualityInfo{}, err
	}
	return q, nil
}

// View joins a single script with its review state, including diagnostics.
func (s *Service) View(ctx context.Context, script Script) (ScriptView, error) {
	st, err := s.store.Status(ctx, script.ID)
	if err != nil {
		return ScriptView{}, err
	}
	q, ok, err := s.store.Quality(ctx, script.ID)
	if err != nil {
		return ScriptView{}, err
	}
	if !ok {
		q = QualityInfo{Quality: QualityUnknown}
	}
	v := toView(script, st, q)
	v.LintResults = q.LintResults
	if v.LintResults == nil {
		v.LintResults = []Diagnostic{}
	}
	return v, nil
}

// Views lists scripts joined with their review state, filtered and sorted by
// category then filename.
func (s *Service) Views(ctx context.Context, scripts []Script, f Filter) ([]ScriptView, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ScriptView, 0, len(scripts))
	for _, sc := range scripts {
		v := toView(sc, snap.StatusOf(sc.ID), snap.QualityOf(sc.ID))
		if !f.Match(v) {
			continue
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Filename < out[j].Filename
	})
	return out, nil
}

// Categories counts total, pending and reviewed scripts per category, sorted by name.
func (s *Service) Categories(ctx context.Context, scripts []Script) ([]CategoryCount, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*CategoryCount)
	for _, sc := range scripts {
		c, ok := byName[sc.Category]
		if !ok {
			c = &CategoryCount{Name: sc.Category}
			byName[sc.Category] = c
		}
		c.Total++
		if snap.StatusOf(sc.ID) == StatusPending {
			c.Pending++
		} else {
			c.Reviewed++
		}
	}
	out := make([]CategoryCount, 0, len(byName))
	for _, c := range byName {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Stats summarizes review progress over the given scripts.
func (s *Service) Stats(ctx context.Context, scripts []Script) (Stats, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		Total:     len(scripts),
		ByStatus:  make(map[Status]int, len(AllStatuses)),
		ByQuality: make(map[Quality]int, len(AllQualities)),
	}
	for _, v := range AllStatuses {
		st.ByStatus[v] = 0
	}
	for _, v := range AllQualities {
		st.ByQuality[v] = 0
	}
	for _, sc := range scripts {
		st.ByStatus[snap.StatusOf(sc.ID)]++
		st.ByQuality[snap.QualityOf(sc.ID).Quality]++
	}
	st.Reviewed = st.Total - st.ByStatus[StatusPending]
	if st.Total > 0 {
		st.ReviewProgress = math.Round(float64(st.Reviewed)/float64(st.Total)*1000) / 10
	}
	return st, nil
}

func toView(sc Script, st Status, q QualityInfo) ScriptView {
	quality := q.Quality
	if quality == "" {
		quality = QualityUnknown
	}
	return ScriptView{
		Script:   sc,
		Status:   st,
		Quality:  quality,
		Errors:   q.Errors,
		Warnings: q.Warnings,
	}
}
