package review

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"sync"

	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
	"github.com/aretw0/ahkcurate/pkg/core"
	"github.com/aretw0/ahkcurate/pkg/dataset"
)

// Grade is a curator's verdict on a generated sample.
type Grade string

const (
	GradeGood Grade = "Good"
	GradeBad  Grade = "Bad"

	// NotGraded is reported for samples without a grade.
	NotGraded = "Not Graded"
)

// ParseGrade validates a grade.
func ParseGrade(s string) (Grade, error) {
	switch Grade(s) {
	case GradeGood, GradeBad:
		return Grade(s), nil
	}
	return "", fmt.Errorf("%w %q: must be Good or Bad", core.ErrInvalidGrade, s)
}

// Sample is a generated prompt/response pair awaiting grading.
type Sample struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

// GradedSample is one line of the grades file.
type GradedSample struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
	Grade    Grade  `json:"grade"`
}

// SampleView is a sample with its position and grade.
type SampleView struct {
	Index    int    `json:"index"`
	Total    int    `json:"total"`
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
	Grade    string `json:"grade"`
}

// Grader holds samples and their grades. Grades are keyed by prompt and the
// whole grades file is rewritten on every change.
type Grader struct {
	path string

	mu      sync.RWMutex
	samples []Sample
	grades  map[string]Grade
	order   []string
}

// OpenGrader loads samples and existing grades. Missing files are treated
// as empty; unreadable grade lines are skipped.
func OpenGrader(samplesPath, gradesPath string) (*Grader, error) {
	g := &Grader{path: gradesPath, grades: make(map[string]Grade)}

	if f, err := os.Open(samplesPath); err == nil {
		err = dataset.ScanJSONL(f, func(_ int, s Sample) error {
			g.samples = append(g.samples, s)
			return nil
		})
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read samples: %w", err)
		}
	} else if !errors.Is(err, iofs.ErrNotExist) {
		return nil, fmt.Errorf("failed to open samples: %w", err)
	}

	if f, err := os.Open(gradesPath); err == nil {
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 64<<20)
		for sc.Scan() {
			var gs GradedSample
			if json.Unmarshal(sc.Bytes(), &gs) == nil && gs.Prompt != "" {
				g.set(gs.Prompt, gs.Grade)
			}
		}
		f.Close()
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("failed to read grades: %w", err)
		}
	} else if !errors.Is(err, iofs.ErrNotExist) {
		return nil, fmt.Errorf("failed to open grades: %w", err)
	}
	return g, nil
}

func (g *Grader) set(prompt string, grade Grade) {
	if _, ok := g.grades[prompt]; !ok {
		g.order = append(g.order, prompt)
	}
	g.grades[prompt] = grade
}

// Len returns the number of samples.
func (g *Grader) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.samples)
}

// Samples returns every sample with its grade.
func (g *Grader) Samples() []SampleView {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]SampleView, len(g.samples))
	for i := range g.samples {
		out[i] = g.view(i)
	}
	return out
}

// Sample returns the sample at idx, clamped to the valid range.
func (g *Grader) Sample(idx int) (SampleView, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.samples) == 0 {
		return SampleView{}, fmt.Errorf("samples: %w", core.ErrNotFound)
	}
	return g.view(g.clamp(idx)), nil
}

func (g *Grader) clamp(idx int) int {
	return max(0, min(idx, len(g.samples)-1))
}

func (g *Grader) view(i int) SampleView {
	s := g.samples[i]
	grade := NotGraded
	if gr, ok := g.grades[s.Prompt]; ok {
		grade = string(gr)
	}
	return SampleView{Index: i, Total: len(g.samples), Prompt: s.Prompt, Response: s.Response, Grade: grade}
}

// SetGrade grades the sample at idx (clamped) and persists all grades.
func (g *Grader) SetGrade(idx int, grade Grade) (SampleView, error) {
	if _, err := ParseGrade(string(grade)); err != nil {
		return SampleView{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.samples) == 0 {
		return SampleView{}, fmt.Errorf("samples: %w", core.ErrNotFound)
	}
	i := g.clamp(idx)
	g.set(g.samples[i].Prompt, grade)
	if err := g.save(); err != nil {
		return SampleView{}, err
	}
	return g.view(i), nil
}

func (g *Grader) save() error {
	responses := make(map[string]string, len(g.samples))
	for _, s := range g.samples {
		if _, ok := responses[s.Prompt]; !ok {
			responses[s.Prompt] = s.Response
		}
	}
	rows := make([]GradedSample, 0, len(g.order))
	for _, p := range g.order {
		rows = append(rows, GradedSample{Prompt: p, Response: responses[p], Grade: g.grades[p]})
	}
	var buf bytes.Buffer
	if err := dataset.EncodeJSONL(&buf, rows); err != nil {
		return err
	}
	if err := fs.WriteFileAtomicMkdir(g.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to save grades: %w", err)
	}
	return nil
}
