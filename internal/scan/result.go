package scan

import (
	"fmt"
	"path/filepath"
	"time"

	"alsdoctor/internal/alsfile"
	"alsdoctor/internal/diagnosis"
	"alsdoctor/internal/liveset"
)

// Result is the outcome for one document.
type Result struct {
	Path      string                   `json:"path"`
	Folder    string                   `json:"project_folder"`
	Analysis  *liveset.ProjectAnalysis `json:"analysis,omitempty"`
	Diagnosis *diagnosis.Diagnosis     `json:"diagnosis,omitempty"`
	Err       error                    `json:"-"`
	Error     string                   `json:"error,omitempty"`
}

// Failed reports whether the document could not be analysed.
func (r Result) Failed() bool { return r.Err != nil }

// Analyze reads, models and diagnoses one document.
func Analyze(path string, opts diagnosis.Options) Result {
	res := Result{Path: path, Folder: filepath.Dir(path)}

	doc, err := alsfile.ReadFile(path)
	if err != nil {
		return res.fail(err)
	}
	analysis, err := liveset.Build(doc)
	if err != nil {
		return res.fail(fmt.Errorf("%s: %w", path, err))
	}
	diag := diagnosis.DiagnoseWith(analysis, opts)
	res.Analysis = analysis
	res.Diagnosis = &diag
	return res
}

func (r Result) fail(err error) Result {
	r.Err = err
	r.Error = err.Error()
	return r
}

// Summary aggregates one run.
type Summary struct {
	RunID    string        `json:"run_id"`
	Root     string        `json:"root"`
	Results  []Result      `json:"results"`
	Failed   int           `json:"failed"`
	Recorded int           `json:"recorded"`
	Duration time.Duration `json:"duration_ns"`
}

// Total returns the number of documents processed.
func (s *Summary) Total() int { return len(s.Results) }

// Failures returns the results that carry an error.
func (s *Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Failed() {
			out = append(out, r)
		}
	}
	return out
}

// AverageScore is the mean health score over successful documents, or 0.
func (s *Summary) AverageScore() float64 {
	total, n := 0, 0
	for _, r := range s.Results {
		if r.Diagnosis != nil {
			total += r.Diagnosis.HealthScore
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d of %d documents failed", s.Failed, s.Total())
}
