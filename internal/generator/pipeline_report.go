package generator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"vuedoc/internal/extractor"
	"vuedoc/internal/script"
)

// Severity ranks report signals.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// Signal flags something a reader of the run report should look at.
type Signal struct {
	Code     string   `json:"code"`
	Stage    string   `json:"stage"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Value    float64  `json:"value,omitempty"`
}

// StageMetric is the timing and outcome of one stage.
type StageMetric struct {
	Name       string             `json:"name"`
	OK         bool               `json:"ok"`
	StartedAt  time.Time          `json:"started_at"`
	DurationMS int64              `json:"duration_ms"`
	Counters   map[string]float64 `json:"counters,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// ComponentMetric records what a run did with one component.
type ComponentMetric struct {
	ID       string `json:"id"`
	Filepath string `json:"filepath"`
	Action   string `json:"action"`
	Entries  int    `json:"entries"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
}

type ReportSummary struct {
	StageCount           int              `json:"stage_count"`
	FailedStages         int              `json:"failed_stages"`
	ComponentCount       int              `json:"component_count"`
	ComponentsWithErrors int              `json:"components_with_errors"`
	EntryCount           int              `json:"entry_count"`
	Signals              map[Severity]int `json:"signals,omitempty"`
}

// PipelineReport is the JSON record a sync or generation run leaves next to
// the documentation.
type PipelineReport struct {
	Mode        string            `json:"mode"`
	GeneratedAt time.Time         `json:"generated_at"`
	OutputDir   string            `json:"output_dir"`
	Stages      []StageMetric     `json:"stages"`
	Components  []ComponentMetric `json:"components,omitempty"`
	Signals     []Signal          `json:"signals,omitempty"`
	Summary     ReportSummary     `json:"summary"`
}

func NewPipelineReport(mode, outputDir string) *PipelineReport {
	return &PipelineReport{
		Mode:      mode,
		OutputDir: outputDir,
		Stages:    []StageMetric{},
	}
}

// Stage is a running stage; End records it.
type Stage struct {
	report  *PipelineReport
	name    string
	started time.Time
}

func (r *PipelineReport) BeginStage(name string) Stage {
	return Stage{report: r, name: name, started: time.Now().UTC()}
}

// End appends the stage to its report. A non-nil err marks it failed.
func (s Stage) End(counters map[string]float64, err error) {
	if s.report == nil {
		return
	}
	m := StageMetric{
		Name:       s.name,
		OK:         err == nil,
		StartedAt:  s.started,
		DurationMS: time.Since(s.started).Milliseconds(),
		Counters:   counters,
	}
	if err != nil {
		m.Error = err.Error()
	}
	s.report.Stages = append(s.report.Stages, m)
}

func (r *PipelineReport) AddSignal(s Signal) {
	if r == nil {
		return
	}
	r.Signals = append(r.Signals, s)
}

// AddComponent records the outcome of one component.
func (r *PipelineReport) AddComponent(doc *extractor.ComponentDoc, action string) {
	if r == nil || doc == nil {
		return
	}
	m := ComponentMetric{
		ID:       doc.ID,
		Filepath: doc.Filepath,
		Action:   action,
		Entries:  len(doc.Entries),
	}
	for _, msg := range doc.Messages {
		switch msg.Level {
		case script.LevelError:
			m.Errors++
		case script.LevelWarning:
			m.Warnings++
		}
	}
	if m.Errors > 0 {
		r.AddSignal(Signal{
			Code:     "component_errors",
			Stage:    action,
			Severity: SeverityWarning,
			Message:  doc.Filepath + " was documented with errors",
			Value:    float64(m.Errors),
		})
	}
	r.Components = append(r.Components, m)
}

// Finalize orders signals (critical first) and computes the summary.
func (r *PipelineReport) Finalize() {
	r.GeneratedAt = time.Now().UTC()
	sort.SliceStable(r.Signals, func(i, j int) bool {
		a, b := r.Signals[i], r.Signals[j]
		if a.Severity != b.Severity {
			return a.Severity == SeverityCritical
		}
		return a.Code < b.Code
	})

	sum := ReportSummary{StageCount: len(r.Stages), ComponentCount: len(r.Components)}
	for _, st := range r.Stages {
		if !st.OK {
			sum.FailedStages++
		}
	}
	for _, c := range r.Components {
		if c.Errors > 0 {
			sum.ComponentsWithErrors++
		}
		sum.EntryCount += c.Entries
	}
	for _, s := range r.Signals {
		if sum.Signals == nil {
			sum.Signals = map[Severity]int{}
		}
		sum.Signals[s.Severity]++
	}
	r.Summary = sum
}

func (r *PipelineReport) Save(path string) error {
	if r == nil {
		return nil
	}
	r.Finalize()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
