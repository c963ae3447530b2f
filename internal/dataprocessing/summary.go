package dataprocessing

import (
	"time"

	"s38cli/pkg/contracts/domain"
)

// RunSummary aggregates the outcome of a run over many files.
type RunSummary struct {
	RunID          string              `json:"run_id"`
	Variant        domain.Variant      `json:"variant"`
	StartedAt      time.Time           `json:"started_at"`
	FinishedAt     time.Time           `json:"finished_at,omitempty"`
	FilesTotal     int                 `json:"files_total"`
	FilesProcessed int                 `json:"files_processed"`
	FilesFailed    int                 `json:"files_failed"`
	FilesSkipped   int                 `json:"files_skipped"`
	DataLines      int                 `json:"data_lines"`
	Accepted       int                 `json:"accepted"`
	Rejected       int                 `json:"rejected"`
	Reasons        domain.ReasonCounts `json:"reasons"`
	Flushes        int                 `json:"flushes"`
	Done           bool                `json:"done"`
}

// NewRunSummary starts an empty summary.
func NewRunSummary(runID string, variant domain.Variant) RunSummary {
	return RunSummary{
		RunID:     runID,
		Variant:   variant,
		StartedAt: time.Now(),
		Reasons:   domain.ReasonCounts{},
	}
}

// Add folds one file result into the summary.
func (s *RunSummary) Add(res domain.FileResult) {
	s.FilesProcessed++
	if res.Failed() {
		s.FilesFailed++
	}
	s.DataLines += res.DataLines
	s.Accepted += res.Accepted()
	s.Rejected += res.Rejected()
	if s.Reasons == nil {
		s.Reasons = domain.ReasonCounts{}
	}
	s.Reasons.Add(res.Diagnostics)
}

// RejectRatio is rejected lines over all data lines, 0 when nothing was read.
func (s RunSummary) RejectRatio() float64 {
	total := s.Accepted + s.Rejected
	if total == 0 {
		return 0
	}
	return float64(s.Rejected) / float64(total)
}

// TopReasons returns the n most frequent reason codes.
func (s RunSummary) TopReasons(n int) []domain.ReasonCount {
	return s.Reasons.Top(n)
}

// Duration is the wall time of the run so far.
func (s RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Clone returns a copy that shares no state with s.
func (s RunSummary) Clone() RunSummary {
	out := s
	out.Reasons = make(domain.ReasonCounts, len(s.Reasons))
	for k, v := range s.Reasons {
		out.Reasons[k] = v
	}
	return out
}
