package mailmerge

import (
	"github.com/dmitrymomot/mailmerge/pkg/merge"
	"github.com/dmitrymomot/mailmerge/pkg/schedule"
	"github.com/dmitrymomot/mailmerge/pkg/settings"
)

// Status of an operation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is returned by every Service operation. Payload fields are set only
// by the operations that produce them.
type Result struct {
	Config    *merge.Config        `json:"config,omitempty"`
	Schedule  *schedule.Invocation `json:"schedule,omitempty"`
	Run       *RunSummary          `json:"run,omitempty"`
	Templates settings.Templates   `json:"templates,omitempty"`
	Status    Status               `json:"status"`
	Message   string               `json:"message"`
	Headers   []string             `json:"headers,omitempty"`
	Sources   []string             `json:"sources,omitempty"`
	Outcomes  []merge.Outcome      `json:"outcomes,omitempty"`
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// RunSummary describes a finished merge run.
type RunSummary struct {
	ID      string `json:"id"`
	Rows    int    `json:"rows"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Skipped int    `json:"skipped"`
}

func summarize(run *merge.Run) *RunSummary {
	if run == nil {
		return nil
	}
	return &RunSummary{
		ID:      run.ID,
		Rows:    len(run.Outcomes),
		Sent:    run.Count(merge.StatusSuccess),
		Failed:  run.Count(merge.StatusFailed),
		Skipped: run.Count(merge.StatusSkipped),
	}
}

func success(message string) Result {
	return Result{Status: StatusSuccess, Message: message}
}

func failure(message string) Result {
	return Result{Status: StatusError, Message: message}
}
