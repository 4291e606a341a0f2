package merge

import "time"

// Status is the terminal state of a row.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped_condition_not_met"
)

// Outcome messages.
const (
	MsgSent                  = "sent"
	MsgConditionColumnAbsent = "condition column not found"
	MsgRecipientColumnAbsent = "recipient column not found"
	MsgArchiveFailed         = "attachment archive failed"
)

// Outcome records what happened to a single row.
// Message fields are empty when the row stopped before they were resolved.
type Outcome struct {
	Time    time.Time `json:"time"`
	RunID   string    `json:"run_id"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	CC      string    `json:"cc"`
	BCC     string    `json:"bcc"`
	Status  Status    `json:"status"`
	Message string    `json:"message"`
	Row     int       `json:"row"`
}

// Run is the result of a merge run.
type Run struct {
	StartedAt  time.Time
	FinishedAt time.Time
	ID         string
	Outcomes   []Outcome
}

// Count returns the number of outcomes with the given status.
func (r *Run) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}
