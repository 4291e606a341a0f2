package runlog

import (
	"context"
	"encoding/json"
	"io"
	"slices"
	"sync"

	"github.com/dmitrymomot/mailmerge/pkg/merge"
)

// Memory keeps outcomes and diagnostic entries in process.
type Memory struct {
	outcomes []merge.Outcome
	entries  []string
	mu       sync.Mutex
}

// NewMemory creates an empty in-memory run log.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(_ context.Context, outcomes []merge.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcomes...)
	return nil
}

func (m *Memory) Record(_ context.Context, message string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entryText(message, err))
}

// Outcomes returns the outcomes of a run in row order.
func (m *Memory) Outcomes(_ context.Context, runID string) ([]merge.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []merge.Outcome
	for _, o := range m.outcomes {
		if o.RunID == runID {
			out = append(out, o)
		}
	}
	return out, nil
}

// Entries returns a copy of the diagnostic entries.
func (m *Memory) Entries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.entries)
}

// JSONLines writes each outcome as one JSON object per line.
type JSONLines struct {
	w  io.Writer
	mu sync.Mutex
}

// NewJSONLines creates an outcome log writing to w.
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{w: w}
}

func (j *JSONLines) Append(_ context.Context, outcomes []merge.Outcome) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	enc := json.NewEncoder(j.w)
	for _, o := range outcomes {
		if err := enc.Encode(o); err != nil {
			return err
		}
	}
	return nil
}
