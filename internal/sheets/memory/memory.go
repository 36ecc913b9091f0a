// Package memory is an in-process RecapExporter used by tests and local
// runs without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"scadenze/internal/core"
	ports "scadenze/internal/sheets"
)

type ExportedRecap struct {
	PlanName string
	Recap    core.RecapSummary
}

type Store struct {
	mu   sync.Mutex
	rows []ExportedRecap
}

var _ ports.RecapExporter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// AppendRecap records the digest and returns a synthetic row reference.
func (s *Store) AppendRecap(_ context.Context, planName string, recap core.RecapSummary) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, ExportedRecap{PlanName: planName, Recap: recap})
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything exported so far.
func (s *Store) Rows() []ExportedRecap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ExportedRecap(nil), s.rows...)
}
