package sheets

import (
	"context"
	"sync"
)

// MemoryLedger keeps taught pairs in memory when no spreadsheet is configured.
type MemoryLedger struct {
	mu    sync.Mutex
	pairs [][2]string
}

// NewMemoryLedger constructs an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

// AppendQA implements support.Ledger.
func (l *MemoryLedger) AppendQA(_ context.Context, question, answer string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pairs = append(l.pairs, [2]string{question, answer})
	return nil
}

// Pairs returns a copy of the recorded pairs.
func (l *MemoryLedger) Pairs() [][2]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([][2]string(nil), l.pairs...)
}
