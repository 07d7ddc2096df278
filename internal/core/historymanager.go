package core

import (
	"sync"

	"github.com/comalice/tickfsm/internal/primitives"
)

// HistoryManager keeps the shallow-history record of sub-machine slots.
// A started sub-machine keeps its own state vector; re-entering it through a
// shallow-history transition resumes that vector instead of restarting.
type HistoryManager struct {
	mu      sync.RWMutex
	started map[primitives.StateID]bool
	exited  map[primitives.StateID][]primitives.StateID // sub-machine state -> vector at last exit
}

// NewHistoryManager creates a new HistoryManager.
func NewHistoryManager() *HistoryManager {
	return &HistoryManager{
		started: make(map[primitives.StateID]bool),
		exited:  make(map[primitives.StateID][]primitives.StateID),
	}
}

// MarkStarted records that the sub-machine held by id has been started.
func (h *HistoryManager) MarkStarted(id primitives.StateID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started[id] = true
}

// Started reports whether the sub-machine held by id was ever started.
func (h *HistoryManager) Started(id primitives.StateID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.started[id]
}

// RecordExit remembers the sub-machine vector when its owning state is exited.
func (h *HistoryManager) RecordExit(id primitives.StateID, vector []primitives.StateID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exited[id] = append([]primitives.StateID(nil), vector...)
}

// Restore returns the vector recorded at the last exit of id.
func (h *HistoryManager) Restore(id primitives.StateID) ([]primitives.StateID, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.exited[id]
	if !ok {
		return nil, false
	}
	return append([]primitives.StateID(nil), v...), true
}

// Clear forgets everything recorded for id.
func (h *HistoryManager) Clear(id primitives.StateID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.started, id)
	delete(h.exited, id)
}
