// Package navigator provides an in-process implementation of the routing
// collaborator for headless use. The real storefront router lives in the
// rendering layer; this stand-in tracks the current path and logs moves.
package navigator

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/bingsoohouse/storefront-client/internal/core/ports"
)

// Memory is a thread-safe in-process Navigator.
type Memory struct {
	mu   sync.Mutex
	path string
	log  zerolog.Logger
}

// NewMemory returns a Memory navigator positioned at start.
func NewMemory(start string, log zerolog.Logger) *Memory {
	return &Memory{path: start, log: log}
}

var _ ports.Navigator = (*Memory)(nil)

func (m *Memory) CurrentPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.path
}

func (m *Memory) Navigate(path string) {
	m.mu.Lock()
	from := m.path
	m.path = path
	m.mu.Unlock()
	m.log.Debug().Str("from", from).Str("to", path).Msg("navigate")
}
