package scan

import (
	"sync"

	"github.com/mohamedamin/halal-screener/internal/data"
)

// Universe is the active symbol list a scan pass iterates. It is an
// explicit state object rather than a process-wide global so tests can
// run isolated instances in parallel.
type Universe struct {
	mu      sync.RWMutex
	name    string
	symbols []string
	source  string

	defaultName    string
	defaultSymbols []string
}

// UniverseInfo describes the active list.
type UniverseInfo struct {
	Name    string   `json:"name"`
	Count   int      `json:"count"`
	Source  string   `json:"source"`
	Symbols []string `json:"symbols"`
}

// NewUniverse creates a universe seeded with the default list.
func NewUniverse(name string, symbols []string) *Universe {
	return &Universe{
		name:           name,
		symbols:        append([]string(nil), symbols...),
		source:         "default",
		defaultName:    name,
		defaultSymbols: append([]string(nil), symbols...),
	}
}

// Symbols returns a copy of the active symbol list.
func (u *Universe) Symbols() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return append([]string(nil), u.symbols...)
}

// Info returns the active list metadata with clean symbols.
func (u *Universe) Info(exchangeSuffix string) UniverseInfo {
	u.mu.RLock()
	defer u.mu.RUnlock()

	clean := make([]string, 0, len(u.symbols))
	for _, s := range u.symbols {
		clean = append(clean, data.CleanSymbol(s, exchangeSuffix))
	}
	return UniverseInfo{
		Name:    u.name,
		Count:   len(u.symbols),
		Source:  u.source,
		Symbols: clean,
	}
}

// Replace swaps in a new symbol list.
func (u *Universe) Replace(name string, symbols []string, source string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.name = name
	u.symbols = append([]string(nil), symbols...)
	u.source = source
}

// Reset restores the default list.
func (u *Universe) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.name = u.defaultName
	u.symbols = append([]string(nil), u.defaultSymbols...)
	u.source = "default"
}
