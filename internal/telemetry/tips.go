package telemetry

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/wethinkt/go-nudge/internal/nudgelog"
)

// TipCounter is the process-wide tips-page view counter. The tutorial
// machine compares it against its floor; the TUI tips overlay and the
// `nudge tips` command increment it. With a non-empty path the count
// persists across sessions as a single number in a file.
type TipCounter struct {
	mu   sync.Mutex
	n    int
	path string
}

// NewTipCounter creates a counter, loading the persisted count when path
// is non-empty and the file exists.
func NewTipCounter(path string) *TipCounter {
	c := &TipCounter{path: path}
	if path == "" {
		return c
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	if n, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && n >= 0 {
		c.n = n
	}
	return c
}

// Views returns the cumulative view count.
func (c *TipCounter) Views() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Increment bumps the count and persists it best-effort.
func (c *TipCounter) Increment() int {
	c.mu.Lock()
	c.n++
	n := c.n
	path := c.path
	c.mu.Unlock()

	if path != "" {
		if err := os.WriteFile(path, []byte(fmt.Sprintf("%d\n", n)), 0644); err != nil {
			nudgelog.Log.Warn("Failed to persist tip view count", "error", err)
		}
	}
	return n
}
