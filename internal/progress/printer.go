// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Printer writes one line per event to W. Writes are serialized.
type Printer struct {
	mu sync.Mutex
	W  io.Writer
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{W: w}
}

// Publish writes the event as "[ 40%] research: Researching sources".
// Error events are shown as "[ERR]".
func (p *Printer) Publish(event types.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.Progress == types.ProgressError {
		fmt.Fprintf(p.W, "[ERR] %s: %s\n", event.Stage, event.Message)
		return
	}
	fmt.Fprintf(p.W, "[%3d%%] %s: %s\n", event.Progress, event.Stage, event.Message)
	if q, ok := queryOf(event); ok {
		fmt.Fprintf(p.W, "       query: %s\n", q)
	}
}

// queryOf returns the search query carried by a query_complete event.
func queryOf(event types.ProgressEvent) (string, bool) {
	if event.Stage != types.StageQueryComplete {
		return "", false
	}
	m, ok := event.Data.(map[string]any)
	if !ok {
		return "", false
	}
	q, ok := m["query"].(string)
	return q, ok && q != ""
}
