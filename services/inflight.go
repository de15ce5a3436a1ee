package services

import "sync"

// inflightGuard serializes submissions per form instance. The UI disables a
// submit control while a request is running; this is the server-side
// equivalent for the same key, so a double-click can never run the same
// credential exchange or write twice concurrently. A duplicate submission is
// rejected, not coalesced.
type inflightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{active: make(map[string]struct{})}
}

// begin reserves the key, or reports ErrSubmissionInFlight if a submission
// holding it has not finished.
func (g *inflightGuard) begin(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.active[key]; ok {
		return ErrSubmissionInFlight
	}
	g.active[key] = struct{}{}
	return nil
}

func (g *inflightGuard) end(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, key)
}
