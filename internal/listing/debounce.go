package listing

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a search term settles.
const DefaultDebounce = 300 * time.Millisecond

// Ticket identifies one pushed value. The caller waits Delay and then calls
// Fire with Seq; only the most recent ticket fires.
type Ticket struct {
	Seq   uint64
	Delay time.Duration
}

// Debouncer is a trailing-edge debouncer keyed by sequence numbers. Every
// Push supersedes the previous one, so a value settles only after a full
// quiet period with no newer input.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	seq      uint64
	pending  string
	armed    bool
	disposed bool
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{delay: delay}
}

// Push records value as pending and returns its ticket.
func (d *Debouncer) Push(value string) Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.pending = value
	d.armed = !d.disposed
	return Ticket{Seq: d.seq, Delay: d.delay}
}

// Fire returns the pending value if seq is the latest ticket and nothing
// cancelled it. A fired value is consumed.
func (d *Debouncer) Fire(seq uint64) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.disposed || !d.armed || seq != d.seq {
		return "", false
	}
	d.armed = false
	return d.pending, true
}

// Cancel drops the pending value.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.armed = false
}

// Dispose cancels any pending value and disables the debouncer for good.
func (d *Debouncer) Dispose() {
	d.Cancel()
	d.mu.Lock()
	d.disposed = true
	d.mu.Unlock()
}
