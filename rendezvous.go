package procspawn

import "sync"

// streamKind identifies which captured stream a reader drains.
type streamKind int

const (
	streamStdout streamKind = iota
	streamStderr
)

// rendezvous is the dual-reader rendezvous from §4.5: two readers each
// produce a Result[[]byte], and whichever finishes second collects both
// and publishes ResultPending. It has its own mutex, independent of
// lifecycleState's, per §5's "Shared-resource policy."
//
// When only one reader is started (MergeStderr folding stderr into
// stdout), remaining starts at 1 and the sole arrival publishes
// immediately with a success-empty partner for the stream that was never
// started — resolving the §9 open question about a sole arrival with no
// partner. When no reader is started (NoCapture), remaining starts at 0
// and publishIfVacuous publishes the empty pair.
type rendezvous struct {
	mu        sync.Mutex
	remaining int
	stdout    Result[[]byte]
	stderr    Result[[]byte]
	onReady   func(stdout, stderr Result[[]byte])
	fired     bool
}

// newRendezvous creates a rendezvous awaiting one arrival per started
// reader (0, 1, or 2). Streams that never get a reader started are pre-seeded
// with an empty success so the sole/zero-arrival case still publishes a
// complete pair.
func newRendezvous(startedStdout, startedStderr bool, onReady func(stdout, stderr Result[[]byte])) *rendezvous {
	r := &rendezvous{onReady: onReady}
	if !startedStdout {
		r.stdout = Ok[[]byte](nil)
	} else {
		r.remaining++
	}
	if !startedStderr {
		r.stderr = Ok[[]byte](nil)
	} else {
		r.remaining++
	}
	return r
}

// arrive records the result from one reader. If it is the last arrival
// (or there were never any readers to begin with), it publishes.
func (r *rendezvous) arrive(kind streamKind, result Result[[]byte]) {
	r.mu.Lock()
	switch kind {
	case streamStdout:
		r.stdout = result
	case streamStderr:
		r.stderr = result
	}
	if r.remaining > 0 {
		r.remaining--
	}
	ready := r.remaining == 0 && !r.fired
	if ready {
		r.fired = true
	}
	stdout, stderr := r.stdout, r.stderr
	r.mu.Unlock()

	if ready {
		r.onReady(stdout, stderr)
	}
}

// publishIfVacuous fires immediately when no readers were ever started
// (OutputRedirection is NoCapture): the capture phase is vacuous and the
// state moves straight to ResultPending with empty byte vectors (§3).
func (r *rendezvous) publishIfVacuous() {
	r.mu.Lock()
	ready := r.remaining == 0 && !r.fired
	if ready {
		r.fired = true
	}
	stdout, stderr := r.stdout, r.stderr
	r.mu.Unlock()
	if ready {
		r.onReady(stdout, stderr)
	}
}
