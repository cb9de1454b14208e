package procspawn

import "sync"

type phase int

const (
	phaseIdle phase = iota
	phaseCapturing
	phaseResultPending
	phaseComplete
)

// lifecycleState is C5: it tracks capture progress and the terminal
// result, serializing every transition under a single mutex so that
// publication of terminal data happens-before any reader of Complete
// (§4.5).
//
// The `launched` latch deliberately lives outside this struct (see
// ProcessHandle) so Wait can read it without reentering this lock.
type lifecycleState struct {
	mu    sync.Mutex
	phase phase

	// phaseCapturing
	captureDone chan struct{} // closed by the rendezvous's last arrival

	// phaseResultPending
	stdoutBytes Result[[]byte]
	stderrBytes Result[[]byte]

	// phaseComplete
	result *ResultModel
}

// enterCapturing transitions Idle -> Capturing before any reader thread
// has been started, per the publication-ordering rule in §4.5: a very
// fast child must never observe Idle because the launcher raced its own
// reader threads.
func (s *lifecycleState) enterCapturing() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captureDone = make(chan struct{})
	s.phase = phaseCapturing
	return s.captureDone
}

// publishResultPending transitions Capturing -> ResultPending. It is
// called by whichever reader is last to arrive at the rendezvous (or
// immediately, for a vacuous capture phase).
func (s *lifecycleState) publishResultPending(stdout, stderr Result[[]byte]) {
	s.mu.Lock()
	done := s.captureDone
	s.stdoutBytes = stdout
	s.stderrBytes = stderr
	s.phase = phaseResultPending
	s.captureDone = nil
	s.mu.Unlock()
	if done != nil {
		close(done)
	}
}

// snapshot returns the current phase along with whatever data that phase
// carries, all read under the lock in one step.
type snapshot struct {
	phase       phase
	captureDone chan struct{}
	stdoutBytes Result[[]byte]
	stderrBytes Result[[]byte]
	result      *ResultModel
}

func (s *lifecycleState) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		phase:       s.phase,
		captureDone: s.captureDone,
		stdoutBytes: s.stdoutBytes,
		stderrBytes: s.stderrBytes,
		result:      s.result,
	}
}

// tryCompleteFirst transitions ResultPending -> Complete, but only for the
// first caller; subsequent callers observe the already-published result.
// Returns (result, true) if this call performed the transition.
func (s *lifecycleState) tryCompleteFirst(result *ResultModel) (*ResultModel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == phaseComplete {
		return s.result, false
	}
	s.result = result
	s.phase = phaseComplete
	return s.result, true
}
