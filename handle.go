package procspawn

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/orospakr/procspawn/internal/shellword"
)

// ContractViolationError marks a programming error (double-launch,
// wait-before-launch, empty argv, a stopped child surfacing to decode) as
// distinct from a recoverable failure, per §7's propagation policy.
type ContractViolationError struct {
	Message string
}

func (e *ContractViolationError) Error() string { return "procspawn: " + e.Message }

// ProcessHandle is C6: the public façade over the spawn/capture/wait
// machinery. A ProcessHandle is constructed with New and must be launched
// at most once.
type ProcessHandle struct {
	cfg Config

	// launched is an independent latch, not part of lifecycleState, so
	// Wait can read it without reentering the state lock (§5, §9).
	launched atomic.Bool

	state lifecycleState

	pid         atomic.Int64
	native      nativeChild
	stdinWriter *os.File

	// reapOnce serializes the single waitpid/Wait4 call across however
	// many goroutines reach phaseResultPending concurrently in Wait: only
	// one of them may actually reap the child (a second wait4 on an
	// already-reaped pid fails with ECHILD), and every caller — the one
	// that ran it and every other one parked behind the Once — must
	// observe the one ResultModel it produced (§4.6, §8 invariant 2).
	reapOnce   sync.Once
	reapResult *ResultModel
	reapErr    error
}

// New constructs a ProcessHandle from cfg. cfg.Argv must be non-empty with
// a non-empty cfg.Argv[0]; violating this is a contract error raised at
// Launch time, matching §4.6.
func New(cfg Config) *ProcessHandle {
	return &ProcessHandle{cfg: cfg}
}

// Pid returns the native process id, valid after a successful Launch.
func (h *ProcessHandle) Pid() int { return int(h.pid.Load()) }

// Launched reports whether Launch has been called. The latch is set before
// the executable is resolved and spawned, so it stays true even when that
// Launch call returned an error.
func (h *ProcessHandle) Launched() bool { return h.launched.Load() }

// Launch starts the child process and returns a WriteCloser connected to
// its stdin; closing it closes the child's stdin. Launch may be called at
// most once per ProcessHandle.
func (h *ProcessHandle) Launch() (io.WriteCloser, error) {
	if len(h.cfg.Argv) == 0 || h.cfg.Argv[0] == "" {
		panic(&ContractViolationError{Message: "Argv must be non-empty with a non-empty Argv[0]"})
	}
	if !h.launched.CompareAndSwap(false, true) {
		panic(&ContractViolationError{Message: "Launch called more than once"})
	}

	if h.cfg.Verbose && h.cfg.DiagnosticSink != nil {
		h.cfg.DiagnosticSink(shellword.Join(h.cfg.Argv))
	}

	resolvedPath, ok := defaultPathResolver.resolve(h.cfg.Argv[0], h.cfg.WorkingDirectory)
	if !ok {
		return nil, &MissingExecutableProgramError{Name: h.cfg.Argv[0]}
	}

	env := buildEnviron(h.cfg.Environment)

	stdin, err := newPipePair()
	if err != nil {
		return nil, err
	}

	redirect := h.cfg.OutputRedirection.Mode != NoCapture
	mergeStderr := redirect && h.cfg.OutputRedirection.MergeStderr

	var stdout, stderr pipePair
	if redirect {
		if stdout, err = newPipePair(); err != nil {
			closeQuietly(stdin.read)
			closeQuietly(stdin.write)
			return nil, err
		}
		if !mergeStderr {
			if stderr, err = newPipePair(); err != nil {
				closeQuietly(stdin.read)
				closeQuietly(stdin.write)
				closeQuietly(stdout.read)
				closeQuietly(stdout.write)
				return nil, err
			}
		}
	}

	fds := spawnDescriptors{
		stdinChildRead: stdin.read,
		mergeStderr:    mergeStderr,
	}
	if redirect {
		fds.stdoutChildWrite = stdout.write
		if !mergeStderr {
			fds.stderrChildWrite = stderr.write
		}
	}

	native, err := doSpawn(resolvedPath, h.cfg.Argv, env, h.cfg.WorkingDirectory, h.cfg.StartNewProcessGroup, fds)
	if err != nil {
		closeQuietly(stdin.read)
		closeQuietly(stdin.write)
		if redirect {
			closeQuietly(stdout.read)
			closeQuietly(stdout.write)
			if !mergeStderr {
				closeQuietly(stderr.read)
				closeQuietly(stderr.write)
			}
		}
		return nil, err
	}

	h.native = native
	h.pid.Store(int64(nativePid(native)))
	h.stdinWriter = stdin.write

	// Child-side FDs: the parent no longer needs them once dup'd into the
	// child (§4.2, §5 "File descriptors"). Unlike the best-effort cleanup
	// closes above, these close known-open FDs on the success path, so a
	// failure here is the CloseSyscallError §7 names as launch-raised.
	if err := closeChecked(stdin.read); err != nil {
		return nil, err
	}
	if redirect {
		if err := closeChecked(stdout.write); err != nil {
			return nil, err
		}
		if !mergeStderr {
			if err := closeChecked(stderr.write); err != nil {
				return nil, err
			}
		}
	}

	// Publication ordering (§4.5): the state must already be Capturing
	// before any reader goroutine starts.
	h.state.enterCapturing()

	startedStdout := redirect
	startedStderr := redirect && !mergeStderr
	rv := newRendezvous(startedStdout, startedStderr, h.state.publishResultPending)

	var onStdout, onStderr func([]byte)
	if h.cfg.OutputRedirection.Mode == StreamMode {
		onStdout = h.cfg.OutputRedirection.OnStdout
		onStderr = h.cfg.OutputRedirection.OnStderr
	}

	if startedStdout {
		go func() {
			rv.arrive(streamStdout, drain(stdout.read, onStdout))
		}()
	}
	if startedStderr {
		go func() {
			rv.arrive(streamStderr, drain(stderr.read, onStderr))
		}()
	}
	if !startedStdout && !startedStderr {
		// NoCapture, or everything vacuous: the capture phase is vacuous
		// (§3) and moves straight to ResultPending with empty vectors.
		rv.publishIfVacuous()
	}

	return h.stdinWriter, nil
}

// Wait blocks until the child has terminated and returns its ResultModel.
// It is idempotent: every caller, concurrent or sequential, observes the
// same ResultModel (§4.6, §8 invariant 2).
func (h *ProcessHandle) Wait() (*ResultModel, error) {
	if !h.launched.Load() {
		panic(&ContractViolationError{Message: "Wait called before Launch"})
	}
	for {
		snap := h.state.snapshot()
		switch snap.phase {
		case phaseIdle:
			panic(&ContractViolationError{Message: "Wait observed Idle after Launch"})
		case phaseCapturing:
			<-snap.captureDone
			continue
		case phaseResultPending:
			h.reapOnce.Do(func() {
				status, err := reapChild(h.native)
				if err != nil {
					h.reapErr = err
					return
				}
				result := &ResultModel{
					Argv:        h.cfg.Argv,
					Environment: h.cfg.Environment,
					ExitStatus:  status,
					Stdout:      snap.stdoutBytes,
					Stderr:      snap.stderrBytes,
				}
				h.reapResult, _ = h.state.tryCompleteFirst(result)
			})
			if h.reapErr != nil {
				return nil, h.reapErr
			}
			return h.reapResult, nil
		case phaseComplete:
			return snap.result, nil
		}
	}
}

// Signal delivers sig to the child: to the whole process group if
// StartNewProcessGroup was set, otherwise to the child's pid alone.
// Delivery failure is silently ignored (§4.6).
func (h *ProcessHandle) Signal(sig int) {
	if !h.launched.Load() {
		panic(&ContractViolationError{Message: "Signal called before Launch"})
	}
	signalProcess(h.native, h.cfg.StartNewProcessGroup, sig)
}

// buildEnviron converts a name->value environment map into NAME=VALUE
// strings. A nil map means "inherit the parent's environment" (§3).
func buildEnviron(env map[string]string) []string {
	if env == nil {
		return os.Environ()
	}
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}
