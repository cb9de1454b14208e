package procspawn

import (
	"fmt"

	"github.com/pkg/errors"
)

// MissingExecutableProgramError is returned by Launch when PathResolver
// could not locate argv[0].
type MissingExecutableProgramError struct {
	Name string
}

func (e *MissingExecutableProgramError) Error() string {
	return fmt.Sprintf("procspawn: executable program not found: %s", e.Name)
}

// WorkingDirectoryUnsupportedError is returned by Launch when a working
// directory was requested but the host has no spawn-time chdir action.
type WorkingDirectoryUnsupportedError struct{}

func (e *WorkingDirectoryUnsupportedError) Error() string {
	return "procspawn: host does not support spawn-time working directory change"
}

// SpawnFailedError is returned by Launch when the underlying spawn
// primitive returned a nonzero status.
type SpawnFailedError struct {
	Errno error
	Argv  []string
}

func (e *SpawnFailedError) Error() string {
	return fmt.Sprintf("procspawn: spawn failed for %v: %v", e.Argv, e.Errno)
}

func (e *SpawnFailedError) Unwrap() error { return e.Errno }

// PipeSyscallError is returned by Launch when pipe creation failed.
type PipeSyscallError struct {
	Errno error
}

func (e *PipeSyscallError) Error() string {
	return fmt.Sprintf("procspawn: pipe: %v", e.Errno)
}

func (e *PipeSyscallError) Unwrap() error { return e.Errno }

// CloseSyscallError is returned when closing a known-open descriptor
// failed, either during launch or from a reader.
type CloseSyscallError struct {
	Errno error
}

func (e *CloseSyscallError) Error() string {
	return fmt.Sprintf("procspawn: close: %v", e.Errno)
}

func (e *CloseSyscallError) Unwrap() error { return e.Errno }

// ReadSyscallError is stored in a captured stream's Result when a
// non-EINTR read failure occurs. It does not abort Wait.
type ReadSyscallError struct {
	Errno error
}

func (e *ReadSyscallError) Error() string {
	return fmt.Sprintf("procspawn: read: %v", e.Errno)
}

func (e *ReadSyscallError) Unwrap() error { return e.Errno }

// WaitpidSyscallError is returned by Wait when reaping the child failed
// for a reason other than EINTR.
type WaitpidSyscallError struct {
	Errno error
}

func (e *WaitpidSyscallError) Error() string {
	return fmt.Sprintf("procspawn: waitpid: %v", e.Errno)
}

func (e *WaitpidSyscallError) Unwrap() error { return e.Errno }

// IllegalUTF8Error is returned by ResultModel's UTF-8 decoders when the
// captured bytes are not valid UTF-8.
type IllegalUTF8Error struct {
	Stream string
}

func (e *IllegalUTF8Error) Error() string {
	return fmt.Sprintf("procspawn: %s is not valid UTF-8", e.Stream)
}

// NonZeroExitError is returned by CheckNonZeroExit when the child exited
// non-zero or was signalled.
type NonZeroExitError struct {
	Result *ResultModel
}

func (e *NonZeroExitError) Error() string {
	return fmt.Sprintf("procspawn: non-zero exit: %s", e.Result.Description())
}

// withStack is the single point where errno-bearing failures gain a stack
// trace, following the teacher's wrapError but using the ecosystem's
// stack-carrying wrapper instead of a bare string prefix.
func withStack(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(err)
}
