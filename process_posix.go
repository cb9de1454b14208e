//go:build unix

package procspawn

import (
	"errors"

	"golang.org/x/sys/unix"
)

// nativeChild on POSIX is just the pid: waitpid needs nothing else.
type nativeChild = int

func nativePid(child nativeChild) int { return child }

// reapChild implements §4.6 step 4's POSIX reap: waitpid(pid, &status, 0),
// retrying on EINTR, failing with WaitpidSyscallError on any other errno.
func reapChild(pid nativeChild) (ExitStatus, error) {
	var status unix.WaitStatus
	for {
		_, err := unix.Wait4(pid, &status, 0, nil)
		if err == nil {
			break
		}
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return ExitStatus{}, &WaitpidSyscallError{Errno: err}
	}
	return decodeWaitStatus(status)
}

// decodeWaitStatus implements §4.7's raw-status decode: WIFSIGNALED when
// the low 7 bits are neither 0 nor 0x7f, WIFEXITED when they are 0;
// neither holding (a stopped child observed here, which should not
// happen given WUNTRACED is never passed) is a contract error.
func decodeWaitStatus(status unix.WaitStatus) (ExitStatus, error) {
	switch {
	case status.Signaled():
		return Signalled(int32(status.Signal())), nil
	case status.Exited():
		return Exited(int32(status.ExitStatus())), nil
	default:
		panic(&ContractViolationError{Message: "unexpected exit status"})
	}
}

// signalProcess delivers sig to -pid when the child is running in its own
// process group, otherwise to pid directly. Delivery failure is silently
// ignored, matching the teacher's semantics.
func signalProcess(pid nativeChild, processGroup bool, sig int) {
	target := pid
	if processGroup {
		target = -pid
	}
	_ = unix.Kill(target, unix.Signal(sig))
}
