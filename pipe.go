package procspawn

import "os"

// pipePair is C2: a unidirectional byte pipe allocated for one captured
// stream or for the child's stdin. Built on os.Pipe, as the teacher does,
// so *os.File finalizers are a last-resort leak backstop even though
// every FD here has exactly one explicit close site.
type pipePair struct {
	read  *os.File
	write *os.File
}

func newPipePair() (pipePair, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return pipePair{}, &PipeSyscallError{Errno: err}
	}
	return pipePair{read: r, write: w}, nil
}

// closeQuietly closes f, discarding the result. Reserved for best-effort
// cleanup of descriptors on an already-failing path (launch aborting on a
// pipe or spawn error): the cleanup close's own failure would only mask
// the real error being returned, so it is not reportable (see DESIGN.md).
func closeQuietly(f *os.File) {
	if f == nil {
		return
	}
	_ = f.Close()
}

// closeChecked closes f and reports a failed close of a known-open FD as
// CloseSyscallError (§7), for the call sites the spec names explicitly:
// launch's post-spawn parent-side close of the child's FDs, and reader's
// close on EOF.
func closeChecked(f *os.File) error {
	if f == nil {
		return nil
	}
	if err := f.Close(); err != nil {
		return &CloseSyscallError{Errno: err}
	}
	return nil
}
