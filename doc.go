// Package procspawn launches child processes, concurrently captures or
// streams their standard output and error without deadlocking, waits for
// termination, and delivers signals, with explicit pipe, file-descriptor,
// thread, and signal-mask discipline.
//
// On darwin and linux with cgo available, the child is launched with
// posix_spawn rather than fork+exec, giving the parent's signal mask and
// dispositions an explicit, one-shot reset for the child instead of
// relying on exec(3) to inherit them unexpectedly. Where cgo is
// unavailable, or on Windows, the package falls back to the host's
// ordinary process-creation primitive.
package procspawn
