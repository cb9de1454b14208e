package procspawn

import "os"

// spawnDescriptors carries the parent-side and child-side halves of the
// three standard streams into doSpawn, along with what the parent must do
// with each after a successful spawn. Shared across every backend
// (cgo/posix_spawn, fork+exec fallback, Windows) so handle.go has one
// allocation path regardless of platform.
type spawnDescriptors struct {
	stdinChildRead   *os.File // dup'd/assigned onto FD 0 in the child, closed in parent after spawn
	stdoutChildWrite *os.File // dup'd/assigned onto FD 1 in the child, closed in parent after spawn; nil when not redirecting
	stderrChildWrite *os.File // dup'd/assigned onto FD 2 in the child, closed in parent after spawn; nil when not redirecting or merged
	mergeStderr      bool
}
