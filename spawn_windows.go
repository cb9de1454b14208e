//go:build windows

package procspawn

import (
	"os"
	"os/exec"
)

// hasSpawnTimeChdir is always true on Windows: Cmd.Dir is honored natively
// by CreateProcess's lpCurrentDirectory, no file-action equivalent needed.
func hasSpawnTimeChdir() bool { return true }

// doSpawn implements C4's Windows path (§4.4): it configures the host's
// process-spawning primitive (os/exec.Cmd, itself a thin CreateProcess
// wrapper) with the resolved executable, argv tail, environment, and the
// already-allocated per-stream pipes. Merging stderr into stdout is done
// the same way POSIX does it here: by pointing both at the single stdout
// pipe, rather than opening a second one.
func doSpawn(resolvedPath string, argv []string, env []string, workingDirectory string, startNewProcessGroup bool, fds spawnDescriptors) (nativeChild, error) {
	cmd := &exec.Cmd{
		Path: resolvedPath,
		Args: argv,
		Env:  env,
		Dir:  workingDirectory,
	}
	cmd.Stdin = fds.stdinChildRead
	if fds.stdoutChildWrite != nil {
		cmd.Stdout = fds.stdoutChildWrite
		if fds.mergeStderr {
			cmd.Stderr = fds.stdoutChildWrite
		} else {
			cmd.Stderr = fds.stderrChildWrite
		}
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	if startNewProcessGroup {
		setWindowsProcessGroup(cmd)
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnFailedError{Errno: err, Argv: argv}
	}

	return cmd, nil
}
