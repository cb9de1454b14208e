//go:build unix && cgo

package procspawn

/*
#include <spawn.h>
#include <stdlib.h>
#include <string.h>
#include <errno.h>
#include <signal.h>
#include <unistd.h>
#include <fcntl.h>

int px_init_file_actions(posix_spawn_file_actions_t *actions) {
    return posix_spawn_file_actions_init(actions);
}

int px_destroy_file_actions(posix_spawn_file_actions_t *actions) {
    return posix_spawn_file_actions_destroy(actions);
}

int px_add_close(posix_spawn_file_actions_t *actions, int fd) {
    return posix_spawn_file_actions_addclose(actions, fd);
}

int px_add_dup2(posix_spawn_file_actions_t *actions, int fd, int newfd) {
    return posix_spawn_file_actions_adddup2(actions, fd, newfd);
}

// Both macOS (10.15+, via the _np extension, or addchdir on 26+) and
// glibc (2.29+) expose a spawn-time chdir file action under slightly
// different names. We probe for whichever this host provides.
#if defined(__APPLE__) && defined(__MACH__)
extern int posix_spawn_file_actions_addchdir(posix_spawn_file_actions_t *, const char *) __attribute__((weak_import));
#pragma clang diagnostic push
#pragma clang diagnostic ignored "-Wdeprecated-declarations"
extern int posix_spawn_file_actions_addchdir_np(posix_spawn_file_actions_t *, const char *) __attribute__((weak_import));
#pragma clang diagnostic pop

int px_has_chdir(void) {
    if (posix_spawn_file_actions_addchdir != NULL) return 1;
    #pragma clang diagnostic push
    #pragma clang diagnostic ignored "-Wdeprecated-declarations"
    int r = posix_spawn_file_actions_addchdir_np != NULL ? 1 : 0;
    #pragma clang diagnostic pop
    return r;
}

int px_add_chdir(posix_spawn_file_actions_t *actions, const char *path) {
    if (posix_spawn_file_actions_addchdir != NULL) {
        return posix_spawn_file_actions_addchdir(actions, path);
    }
    #pragma clang diagnostic push
    #pragma clang diagnostic ignored "-Wdeprecated-declarations"
    if (posix_spawn_file_actions_addchdir_np != NULL) {
        return posix_spawn_file_actions_addchdir_np(actions, path);
    }
    #pragma clang diagnostic pop
    return ENOSYS;
}
#elif defined(__linux__)
extern int posix_spawn_file_actions_addchdir_np(posix_spawn_file_actions_t *, const char *) __attribute__((weak));

int px_has_chdir(void) {
    return posix_spawn_file_actions_addchdir_np != NULL ? 1 : 0;
}

int px_add_chdir(posix_spawn_file_actions_t *actions, const char *path) {
    if (posix_spawn_file_actions_addchdir_np != NULL) {
        return posix_spawn_file_actions_addchdir_np(actions, path);
    }
    return ENOSYS;
}
#else
int px_has_chdir(void) { return 0; }
int px_add_chdir(posix_spawn_file_actions_t *actions, const char *path) { return ENOSYS; }
#endif

int px_init_attr(posix_spawnattr_t *attr) {
    return posix_spawnattr_init(attr);
}

int px_destroy_attr(posix_spawnattr_t *attr) {
    return posix_spawnattr_destroy(attr);
}

int px_set_flags(posix_spawnattr_t *attr, short flags) {
    return posix_spawnattr_setflags(attr, flags);
}

int px_set_pgroup(posix_spawnattr_t *attr, pid_t pgroup) {
    return posix_spawnattr_setpgroup(attr, pgroup);
}

int px_set_sigdefault(posix_spawnattr_t *attr, sigset_t *set) {
    return posix_spawnattr_setsigdefault(attr, set);
}

int px_set_sigmask(posix_spawnattr_t *attr, sigset_t *set) {
    return posix_spawnattr_setsigmask(attr, set);
}

int px_spawn(pid_t *pid, const char *path,
             posix_spawn_file_actions_t *actions,
             posix_spawnattr_t *attr,
             char *const argv[], char *const envp[]) {
    return posix_spawn(pid, path, actions, attr, argv, envp);
}

void px_sigset_fill(sigset_t *set)  { sigfillset(set); }
void px_sigset_empty(sigset_t *set) { sigemptyset(set); }
*/
import "C"

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// hasSpawnTimeChdir reports whether the host's libc exposes a spawn-time
// chdir file action.
func hasSpawnTimeChdir() bool {
	return C.px_has_chdir() != 0
}

// doSpawn implements C4's POSIX path (§4.4 steps 1–10): it assembles
// spawn attributes and file actions, mandating SETSIGMASK|SETSIGDEF (an
// empty mask, default dispositions) so the child never inherits the
// parent's installed handlers, optionally SETPGROUP, an optional
// spawn-time chdir, the three dup2 actions, then calls posix_spawn.
func doSpawn(resolvedPath string, argv []string, env []string, workingDirectory string, startNewProcessGroup bool, fds spawnDescriptors) (pid int, err error) {
	var actions C.posix_spawn_file_actions_t
	if ret := C.px_init_file_actions(&actions); ret != 0 {
		return 0, withStack(unix.Errno(ret))
	}
	defer C.px_destroy_file_actions(&actions)

	if workingDirectory != "" {
		if !hasSpawnTimeChdir() {
			return 0, &WorkingDirectoryUnsupportedError{}
		}
		cDir := C.CString(workingDirectory)
		defer C.free(unsafe.Pointer(cDir))
		if ret := C.px_add_chdir(&actions, cDir); ret != 0 {
			return 0, withStack(unix.Errno(ret))
		}
	}

	// FD 0: dup the stdin pipe's read end onto FD 0, then close the
	// original read end in the child (§4.4 step 5). No close action is
	// added for the stdin pipe's write end; that descriptor is not passed
	// in spawnDescriptors and is left to the close-on-exec flag os.Pipe
	// sets on it.
	stdinFd := C.int(fds.stdinChildRead.Fd())
	if ret := C.px_add_dup2(&actions, stdinFd, 0); ret != 0 {
		return 0, withStack(unix.Errno(ret))
	}
	if ret := C.px_add_close(&actions, stdinFd); ret != 0 {
		return 0, withStack(unix.Errno(ret))
	}

	// FD 1/2: redirect if requested, otherwise an explicit no-op dup makes
	// the ordering intentional rather than incidental (§4.4 step 6).
	if fds.stdoutChildWrite != nil {
		stdoutFd := C.int(fds.stdoutChildWrite.Fd())
		if ret := C.px_add_dup2(&actions, stdoutFd, 1); ret != 0 {
			return 0, withStack(unix.Errno(ret))
		}
		if ret := C.px_add_close(&actions, stdoutFd); ret != 0 {
			return 0, withStack(unix.Errno(ret))
		}

		if fds.mergeStderr {
			if ret := C.px_add_dup2(&actions, 1, 2); ret != 0 {
				return 0, withStack(unix.Errno(ret))
			}
		} else if fds.stderrChildWrite != nil {
			stderrFd := C.int(fds.stderrChildWrite.Fd())
			if ret := C.px_add_dup2(&actions, stderrFd, 2); ret != 0 {
				return 0, withStack(unix.Errno(ret))
			}
			if ret := C.px_add_close(&actions, stderrFd); ret != 0 {
				return 0, withStack(unix.Errno(ret))
			}
		}
	} else {
		if ret := C.px_add_dup2(&actions, 1, 1); ret != 0 {
			return 0, withStack(unix.Errno(ret))
		}
		if ret := C.px_add_dup2(&actions, 2, 2); ret != 0 {
			return 0, withStack(unix.Errno(ret))
		}
	}

	var attr C.posix_spawnattr_t
	if ret := C.px_init_attr(&attr); ret != 0 {
		return 0, withStack(unix.Errno(ret))
	}
	defer C.px_destroy_attr(&attr)

	var flags C.short = C.POSIX_SPAWN_SETSIGDEF | C.POSIX_SPAWN_SETSIGMASK
	if startNewProcessGroup {
		flags |= C.POSIX_SPAWN_SETPGROUP
		C.px_set_pgroup(&attr, 0)
	}
	C.px_set_flags(&attr, flags)

	var sigdefault, sigmask C.sigset_t
	C.px_sigset_fill(&sigdefault)
	C.px_sigset_empty(&sigmask)
	C.px_set_sigdefault(&attr, &sigdefault)
	C.px_set_sigmask(&attr, &sigmask)

	// §4.4 step 7: when a working directory is supplied, argv[0] is
	// rewritten to the resolved absolute path because the spawn-time
	// chdir runs before argv[0] resolution on some platforms.
	execPath := resolvedPath
	execArgv := argv
	if workingDirectory != "" {
		execArgv = append([]string{resolvedPath}, argv[1:]...)
	}

	cPath := C.CString(execPath)
	defer C.free(unsafe.Pointer(cPath))

	cArgv := make([]*C.char, len(execArgv)+1)
	for i, a := range execArgv {
		cArgv[i] = C.CString(a)
		defer C.free(unsafe.Pointer(cArgv[i]))
	}
	cArgv[len(execArgv)] = nil

	cEnv := make([]*C.char, len(env)+1)
	for i, e := range env {
		cEnv[i] = C.CString(e)
		defer C.free(unsafe.Pointer(cEnv[i]))
	}
	cEnv[len(env)] = nil

	var cpid C.pid_t
	ret := C.px_spawn(&cpid, cPath, &actions, &attr,
		(**C.char)(unsafe.Pointer(&cArgv[0])),
		(**C.char)(unsafe.Pointer(&cEnv[0])))
	if ret != 0 {
		return 0, &SpawnFailedError{Errno: unix.Errno(ret), Argv: argv}
	}

	return int(cpid), nil
}
