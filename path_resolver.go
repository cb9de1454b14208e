package procspawn

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// pathResolver implements C1: resolving argv[0] to an absolute executable
// path, memoized process-wide by program name.
//
// The cache key intentionally omits the working directory, matching the
// narrow common case of invocations relative to the current process CWD
// (§4.1 Rationale); callers passing unusual working directories bypass the
// cache entirely rather than poison it with a wd-qualified key.
type pathResolver struct {
	mu    sync.Mutex
	cache map[string]string // program name -> resolved path; absent key == not yet resolved
	found map[string]bool   // program name -> whether resolution succeeded
}

var defaultPathResolver = &pathResolver{
	cache: make(map[string]string),
	found: make(map[string]bool),
}

// resolve locates program, trying, in order: an absolute path (returned
// verbatim, no existence check), a multi-component relative path (joined
// with workingDirectory or the process CWD), then a PATH search.
func (r *pathResolver) resolve(program, workingDirectory string) (string, bool) {
	if filepath.IsAbs(program) {
		return program, true
	}

	if hasMultipleComponents(program) {
		base := workingDirectory
		if base == "" {
			if cwd, err := os.Getwd(); err == nil {
				base = cwd
			}
		}
		candidate := filepath.Join(base, program)
		if isExecutableFile(candidate) {
			return candidate, true
		}
		return "", false
	}

	cwd, cwdErr := os.Getwd()
	useCache := workingDirectory == "" || (cwdErr == nil && workingDirectory == cwd)

	if useCache {
		r.mu.Lock()
		defer r.mu.Unlock()
		if found, seen := r.found[program]; seen {
			return r.cache[program], found
		}
		path, ok := searchPath(program)
		r.cache[program] = path
		r.found[program] = ok
		return path, ok
	}

	return searchPath(program)
}

// hasMultipleComponents reports whether program, split on the OS path
// separator, has two or more non-empty components (e.g. "./foo/bar" or
// "sub/dir/bin"), as opposed to a bare name like "bin". Any name that
// contains the OS path separator at all (e.g. "bin/") also counts.
func hasMultipleComponents(program string) bool {
	clean := filepath.ToSlash(program)
	parts := strings.Split(clean, "/")
	count := 0
	for _, p := range parts {
		if p != "" {
			count++
		}
	}
	return count >= 2 || strings.Contains(program, string(filepath.Separator))
}

// searchPath parses PATH into an ordered sequence of directories and
// returns the first combination with program that is an executable file.
func searchPath(program string) (string, bool) {
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, program)
		if isExecutableFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// isExecutableFile is the injected filesystem capability from §1; here it
// is implemented directly against os.Stat since no separate filesystem
// collaborator is wired into this repo.
func isExecutableFile(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return false
	}
	return fi.Mode()&0111 != 0
}
