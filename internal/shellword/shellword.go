// Package shellword shell-escapes argument vectors for diagnostics: the
// verbose launch line and ResultModel.Description.
package shellword

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// Join shell-escapes each element of argv and joins them with spaces,
// suitable for pasting into a shell or for a human-readable log line.
func Join(argv []string) string {
	return shellquote.Join(argv...)
}

// JoinTidied behaves like Join but, when argv begins with "sandbox-exec",
// strips the first three elements ("sandbox-exec" itself and its
// "-f <profile>" pair, matching §6's "tidiness" rule for
// ResultModel.Description) before escaping, leaving the sandboxed program
// and its arguments.
func JoinTidied(argv []string) string {
	if len(argv) > 0 && argv[0] == "sandbox-exec" {
		if len(argv) > 3 {
			argv = argv[3:]
		} else {
			argv = nil
		}
	}
	return Join(argv)
}

// Indent prefixes every line of s with a tab, for the indented-output
// portion of ResultModel.Description.
func Indent(s string) string {
	if s == "" {
		return s
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "\t" + l
	}
	return strings.Join(lines, "\n")
}
