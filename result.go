package procspawn

import (
	"fmt"
	"unicode/utf8"

	"github.com/orospakr/procspawn/internal/shellword"
)

// Result is a failable value, per §9: even though the current reader only
// ever produces failure on a read error or a failed close at EOF, the
// shape is kept failable to
// accommodate future asynchronous cancellation.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] { return Result[T]{Value: v} }

// Failed wraps a failure.
func Failed[T any](err error) Result[T] { return Result[T]{Err: err} }

// IsOk reports whether the result holds a value rather than an error.
func (r Result[T]) IsOk() bool { return r.Err == nil }

// exitKind discriminates ExitStatus's two POSIX-relevant cases.
type exitKind int

const (
	exitKindExited exitKind = iota
	exitKindSignalled
)

// ExitStatus is the sum of Exited(code) and, POSIX-only, Signalled(signal)
// from §3.
type ExitStatus struct {
	kind   exitKind
	code   int32
	signal int32
}

// Exited constructs a normal-exit status.
func Exited(code int32) ExitStatus { return ExitStatus{kind: exitKindExited, code: code} }

// Signalled constructs a termination-by-signal status. POSIX only.
func Signalled(signal int32) ExitStatus { return ExitStatus{kind: exitKindSignalled, signal: signal} }

// IsExited reports whether the child terminated via exit(2).
func (s ExitStatus) IsExited() bool { return s.kind == exitKindExited }

// IsSignalled reports whether the child terminated due to a signal.
func (s ExitStatus) IsSignalled() bool { return s.kind == exitKindSignalled }

// Code returns the exit code; meaningful only when IsExited is true.
func (s ExitStatus) Code() int32 { return s.code }

// Signal returns the terminating signal; meaningful only when IsSignalled
// is true.
func (s ExitStatus) Signal() int32 { return s.signal }

func (s ExitStatus) String() string {
	if s.IsSignalled() {
		return fmt.Sprintf("signalled(%d)", s.signal)
	}
	return fmt.Sprintf("exited(%d)", s.code)
}

// ResultModel is C7: a frozen record of argv, environment, exit status,
// and captured output, per §4.7/§6.
type ResultModel struct {
	Argv        []string
	Environment map[string]string
	ExitStatus  ExitStatus
	Stdout      Result[[]byte]
	Stderr      Result[[]byte]
}

// StdoutUTF8 decodes captured stdout as UTF-8, failing with
// IllegalUTF8Error on invalid sequences. It returns the stream's read
// error, if any, unchanged.
func (r *ResultModel) StdoutUTF8() (string, error) {
	return decodeUTF8("stdout", r.Stdout)
}

// StderrUTF8 decodes captured stderr as UTF-8, failing with
// IllegalUTF8Error on invalid sequences.
func (r *ResultModel) StderrUTF8() (string, error) {
	return decodeUTF8("stderr", r.Stderr)
}

func decodeUTF8(stream string, res Result[[]byte]) (string, error) {
	if res.Err != nil {
		return "", res.Err
	}
	if !utf8.Valid(res.Value) {
		return "", &IllegalUTF8Error{Stream: stream}
	}
	return string(res.Value), nil
}

// Description renders a human-readable summary: "terminated(<code>):" or
// "signalled(<sig>):" followed by the shell-escaped argv (with
// sandbox-exec's own argv prefix stripped for tidiness), then the
// indented captured output.
func (r *ResultModel) Description() string {
	var head string
	if r.ExitStatus.IsSignalled() {
		head = fmt.Sprintf("signalled(%d):", r.ExitStatus.Signal())
	} else {
		head = fmt.Sprintf("terminated(%d):", r.ExitStatus.Code())
	}

	line := head + " " + shellword.JoinTidied(r.Argv)

	body := ""
	if r.Stdout.Err == nil && len(r.Stdout.Value) > 0 {
		body += shellword.Indent(string(r.Stdout.Value)) + "\n"
	}
	if r.Stderr.Err == nil && len(r.Stderr.Value) > 0 {
		body += shellword.Indent(string(r.Stderr.Value)) + "\n"
	}
	if body == "" {
		return line
	}
	return line + "\n" + body
}
