package procspawn

import (
	"strings"
	"testing"
)

func TestExitStatusAccessors(t *testing.T) {
	exited := Exited(3)
	if !exited.IsExited() || exited.IsSignalled() {
		t.Fatalf("Exited(3): IsExited=%v IsSignalled=%v", exited.IsExited(), exited.IsSignalled())
	}
	if exited.Code() != 3 {
		t.Fatalf("Code() = %d, want 3", exited.Code())
	}
	if exited.String() != "exited(3)" {
		t.Fatalf("String() = %q", exited.String())
	}

	signalled := Signalled(9)
	if !signalled.IsSignalled() || signalled.IsExited() {
		t.Fatalf("Signalled(9): IsExited=%v IsSignalled=%v", signalled.IsExited(), signalled.IsSignalled())
	}
	if signalled.Signal() != 9 {
		t.Fatalf("Signal() = %d, want 9", signalled.Signal())
	}
	if signalled.String() != "signalled(9)" {
		t.Fatalf("String() = %q", signalled.String())
	}
}

func TestResultModelUTF8Decoding(t *testing.T) {
	r := &ResultModel{
		Stdout: Ok([]byte("valid utf8")),
		Stderr: Ok([]byte{0xff, 0xfe}),
	}
	out, err := r.StdoutUTF8()
	if err != nil {
		t.Fatalf("StdoutUTF8: %v", err)
	}
	if out != "valid utf8" {
		t.Fatalf("StdoutUTF8 = %q", out)
	}

	_, err = r.StderrUTF8()
	if _, ok := err.(*IllegalUTF8Error); !ok {
		t.Fatalf("StderrUTF8 err = %T, want *IllegalUTF8Error", err)
	}
}

func TestResultModelUTF8PropagatesReadError(t *testing.T) {
	r := &ResultModel{Stdout: Failed[[]byte](&ReadSyscallError{})}
	_, err := r.StdoutUTF8()
	if _, ok := err.(*ReadSyscallError); !ok {
		t.Fatalf("StdoutUTF8 err = %T, want *ReadSyscallError", err)
	}
}

func TestResultModelDescription(t *testing.T) {
	r := &ResultModel{
		Argv:       []string{"echo", "hi there"},
		ExitStatus: Exited(0),
		Stdout:     Ok([]byte("hi there\n")),
		Stderr:     Ok(nil),
	}
	desc := r.Description()
	if !strings.HasPrefix(desc, "terminated(0): ") {
		t.Fatalf("Description = %q, want terminated(0) prefix", desc)
	}
	if !strings.Contains(desc, "hi there") {
		t.Fatalf("Description = %q, want quoted argv", desc)
	}
	if !strings.Contains(desc, "\thi there") {
		t.Fatalf("Description = %q, want indented stdout body", desc)
	}
}

func TestResultModelDescriptionSignalled(t *testing.T) {
	r := &ResultModel{
		Argv:       []string{"sh", "-c", "kill -9 $$"},
		ExitStatus: Signalled(9),
	}
	desc := r.Description()
	if !strings.HasPrefix(desc, "signalled(9): ") {
		t.Fatalf("Description = %q, want signalled(9) prefix", desc)
	}
}

func TestResultModelDescriptionStripsSandboxExecPrefix(t *testing.T) {
	r := &ResultModel{
		Argv:       []string{"sandbox-exec", "-f", "profile.sb", "echo", "hi"},
		ExitStatus: Exited(0),
	}
	desc := r.Description()
	if strings.Contains(desc, "sandbox-exec") {
		t.Fatalf("Description = %q, want sandbox-exec prefix stripped", desc)
	}
	if !strings.Contains(desc, "echo") {
		t.Fatalf("Description = %q, want remaining argv preserved", desc)
	}
}
