package procspawn

import (
	"runtime"
	"strings"
	"testing"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("scenario uses /bin/sh and friends; not applicable on windows")
	}
}

// TestZeroExitCapture covers §8 scenario 1.
func TestZeroExitCapture(t *testing.T) {
	skipOnWindows(t)
	h := New(Config{
		Argv:              []string{"/bin/echo", "hello"},
		OutputRedirection: Collect(false),
	})
	if _, err := h.Launch(); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	result, err := h.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !result.ExitStatus.IsExited() || result.ExitStatus.Code() != 0 {
		t.Fatalf("ExitStatus = %v, want exited(0)", result.ExitStatus)
	}
	out, err := result.StdoutUTF8()
	if err != nil {
		t.Fatalf("StdoutUTF8: %v", err)
	}
	if out != "hello\n" {
		t.Fatalf("stdout = %q, want %q", out, "hello\n")
	}
	errOut, err := result.StderrUTF8()
	if err != nil {
		t.Fatalf("StderrUTF8: %v", err)
	}
	if errOut != "" {
		t.Fatalf("stderr = %q, want empty", errOut)
	}
}

// TestNonZeroExit covers §8 scenario 2.
func TestNonZeroExit(t *testing.T) {
	skipOnWindows(t)
	result, err := Popen([]string{"/bin/sh", "-c", "exit 7"}, nil)
	if err != nil {
		t.Fatalf("Popen: %v", err)
	}
	if !result.ExitStatus.IsExited() || result.ExitStatus.Code() != 7 {
		t.Fatalf("ExitStatus = %v, want exited(7)", result.ExitStatus)
	}

	_, err = CheckNonZeroExit([]string{"/bin/sh", "-c", "exit 7"}, nil)
	if err == nil {
		t.Fatal("CheckNonZeroExit: want error")
	}
	if _, ok := err.(*NonZeroExitError); !ok {
		t.Fatalf("err type = %T, want *NonZeroExitError", err)
	}
}

// TestSignalTermination covers §8 scenario 3.
func TestSignalTermination(t *testing.T) {
	skipOnWindows(t)
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("POSIX signal semantics only")
	}
	result, err := Popen([]string{"/bin/sh", "-c", "kill -9 $$"}, nil)
	if err != nil {
		t.Fatalf("Popen: %v", err)
	}
	if !result.ExitStatus.IsSignalled() || result.ExitStatus.Signal() != 9 {
		t.Fatalf("ExitStatus = %v, want signalled(9)", result.ExitStatus)
	}
}

// TestStderrMerge covers §8 scenario 4.
func TestStderrMerge(t *testing.T) {
	skipOnWindows(t)
	h := New(Config{
		Argv:              []string{"/bin/sh", "-c", "echo out; echo err 1>&2"},
		OutputRedirection: Collect(true),
	})
	if _, err := h.Launch(); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	result, err := h.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	out, err := result.StdoutUTF8()
	if err != nil {
		t.Fatalf("StdoutUTF8: %v", err)
	}
	if !strings.Contains(out, "out") || !strings.Contains(out, "err") {
		t.Fatalf("merged stdout = %q, want both lines", out)
	}
	errOut, err := result.StderrUTF8()
	if err != nil {
		t.Fatalf("StderrUTF8: %v", err)
	}
	if errOut != "" {
		t.Fatalf("stderr = %q, want empty when merged", errOut)
	}
}

// TestMissingProgram covers §8 scenario 5.
func TestMissingProgram(t *testing.T) {
	h := New(Config{
		Argv:              []string{"definitely-not-a-program-xyz"},
		OutputRedirection: Collect(false),
	})
	_, err := h.Launch()
	if err == nil {
		t.Fatal("Launch: want error")
	}
	if _, ok := err.(*MissingExecutableProgramError); !ok {
		t.Fatalf("err type = %T, want *MissingExecutableProgramError", err)
	}
}

// TestDoubleLaunch covers §8 scenario 6.
func TestDoubleLaunch(t *testing.T) {
	skipOnWindows(t)
	h := New(Config{Argv: []string{"/bin/echo", "hi"}, OutputRedirection: Collect(false)})
	if _, err := h.Launch(); err != nil {
		t.Fatalf("first Launch: %v", err)
	}
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("second Launch: want panic (contract violation)")
		}
		_, _ = h.Wait()
	}()
	_, _ = h.Launch()
}

// TestLargeOutput covers §8 scenario 7: no deadlock on a full pipe buffer's
// worth and more of output.
func TestLargeOutput(t *testing.T) {
	skipOnWindows(t)
	h := New(Config{
		Argv:              []string{"/bin/sh", "-c", "yes | head -c 1048576"},
		OutputRedirection: Collect(false),
	})
	if _, err := h.Launch(); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	result, err := h.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if result.Stdout.Err != nil {
		t.Fatalf("stdout read error: %v", result.Stdout.Err)
	}
	if len(result.Stdout.Value) != 1048576 {
		t.Fatalf("stdout length = %d, want 1048576", len(result.Stdout.Value))
	}
}

// TestWaitIsIdempotent covers §8 invariant 2.
func TestWaitIsIdempotent(t *testing.T) {
	skipOnWindows(t)
	h := New(Config{Argv: []string{"/bin/echo", "again"}, OutputRedirection: Collect(false)})
	if _, err := h.Launch(); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	first, err := h.Wait()
	if err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	second, err := h.Wait()
	if err != nil {
		t.Fatalf("second Wait: %v", err)
	}
	if first != second {
		t.Fatalf("Wait returned different ResultModel pointers across calls")
	}
}

// TestConcurrentWait covers §8 invariant 2 under concurrency: every caller
// observes the identical ResultModel.
func TestConcurrentWait(t *testing.T) {
	skipOnWindows(t)
	h := New(Config{Argv: []string{"/bin/echo", "race"}, OutputRedirection: Collect(false)})
	if _, err := h.Launch(); err != nil {
		t.Fatalf("Launch: %v", err)
	}

	const n = 8
	results := make(chan *ResultModel, n)
	for i := 0; i < n; i++ {
		go func() {
			r, err := h.Wait()
			if err != nil {
				t.Errorf("Wait: %v", err)
			}
			results <- r
		}()
	}

	first := <-results
	for i := 1; i < n; i++ {
		r := <-results
		if r != first {
			t.Fatal("concurrent Wait callers observed different ResultModel pointers")
		}
	}
}

// TestNoCaptureIsVacuous covers §3: with NoCapture, the capture phase is
// vacuous and Wait completes without any reader ever starting.
func TestNoCaptureIsVacuous(t *testing.T) {
	skipOnWindows(t)
	h := New(Config{Argv: []string{"/bin/echo", "quiet"}})
	if _, err := h.Launch(); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	result, err := h.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !result.Stdout.IsOk() || len(result.Stdout.Value) != 0 {
		t.Fatalf("Stdout = %+v, want empty success", result.Stdout)
	}
}

// TestStreamCallback covers the Stream mode chunk delivery contract.
func TestStreamCallback(t *testing.T) {
	skipOnWindows(t)
	var chunks [][]byte
	h := New(Config{
		Argv: []string{"/bin/echo", "streamed"},
		OutputRedirection: Stream(func(b []byte) {
			cp := append([]byte(nil), b...)
			chunks = append(chunks, cp)
		}, nil, false),
	})
	if _, err := h.Launch(); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	result, err := h.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("OnStdout was never invoked")
	}
	out, _ := result.StdoutUTF8()
	if out != "streamed\n" {
		t.Fatalf("stdout = %q, want %q", out, "streamed\n")
	}
}

// TestSignalToProcessGroup exercises StartNewProcessGroup + Signal.
func TestSignalToProcessGroup(t *testing.T) {
	skipOnWindows(t)
	h := New(Config{
		Argv:                  []string{"/bin/sh", "-c", "sleep 30"},
		OutputRedirection:     Collect(false),
		StartNewProcessGroup:  true,
	})
	if _, err := h.Launch(); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	h.Signal(9) // SIGKILL
	result, err := h.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !result.ExitStatus.IsSignalled() || result.ExitStatus.Signal() != 9 {
		t.Fatalf("ExitStatus = %v, want signalled(9)", result.ExitStatus)
	}
}
