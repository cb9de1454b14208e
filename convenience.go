package procspawn

// Popen is C8's first convenience operation: construct with Collect,
// launch, and wait, returning the ResultModel.
func Popen(argv []string, env map[string]string) (*ResultModel, error) {
	handle := New(Config{
		Argv:              argv,
		Environment:       env,
		OutputRedirection: Collect(false),
	})
	stdin, err := handle.Launch()
	if err != nil {
		return nil, err
	}
	_ = stdin.Close() // no caller-supplied stdin: close immediately so a reading child sees EOF
	return handle.Wait()
}

// CheckNonZeroExit runs argv to completion and returns its stdout decoded
// as UTF-8. It fails with NonZeroExitError if the child did not exit with
// status 0, or IllegalUTF8Error if stdout was not valid UTF-8.
func CheckNonZeroExit(argv []string, env map[string]string) (string, error) {
	result, err := Popen(argv, env)
	if err != nil {
		return "", err
	}
	if !result.ExitStatus.IsExited() || result.ExitStatus.Code() != 0 {
		return "", &NonZeroExitError{Result: result}
	}
	return result.StdoutUTF8()
}
