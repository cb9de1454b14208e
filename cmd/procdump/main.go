// Command procdump is a small CLI wrapping procspawn's convenience
// operations, exercising the library the way a real consumer would.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orospakr/procspawn"
)

var (
	mergeStderr bool
	workingDir  string
	envPairs    []string
	verbose     bool
)

func main() {
	logger, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "procdump: failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	root := newRootCommand(logger)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func newRootCommand(logger *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "procdump",
		Short: "Launch a child process and report its captured output and exit status",
	}
	root.PersistentFlags().BoolVar(&mergeStderr, "merge-stderr", false, "fold the child's stderr into stdout")
	root.PersistentFlags().StringVar(&workingDir, "cwd", "", "working directory for the child")
	root.PersistentFlags().StringArrayVarP(&envPairs, "env", "e", nil, "NAME=VALUE environment entry (repeatable); unset inherits the parent's environment")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log the shell-escaped argv before launching")

	root.AddCommand(newRunCommand(logger))
	root.AddCommand(newCheckCommand(logger))
	return root
}

func newRunCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:                "run -- PROGRAM [ARGS...]",
		Short:              "Run a program, capture its output, and print a human-readable summary",
		Args:               cobra.MinimumNArgs(1),
		DisableFlagParsing: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := parseEnv(envPairs)
			if err != nil {
				return err
			}

			handle := procspawn.New(procspawn.Config{
				Argv:              args,
				Environment:       env,
				WorkingDirectory:  workingDir,
				OutputRedirection: procspawn.Collect(mergeStderr),
				Verbose:           verbose,
				DiagnosticSink: func(line string) {
					logger.Info("launching", zap.String("argv", line))
				},
			})

			stdin, err := handle.Launch()
			if err != nil {
				logger.Error("launch failed", zap.Error(err), zap.Strings("argv", args))
				return err
			}
			_ = stdin.Close()

			result, err := handle.Wait()
			if err != nil {
				logger.Error("wait failed", zap.Error(err), zap.Int("pid", handle.Pid()))
				return err
			}

			logger.Info("child terminated",
				zap.Int("pid", handle.Pid()),
				zap.String("status", result.ExitStatus.String()),
			)
			fmt.Println(result.Description())

			if !result.ExitStatus.IsExited() || result.ExitStatus.Code() != 0 {
				os.Exit(1)
			}
			return nil
		},
	}
}

func newCheckCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "check -- PROGRAM [ARGS...]",
		Short: "Run a program and print its stdout, failing on non-zero exit or invalid UTF-8",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := parseEnv(envPairs)
			if err != nil {
				return err
			}
			out, err := procspawn.CheckNonZeroExit(args, env)
			if err != nil {
				logger.Error("check failed", zap.Error(err), zap.Strings("argv", args))
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}

func parseEnv(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("procdump: invalid --env entry %q, want NAME=VALUE", p)
		}
		env[name] = value
	}
	return env, nil
}
