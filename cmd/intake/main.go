// cmd/intake/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"recruit-intake/internal/common/errors"
	"recruit-intake/internal/common/metrics"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one CLI invocation and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	defer a.close()

	if err != nil {
		if a.log != nil {
			stdErr := errors.Normalize(err)
			a.log.Error("command failed", stdErr.ToFields())
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
	}

	if a.cfg != nil {
		grouping := map[string]string{"command": a.command}
		if pushErr := metrics.Push(a.cfg.Metrics.PushgatewayURL, a.cfg.Metrics.Job, grouping); pushErr != nil {
			a.log.Warn("metrics push failed", map[string]interface{}{"error": pushErr.Error()})
		}
	}

	return errors.ExitCode(err)
}
