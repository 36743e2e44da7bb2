package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"taskgraph/cli"
	"taskgraph/worker"
)

// main branches into a worker subprocess before any flag parsing happens,
// mirroring how a child re-executes this same binary (see
// worker.Supervisor.Spawn): the env sentinel is checked first so the worker
// role never touches cobra/viper at all.
func main() {
	if os.Getenv(worker.EnvSentinel) == "1" {
		if err := worker.RunChild(cli.DefaultRegistry()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	inv, err := cli.ParseInvocation(os.Args[1:])
	if err != nil {
		var invErr *cli.InvocationError
		if errors.As(err, &invErr) {
			fmt.Fprintln(os.Stderr, invErr.Message)
			os.Exit(cli.ExitInvalidInput)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitInternalError)
	}

	result, execErr := cli.Execute(context.Background(), inv)
	if len(result.Output) > 0 {
		os.Stdout.Write(result.Output)
		fmt.Fprintln(os.Stdout)
	}
	if execErr != nil {
		fmt.Fprintln(os.Stderr, execErr)
	}
	os.Exit(result.ExitCode)
}
