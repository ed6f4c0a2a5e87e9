package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	clierrors "github.com/mcpmon/mcpmon/internal/cli/errors"
	"github.com/mcpmon/mcpmon/internal/proxy"
)

// executeDoctor implements `mcpmon doctor <command> [args...]`
// (SPEC_FULL.md §5, a supplemented feature): it spawns the command once,
// outside the restart machinery, to sanity-check that it is the kind of
// long-running stdio server mcpmon can actually supervise, before the
// user wires it into an editor or client config.
func executeDoctor(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: mcpmon doctor <command> [args...]")
		return 1
	}
	command, commandArgs := args[0], args[1:]

	fmt.Printf("mcpmon doctor: probing %s %v\n", command, commandArgs)

	report, err := proxy.Doctor(context.Background(), command, commandArgs, nil, 2*time.Second)
	if err != nil {
		ce := clierrors.Classify(err)
		fmt.Fprintln(os.Stderr, "spawn failed:", ce.Message)
		if ce.Hint != "" {
			fmt.Fprintln(os.Stderr, "hint:", ce.Hint)
		}
		return 1
	}

	if !report.Alive {
		fmt.Printf("process exited during the probe window (code=%d signal=%q)\n", report.ExitCode, report.Signal)
		fmt.Println("this does not look like a long-running stdio server mcpmon can supervise")
		return 1
	}

	fmt.Printf("ok: pid %d stayed alive for the probe window\n", report.Pid)
	if report.DockerInteractive {
		fmt.Println("warning: this is an interactive docker invocation; killing it terminates the docker CLI, not necessarily the container it starts")
	}
	return 0
}
