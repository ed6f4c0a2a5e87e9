package proxy

import (
	"context"
	"time"
)

// DoctorReport is the result of a single probe spawn, for `mcpmon doctor`
// (SPEC_FULL.md §5, a supplemented feature not present in spec.md).
type DoctorReport struct {
	Pid               int
	Alive             bool
	ExitCode          int
	Signal            string
	DockerInteractive bool
}

// Doctor spawns command once, outside the restart state machine, and
// reports whether it is still running after probeWindow. It never
// attempts an initialize/tools-list handshake: doctor has no client
// connection to capture a snapshot from, so it can only sanity-check
// that the process is the kind of long-running server mcpmon can
// supervise, not that it actually speaks MCP.
func Doctor(ctx context.Context, command string, args []string, env map[string]string, probeWindow time.Duration) (DoctorReport, error) {
	cp, err := spawn(ctx, command, args, env)
	if err != nil {
		return DoctorReport{}, err
	}

	docker := isDockerInteractive(command, args)

	timer := time.NewTimer(probeWindow)
	defer timer.Stop()

	select {
	case <-cp.Exited():
		code, sig := cp.ExitInfo()
		return DoctorReport{
			Pid:               cp.Pid(),
			Alive:             false,
			ExitCode:          code,
			Signal:            sig,
			DockerInteractive: docker,
		}, nil
	case <-timer.C:
	}

	report := DoctorReport{Pid: cp.Pid(), Alive: true, DockerInteractive: docker}
	_ = cp.kill(2 * time.Second)
	return report, nil
}
