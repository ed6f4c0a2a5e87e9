package proxy

import (
	"context"
	"sync"
	"time"

	"github.com/mcpmon/mcpmon/internal/proxylog"
)

// state is C5's state machine, per spec.md §4.5:
//
//	IDLE -> STARTING -> RUNNING -> KILLING -> SPAWNING -> REPLAYING -> PROBING -> RUNNING
//
// The buffer gate (router.restarting) is raised on entry to KILLING and
// only lowered at the very end of PROBING, so every state strictly
// between them is "restarting" from the client's point of view.
type state int

const (
	stateIdle state = iota
	stateStarting
	stateRunning
	stateKilling
	stateSpawning
	stateReplaying
	stateProbing
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "IDLE"
	case stateStarting:
		return "STARTING"
	case stateRunning:
		return "RUNNING"
	case stateKilling:
		return "KILLING"
	case stateSpawning:
		return "SPAWNING"
	case stateReplaying:
		return "REPLAYING"
	case stateProbing:
		return "PROBING"
	default:
		return "UNKNOWN"
	}
}

// restartController is C5. It owns the single live child (I2) and drives
// it through kill/spawn/replay/probe cycles, both on a debounced file
// change and on an unexpected crash while RUNNING.
//
// Grounded in shape on StdioWorker's spawn-then-handshake sequence,
// generalized from a one-shot boot into a repeatable cycle; the
// explicit state enum is new (the teacher has no restart concept) but
// follows the same "small enum plus a guarding mutex" shape as
// aegisvm/internal/daemon/manager.go's Process lifecycle.
type restartController struct {
	cfg    ProxyConfig
	router *router
	hs     *handshakeReplayer

	mu    sync.Mutex
	state state
	child *childProcess

	restartMu sync.Mutex

	stopWatchLoop chan struct{}

	// onSpawn, if set, is called with every freshly spawned child so the
	// caller (proxy.go) can attach fresh stdout/stderr pump goroutines.
	onSpawn func(*childProcess)
}

func newRestartController(cfg ProxyConfig, r *router) *restartController {
	return &restartController{
		cfg:           cfg,
		router:        r,
		hs:            &handshakeReplayer{},
		state:         stateIdle,
		stopWatchLoop: make(chan struct{}),
	}
}

func (rc *restartController) setState(s state) {
	rc.mu.Lock()
	proxylog.Debug("state %s -> %s", rc.state, s)
	rc.state = s
	rc.mu.Unlock()
}

func (rc *restartController) State() state {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.state
}

// Child returns the currently live child, or nil before the first spawn.
func (rc *restartController) Child() *childProcess {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.child
}

// Start performs the first spawn (IDLE -> STARTING -> RUNNING). No
// buffering, no replay: there is nothing to replay yet.
func (rc *restartController) Start(ctx context.Context) error {
	rc.setState(stateStarting)

	cp, err := spawn(ctx, rc.cfg.Command, rc.cfg.CommandArgs, rc.cfg.Env)
	if err != nil {
		return err
	}

	rc.mu.Lock()
	rc.child = cp
	rc.mu.Unlock()
	rc.router.SetChild(cp.Stdin)
	if rc.onSpawn != nil {
		rc.onSpawn(cp)
	}

	time.Sleep(rc.cfg.ReadyDelay)

	rc.setState(stateRunning)
	go rc.watchForCrash(cp)

	return nil
}

// watchForCrash waits on one child's exit channel and, if the exit
// happens while we're still RUNNING (i.e. nobody else initiated the
// kill), treats it as a crash and drives an unplanned restart.
func (rc *restartController) watchForCrash(cp *childProcess) {
	select {
	case <-cp.Exited():
	case <-rc.stopWatchLoop:
		return
	}

	if rc.State() != stateRunning {
		// Expected exit: we killed it ourselves as part of a restart.
		return
	}

	code, sig := cp.ExitInfo()
	proxylog.Error("%s", (&ChildCrashError{Code: code, Signal: sig}).Error())
	rc.triggerRestart(context.Background())
}

// TriggerRestart is called by the watcher on a debounced file change.
func (rc *restartController) TriggerRestart(ctx context.Context) {
	rc.triggerRestart(ctx)
}

// triggerRestart runs one full KILLING->SPAWNING->REPLAYING->PROBING->
// RUNNING cycle. restartMu makes overlapping triggers (a crash racing a
// file-change restart) serialize rather than spawn two children (I2).
func (rc *restartController) triggerRestart(ctx context.Context) {
	rc.restartMu.Lock()
	defer rc.restartMu.Unlock()

	rc.router.BeginRestart()
	rc.setState(stateKilling)

	old := rc.Child()
	if old != nil {
		if err := old.kill(rc.cfg.GracefulTimeout); err != nil {
			proxylog.Warn("error killing child: %v", err)
		}
	}
	time.Sleep(rc.cfg.KillDelay)

	rc.setState(stateSpawning)

	cp, err := spawn(ctx, rc.cfg.Command, rc.cfg.CommandArgs, rc.cfg.Env)
	if err != nil {
		proxylog.Error("failed to respawn child: %v", err)
		// Leave the buffer gate up; a later successful restart (another
		// file save, or the user re-invoking) will drain it. There is no
		// live child to forward to in the meantime.
		rc.setState(stateIdle)
		return
	}

	rc.mu.Lock()
	rc.child = cp
	rc.mu.Unlock()
	rc.router.SetChild(cp.Stdin)
	if rc.onSpawn != nil {
		rc.onSpawn(cp)
	}

	time.Sleep(rc.cfg.ReadyDelay)

	rc.setState(stateReplaying)
	hctx, cancel := context.WithTimeout(ctx, rc.cfg.RequestTimeout*2)
	err = rc.hs.Replay(hctx, rc.router, rc.cfg.RequestTimeout)
	cancel()
	if err != nil {
		proxylog.Warn("handshake replay after restart failed: %v", err)
	}

	rc.setState(stateProbing)
	if err := rc.router.EndRestart(cp.Stdin); err != nil {
		proxylog.Warn("error draining buffered messages to new child: %v", err)
	}

	rc.setState(stateRunning)
	go rc.watchForCrash(cp)

	proxylog.Info("restart complete (pid %d)", cp.Pid())
}

// Shutdown kills the current child, if any, for good (no respawn).
func (rc *restartController) Shutdown(gracefulTimeout time.Duration) error {
	close(rc.stopWatchLoop)
	cp := rc.Child()
	if cp == nil {
		return nil
	}
	return cp.kill(gracefulTimeout)
}
