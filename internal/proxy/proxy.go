package proxy

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcpmon/mcpmon/internal/proxylog"
)

// Proxy is C7: it wires the line framer, process supervisor, router,
// restart controller, and change watcher together and owns the three
// long-running reader loops (outer stdin, child stdout, child stderr).
//
// Grounded on cmd/scooter/main.go's run(): signal.Notify on SIGINT/
// SIGTERM driving a bounded shutdown, though here there's a supervised
// child to kill rather than an HTTP server to Shutdown.
type Proxy struct {
	cfg ProxyConfig

	router *router
	rc     *restartController
	watch  *watcher

	in  io.Reader
	out io.Writer
	err io.Writer

	fatal chan error
}

// New constructs a Proxy reading client requests from in and writing
// responses/notifications to out; childStderr (conventionally os.Stderr)
// receives the child's forwarded stderr. mcpmon's own log lines are
// written by proxylog to os.Stderr, not to childStderr.
func New(cfg ProxyConfig, in io.Reader, out io.Writer, childStderr io.Writer) (*Proxy, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := newRouter(out)
	p := &Proxy{
		cfg:    cfg,
		router: r,
		rc:     newRestartController(cfg, r),
		in:     in,
		out:    out,
		err:    childStderr,
		fatal:  make(chan error, 1),
	}
	p.rc.onSpawn = func(cp *childProcess) {
		p.pumpChildStdout(cp)
		p.pumpChildStderr(cp)
	}
	return p, nil
}

// Run spawns the child, starts hot-reload watching (if configured), and
// blocks pumping messages until ctx is cancelled or the outer client
// closes stdin. It installs its own SIGINT/SIGTERM handling in addition
// to respecting ctx, since mcpmon is typically run as a direct child of
// a terminal or another process, not under a supervisor that cancels ctx
// for it.
func (p *Proxy) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := p.rc.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := p.rc.Shutdown(p.cfg.GracefulTimeout); err != nil {
			proxylog.Warn("error during shutdown: %v", err)
		}
	}()

	if p.cfg.EntryFile != "" {
		w, err := newWatcher(p.cfg.EntryFile, p.cfg.RestartDelay, func() {
			p.rc.TriggerRestart(ctx)
		})
		if err != nil {
			proxylog.Warn("hot-reload disabled: %v", err)
		} else {
			p.watch = w
			defer w.Close()
		}
	} else {
		proxylog.Info("no entry file configured, hot-reload disabled")
	}

	done := make(chan error, 1)
	go func() { done <- p.pumpClientStdin(ctx) }()

	select {
	case <-ctx.Done():
		return nil
	case sig := <-sigCh:
		proxylog.Info("received %s, shutting down", sig)
		return nil
	case err := <-done:
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	case err := <-p.fatal:
		proxylog.Error("fatal: %v", err)
		return err
	}
}

// pumpClientStdin reads lines from the outer client and routes each
// through router.HandleClientLine. A malformed line is dropped (logged)
// and the loop continues; a read error on stdin itself ends the proxy.
func (p *Proxy) pumpClientStdin(ctx context.Context) error {
	framer := newLineFramer(p.in)
	for {
		line, err := framer.readLine()
		if len(line) > 0 {
			if herr := p.router.HandleClientLine(line); herr != nil {
				var fwd *ForwardError
				switch {
				case errors.As(herr, &fwd):
					// A write to child-stdin failed: treat the child as
					// dead and let the crash path drive a respawn (§7).
					proxylog.Warn("forward to child failed, treating as a crash: %v", herr)
					go p.rc.TriggerRestart(ctx)
				default:
					var fe *FrameError
					if !errors.As(herr, &fe) {
						proxylog.Warn("error handling client line: %v", herr)
					}
				}
			}
		}
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// pumpChildStdout reads the current child's stdout for as long as it
// lives, routing each line through router.HandleChildLine. Re-invoked
// (by restart.go's triggerRestart swapping in a new *childProcess) via
// a fresh pump each time a child is spawned.
func (p *Proxy) pumpChildStdout(cp *childProcess) {
	if cp == nil {
		return
	}
	go func() {
		framer := newLineFramer(cp.Stdout)
		for {
			line, err := framer.readLine()
			if len(line) > 0 {
				if herr := p.router.HandleChildLine(line); herr != nil {
					var fwd *ForwardError
					switch {
					case errors.As(herr, &fwd):
						// A write to outer-stdout failed: the outer client
						// has disconnected. Shut the whole proxy down (§7).
						select {
						case p.fatal <- herr:
						default:
						}
						return
					default:
						var fe *FrameError
						if !errors.As(herr, &fe) {
							proxylog.Warn("error handling child line: %v", herr)
						}
					}
				}
			}
			if err != nil {
				return
			}
			if p.rc.Child() != cp {
				// A restart swapped in a new child; restartController's
				// onSpawn hook has already started a fresh pump for it.
				return
			}
		}
	}()
}

// pumpChildStderr forwards the current child's stderr line-by-line,
// byte-verbatim (spec.md §4.4: "Child stderr is forwarded verbatim to
// outer stderr"), matching StdioWorker's stderr-drain goroutine. The
// distinguishing-which-process tag lives only in a separate debug log
// line, never in the forwarded bytes themselves.
func (p *Proxy) pumpChildStderr(cp *childProcess) {
	if cp == nil {
		return
	}
	go func() {
		rd := bufio.NewReader(cp.Stderr)
		for {
			chunk, err := rd.ReadBytes('\n')
			if len(chunk) > 0 {
				_, _ = p.err.Write(chunk)
				proxylog.Debug("child stderr (%s): %s", p.cfg.Command, bytes.TrimRight(chunk, "\r\n"))
			}
			if err != nil {
				return
			}
			if p.rc.Child() != cp {
				return
			}
		}
	}()
}
