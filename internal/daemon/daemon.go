// Package daemon runs the primary tiler process: the run loop, the rule
// coordinator, the forwarded-command listener and the settings watcher.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mj1618/window-tiler/internal/command"
	"github.com/mj1618/window-tiler/internal/config"
	"github.com/mj1618/window-tiler/internal/instance"
	"github.com/mj1618/window-tiler/internal/locator"
	"github.com/mj1618/window-tiler/internal/model"
	"github.com/mj1618/window-tiler/internal/output"
	"github.com/mj1618/window-tiler/internal/platform"
	"github.com/mj1618/window-tiler/internal/runloop"
	"github.com/mj1618/window-tiler/internal/tiler"
)

// ErrShutdown may be returned by a service to stop the daemon cleanly.
var ErrShutdown = errors.New("daemon shutdown requested")

// ErrUnknownRule is returned for rule operations on a key that is not in
// the configured settings.
var ErrUnknownRule = errors.New("rule is not configured")

// Deps configures a Daemon.
type Deps struct {
	Backend      platform.Backend
	Log          *zap.Logger
	Out          io.Writer // Show output; stdout if nil
	MatchTimeout time.Duration
}

// Daemon owns the tiler state. Its exported methods may be called from any
// goroutine; they run on the loop.
type Daemon struct {
	loop         *runloop.Loop
	coord        *tiler.Coordinator
	locator      *locator.Locator
	log          *zap.Logger
	out          io.Writer
	matchTimeout time.Duration
	ready        chan struct{}

	// rules is the configured rule list, owned by the loop.
	rules []model.LayoutRule
}

// New returns a daemon that is not yet running.
func New(deps Deps) *Daemon {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	loop := runloop.New()
	loc := locator.New(deps.Backend, log)
	d := &Daemon{
		loop:         loop,
		locator:      loc,
		log:          log.Named("daemon"),
		out:          out,
		matchTimeout: deps.MatchTimeout,
		ready:        make(chan struct{}),
	}
	d.coord = tiler.NewCoordinator(tiler.Deps{
		Locator:      loc,
		Mover:        deps.Backend,
		Loop:         loop,
		Log:          log,
		MatchTimeout: deps.MatchTimeout,
	}, logNotifier{log: log.Named("notify")})
	return d
}

// RunConfig is what Run starts with.
type RunConfig struct {
	// Rules is the initial configured rule list. AutoRun rules are started.
	Rules []model.LayoutRule
	// Command is this process' own argument line, dispatched once the
	// rules are started.
	Command string
	// Primary, if set, receives forwarded commands.
	Primary *instance.Primary
	// WatchPath, if set, is the settings file reloaded on change.
	WatchPath string
	// Services run alongside the daemon and are cancelled with it.
	Services []func(ctx context.Context) error
}

// Run starts the loop and blocks until ctx is cancelled or a service
// fails. All workers are stopped before it returns. Run may be called once.
func (d *Daemon) Run(ctx context.Context, cfg RunConfig) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go func() { _ = d.loop.Run(loopCtx) }()

	d.loop.Post(func() {
		d.setRules(cfg.Rules)
		d.dispatch(cfg.Command)
		close(d.ready)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	if cfg.Primary != nil {
		g.Go(func() error { return cfg.Primary.Serve(gctx, d.Dispatch) })
	}
	if cfg.WatchPath != "" {
		config.Watch(cfg.WatchPath, d.ApplySettings, d.log)
	}
	for _, svc := range cfg.Services {
		g.Go(func() error { return svc(gctx) })
	}

	err := g.Wait()
	if stopErr := d.loop.Do(context.Background(), d.coord.StopAll); stopErr != nil {
		d.log.Warn("stopping rules", zap.Error(stopErr))
	}
	stopLoop()
	<-d.loop.Done()

	if err == nil || errors.Is(err, ErrShutdown) || errors.Is(err, context.Canceled) {
		d.log.Info("daemon stopped")
		return nil
	}
	return err
}

// Ready is closed once Run has started the initial rules and dispatched
// its own command.
func (d *Daemon) Ready() <-chan struct{} {
	return d.ready
}

// Dispatch runs a forwarded argument line on the loop.
func (d *Daemon) Dispatch(line string) {
	if !d.loop.Post(func() { d.dispatch(line) }) {
		d.log.Warn("command dropped, daemon is stopping", zap.String("command", line))
	}
}

func (d *Daemon) dispatch(line string) {
	cmd := command.Dispatch(loopHandler{d}, line)
	d.log.Debug("command dispatched", zap.Stringer("command", cmd), zap.String("line", line))
}

// ApplySettings replaces the configured rules and reconciles the running
// workers with them.
func (d *Daemon) ApplySettings(rules []model.LayoutRule) {
	d.loop.Post(func() { d.setRules(rules) })
}

func (d *Daemon) setRules(rules []model.LayoutRule) {
	d.rules = append([]model.LayoutRule(nil), rules...)
	res := d.coord.Apply(d.rules)
	d.log.Info("rules applied",
		zap.Int("configured", len(d.rules)),
		zap.Int("started", len(res.Started)),
		zap.Int("updated", len(res.Updated)),
		zap.Int("stopped", len(res.Stopped)),
		zap.Int("failed", len(res.Failed)))
}

// Status reports active and configured-but-inactive rules.
func (d *Daemon) Status(ctx context.Context) (Status, error) {
	var s Status
	err := d.loop.Do(ctx, func() { s = d.status() })
	return s, err
}

func (d *Daemon) status() Status {
	s := Status{Active: d.coord.Status()}
	for _, r := range d.rules {
		if !d.coord.IsActive(r) {
			s.Inactive = append(s.Inactive, r)
		}
	}
	return s
}

// StartRule starts the configured rule with the given key. It returns false
// without error if the rule is already active.
func (d *Daemon) StartRule(ctx context.Context, key model.RuleKey) (bool, error) {
	var started bool
	var err error
	if doErr := d.loop.Do(ctx, func() {
		r, ok := d.configured(key)
		if !ok {
			err = fmt.Errorf("%w: %s", ErrUnknownRule, key)
			return
		}
		started, err = d.coord.Start(r)
	}); doErr != nil {
		return false, doErr
	}
	return started, err
}

// StopRule stops the rule with the given key. It returns false if the rule
// was not active.
func (d *Daemon) StopRule(ctx context.Context, key model.RuleKey) (bool, error) {
	var stopped bool
	err := d.loop.Do(ctx, func() {
		stopped = d.coord.Stop(model.LayoutRule{Process: key.Process, TitlePattern: key.TitlePattern})
	})
	return stopped, err
}

// TileAll tiles every active rule and returns the final x.
func (d *Daemon) TileAll(ctx context.Context) (int, error) {
	var width int
	err := d.loop.Do(ctx, func() { width = d.coord.TileAll() })
	return width, err
}

// Plan returns the placements a tile pass would make.
func (d *Daemon) Plan(ctx context.Context) ([]tiler.RulePlan, error) {
	var plans []tiler.RulePlan
	err := d.loop.Do(ctx, func() { plans = d.coord.PlanAll() })
	return plans, err
}

// FindWindows lists windows of process whose titles match pattern.
func (d *Daemon) FindWindows(ctx context.Context, process, pattern string, group int) ([]model.MatchedWindow, error) {
	p, err := locator.Compile(pattern, group, d.matchTimeout)
	if err != nil {
		return nil, err
	}
	var windows []model.MatchedWindow
	if doErr := d.loop.Do(ctx, func() { windows, err = d.locator.Find(process, p) }); doErr != nil {
		return nil, doErr
	}
	return windows, err
}

func (d *Daemon) configured(key model.RuleKey) (model.LayoutRule, bool) {
	for _, r := range d.rules {
		if r.Key() == key {
			return r, true
		}
	}
	return model.LayoutRule{}, false
}

// loopHandler performs startup commands. Its methods run on the loop.
type loopHandler struct{ d *Daemon }

// Show prints the rule status. A headless daemon has no window to raise.
func (h loopHandler) Show() {
	s := h.d.status()
	h.d.log.Info("status", zap.Int("active", len(s.Active)), zap.Int("inactive", len(s.Inactive)))
	if err := output.Fprint(h.d.out, s); err != nil {
		h.d.log.Warn("print status", zap.Error(err))
	}
}

func (h loopHandler) TileAll() int {
	return h.d.coord.TileAll()
}
