package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mj1618/window-tiler/internal/config"
	"github.com/mj1618/window-tiler/internal/daemon"
	"github.com/mj1618/window-tiler/internal/instance"
	"github.com/mj1618/window-tiler/internal/locator"
	"github.com/mj1618/window-tiler/internal/logging"
	"github.com/mj1618/window-tiler/internal/platform"
)

// session is the configuration and logger shared by every command.
type session struct {
	opts config.Options
	log  *zap.Logger
}

// newSession loads TILER_* options, applies flag overrides and builds the
// logger.
func newSession(cmd *cobra.Command) (*session, error) {
	opts, err := config.LoadOptions()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("config") {
		opts.Config, _ = flags.GetString("config")
	}
	if flags.Changed("log-level") {
		opts.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-dev") {
		opts.LogDev, _ = flags.GetBool("log-dev")
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = opts.LogLevel
	logCfg.Development = opts.LogDev
	log, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}
	return &session{opts: opts, log: log}, nil
}

func (s *session) close() {
	_ = s.log.Sync()
}

func (s *session) instanceOptions() instance.Options {
	return instance.Options{
		Name:         s.opts.Instance,
		Dir:          s.opts.RuntimeDir,
		ProbeTimeout: s.opts.ProbeTimeout,
		ReadTimeout:  s.opts.ReadTimeout,
	}
}

// newLocator opens the platform backend. The caller must shut the
// provider down.
func (s *session) newLocator() (*platform.Provider, *locator.Locator, error) {
	provider, err := platform.NewProvider()
	if err != nil {
		return nil, nil, err
	}
	return provider, locator.New(provider.Windows, s.log), nil
}

type primaryConfig struct {
	// line is this process' own argument line.
	line string
	// out receives Show output; stdout if nil.
	out io.Writer
	// requirePrimary fails without contacting another instance that is
	// already running.
	requirePrimary bool
	// services builds extra services to run beside the daemon.
	services func(d *daemon.Daemon) []func(context.Context) error
}

// runPrimary claims the instance channel and runs the daemon, or forwards
// the argument line to the instance that already holds it.
func (s *session) runPrimary(ctx context.Context, pc primaryConfig) error {
	opts := s.instanceOptions()
	opts.Exclusive = pc.requirePrimary
	primary, err := instance.Claim(ctx, opts, pc.line, s.log)
	if errors.Is(err, instance.ErrPrimaryRunning) {
		return fmt.Errorf("another tiler instance is already running")
	}
	if errors.Is(err, instance.ErrForwarded) {
		s.log.Info("handed over to running instance", zap.String("command", pc.line))
		return nil
	}
	if err != nil {
		return fmt.Errorf("claim instance: %w", err)
	}
	defer primary.Close()

	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	defer provider.Shutdown()

	settings, err := config.LoadSettings(s.opts.Config)
	if err != nil {
		return err
	}
	if settings.Defaults {
		s.log.Info("no settings file, using built-in rules", zap.String("path", settings.Path))
	}

	d := daemon.New(daemon.Deps{
		Backend:      provider.Windows,
		Log:          s.log,
		Out:          pc.out,
		MatchTimeout: s.opts.MatchTimeout,
	})
	rc := daemon.RunConfig{
		Rules:   settings.Rules,
		Command: pc.line,
		Primary: primary,
	}
	if !settings.Defaults {
		rc.WatchPath = settings.Path
	}
	if pc.services != nil {
		rc.Services = pc.services(d)
	}
	return d.Run(ctx, rc)
}
