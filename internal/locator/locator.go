package locator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mj1618/window-tiler/internal/model"
	"github.com/mj1618/window-tiler/internal/platform"
)

// Locator finds the main windows of named processes whose titles match a
// pattern. It keeps no state between calls.
type Locator struct {
	lister platform.WindowLister
	log    *zap.Logger
}

// New returns a Locator reading from lister.
func New(lister platform.WindowLister, log *zap.Logger) *Locator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Locator{lister: lister, log: log.Named("locator")}
}

// Find enumerates processes named processName and returns the windows whose
// title matches p, in enumeration order. Windowless and non-matching
// processes are skipped without error.
func (l *Locator) Find(processName string, p *Pattern) ([]model.MatchedWindow, error) {
	procs, err := l.lister.ProcessWindows(processName)
	if err != nil {
		return nil, fmt.Errorf("enumerate %q windows: %w", processName, err)
	}

	var matches []model.MatchedWindow
	for _, pw := range procs {
		if pw.Handle == 0 {
			continue
		}
		capture, ok, err := p.Match(pw.Title)
		if err != nil {
			l.log.Debug("title match failed",
				zap.String("process", processName),
				zap.Int("pid", pw.PID),
				zap.String("pattern", p.String()),
				zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		matches = append(matches, model.MatchedWindow{
			Handle:  pw.Handle,
			Bounds:  pw.Bounds,
			Capture: capture,
		})
	}
	return matches, nil
}
