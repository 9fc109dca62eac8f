package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/mj1618/window-tiler/internal/model"
)

// Watch calls onChange with the new rule list each time the settings file
// at path is written. It runs onChange on viper's watcher goroutine, so
// callers that own state must hand the rules over to their own goroutine.
// Unreadable or incomplete revisions are logged and skipped. If the file
// does not exist Watch does nothing and returns false.
//
// viper offers no way to stop a watcher; it lives until the process exits.
func Watch(path string, onChange func([]model.LayoutRule), log *zap.Logger) bool {
	if log == nil {
		log = zap.NewNop()
	}
	v := newViper(path)
	log = log.Named("settings").With(zap.String("path", v.ConfigFileUsed()))

	if _, err := os.Stat(v.ConfigFileUsed()); errors.Is(err, fs.ErrNotExist) {
		log.Debug("no settings file to watch")
		return false
	}
	if err := v.ReadInConfig(); err != nil {
		log.Warn("settings unreadable, watching anyway", zap.Error(err))
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		// Editors truncate before writing; an empty revision is not a
		// request to stop every rule.
		if !v.IsSet("rules") {
			log.Debug("settings incomplete, skipping", zap.String("op", e.Op.String()))
			return
		}
		rules, err := decodeRules(v)
		if err != nil {
			log.Warn("settings rejected", zap.Error(err))
			return
		}
		log.Info("settings changed", zap.Int("rules", len(rules)))
		onChange(rules)
	})
	v.WatchConfig()
	return true
}
