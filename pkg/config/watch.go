package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/logiclink/logiclink/internal/logger"
	"github.com/spf13/viper"
)

// WatchLogLevel watches the configuration file and calls apply with the
// upper-cased logging level every time the file is written. Invalid levels
// are logged and ignored. Nothing is watched when no file exists.
func WatchLogLevel(configPath string, apply func(level string)) error {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil || !found {
		return err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		level := strings.ToUpper(v.GetString("logging.level"))
		if _, ok := logger.ParseLevel(level); !ok {
			logger.Warn("Ignoring invalid log level from config file", "level", level, "file", e.Name)
			return
		}
		apply(level)
	})
	v.WatchConfig()
	return nil
}
