package bootstrap

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"mentalwell/config"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the JSON logger. When cfg.File is set, entries also go to a
// rotating file; the returned closer flushes it.
func NewLogger(cfg config.LogConfig) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(parseLevel(cfg.Level))

	if cfg.File == "" {
		log.SetOutput(os.Stdout)
		return log, io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, err
	}
	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    100, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
	return log, fileWriter, nil
}

// WatchLogLevel re-applies LOG_LEVEL whenever the config file changes.
// It is a no-op when no config file was read.
func WatchLogLevel(v *viper.Viper, log *logrus.Logger) {
	file := v.ConfigFileUsed()
	if file == "" {
		return
	}
	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		level := parseLevel(v.GetString("LOG_LEVEL"))
		if level != log.GetLevel() {
			log.SetLevel(level)
			log.Infof("Log level changed to %s", level)
		}
	})
	v.WatchConfig()
}

func parseLevel(value string) logrus.Level {
	level, err := logrus.ParseLevel(value)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
