package mainboilerplate

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// LogConfig configures handling of application log events.
type LogConfig struct {
	Level  string `long:"level" env:"LEVEL" default:"info" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"fatal" description:"Logging level"`
	Format string `long:"format" env:"FORMAT" default:"text" choice:"json" choice:"text" choice:"color" description:"Logging output format"`
	Caller bool   `long:"caller" env:"CALLER" description:"Include the calling function and file of each log event"`
}

// InitLog configures the standard logger, and attaches |fields| to every
// subsequent log event. InitLog may be called more than once: each call
// replaces the |fields| of the last.
func InitLog(cfg LogConfig, fields log.Fields) {
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap:        log.FieldMap{log.FieldKeyMsg: "message"},
		})
	} else if cfg.Format == "text" {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else if cfg.Format == "color" {
		log.SetFormatter(&log.TextFormatter{ForceColors: true, FullTimestamp: true})
	}
	log.SetReportCaller(cfg.Caller)

	var hooks = make(log.LevelHooks)
	if len(fields) != 0 {
		hooks.Add(processFields(fields))
	}
	log.StandardLogger().ReplaceHooks(hooks)

	if lvl, err := log.ParseLevel(cfg.Level); err != nil {
		log.WithField("err", err).Fatal("unrecognized log level")
	} else {
		log.SetLevel(lvl)
	}
}

// processFields is a log.Hook which adds fields of the process (its instance
// ID and environment) to events that don't already set them.
type processFields log.Fields

func (processFields) Levels() []log.Level { return log.AllLevels }

func (h processFields) Fire(e *log.Entry) error {
	for k, v := range h {
		if _, ok := e.Data[k]; !ok {
			e.Data[k] = v
		}
	}
	return nil
}
