package users

import (
	"github.com/goliatone/go-logger/glog"
)

// Logger is the leveled logging contract used across the package.
type Logger = glog.Logger

// LoggerProvider hands out named loggers for sub-components.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

func defaultLogger() *glog.BaseLogger {
	return glog.NewLogger(
		glog.WithName("users"),
	)
}

type loggerProviderFunc func(name string) Logger

func (f loggerProviderFunc) GetLogger(name string) Logger {
	return f(name)
}

// ResolveLogger resolves a named logger from provider, falling back to
// fallback and finally to the package default so callers always get a
// usable logger back.
func ResolveLogger(name string, provider LoggerProvider, fallback Logger) (LoggerProvider, Logger) {
	if provider == nil {
		if fallback != nil {
			l := fallback
			return loggerProviderFunc(func(string) Logger { return l }), l
		}
		base := defaultLogger()
		return base, base.GetLogger(name)
	}

	logger := provider.GetLogger(name)
	if logger != nil {
		return provider, logger
	}

	if fallback == nil {
		fallback = defaultLogger().GetLogger(name)
	}

	resolved := fallback
	wrapped := loggerProviderFunc(func(n string) Logger {
		if l := provider.GetLogger(n); l != nil {
			return l
		}
		return resolved
	})

	return wrapped, resolved
}
