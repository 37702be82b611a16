package store

import "github.com/sirupsen/logrus"

// Options tune an engine when it is constructed.
type Options struct {
	Logger logrus.FieldLogger
	// MaxSessions caps simultaneously open engine connections; 0 leaves the
	// engine default.
	MaxSessions int
	// SkipMigrate disables schema creation on Open.
	SkipMigrate bool
}

// Log returns the configured logger, or the logrus standard logger.
func (o Options) Log() logrus.FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}
