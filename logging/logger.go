package logging

import (
	"context"

	"go.uber.org/zap"

	"github.com/observiq/opamp-client-go/client/types"
)

// Logger writes client log messages to a zap logger.
type Logger struct {
	logger *zap.SugaredLogger
}

var _ types.Logger = (*Logger)(nil)

// New wraps l. A nil l discards everything.
func New(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{logger: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *Logger) Debugf(_ context.Context, format string, v ...interface{}) {
	l.logger.Debugf(format, v...)
}

func (l *Logger) Errorf(_ context.Context, format string, v ...interface{}) {
	l.logger.Errorf(format, v...)
}
