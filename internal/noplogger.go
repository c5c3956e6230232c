package internal

import (
	"context"

	"github.com/observiq/opamp-client-go/client/types"
)

var _ types.Logger = (*NopLogger)(nil)

// NopLogger discards everything.
type NopLogger struct{}

func (l *NopLogger) Debugf(ctx context.Context, format string, v ...interface{}) {}
func (l *NopLogger) Errorf(ctx context.Context, format string, v ...interface{}) {}
