package internal

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAlreadyStarted    = errors.New("client already started")
	ErrAlreadyStopped    = errors.New("client already stopped")
	ErrNotRunning        = errors.New("client is not running")
	errInvalidTransition = errors.New("invalid session state transition")

	ErrMissingServerURL             = errors.New("OpAMPServerURL must be set")
	ErrUnsupportedScheme            = errors.New("unsupported OpAMPServerURL scheme")
	ErrInvalidInstanceUid           = errors.New("instance uid must not be zero")
	ErrInvalidHeartbeatInterval     = errors.New("heartbeat interval must be positive")
	ErrInvalidRetrySettings         = errors.New("invalid retry settings")
	ErrHealthMissing                = errors.New("health is nil")
	ErrReportsEffectiveConfigNotSet = errors.New("ReportsEffectiveConfig capability is not set")
	ErrReportsRemoteConfigNotSet    = errors.New("ReportsRemoteConfig capability is not set")
	ErrReportsPackageStatusesNotSet = errors.New("ReportsPackageStatuses capability is not set")
	ErrRemoteConfigStatusMissing    = errors.New("remote config status is nil")
	ErrPackageStatusesMissing       = errors.New("package statuses are nil")
	ErrCustomCapabilitiesMissing    = errors.New("custom capabilities are nil")
	ErrInvalidStatus                = errors.New("status value is not defined")
)

// DecodeError is reported when a Server reply cannot be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode server reply: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ServerUnavailableError is reported when the Server answers with an UNAVAILABLE
// error response.
type ServerUnavailableError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *ServerUnavailableError) Error() string {
	return fmt.Sprintf("server unavailable: %s", e.Message)
}
