package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleForwardOnly(t *testing.T) {
	var l lifecycle
	assert.Equal(t, NotStarted, l.State())

	assert.ErrorIs(t, l.transition(Stopping), ErrNotRunning)
	assert.ErrorIs(t, l.transition(Stopped), errInvalidTransition)

	require.NoError(t, l.transition(Started))
	assert.ErrorIs(t, l.transition(Started), ErrAlreadyStarted)

	require.NoError(t, l.transition(Stopping))
	assert.ErrorIs(t, l.transition(Stopping), ErrAlreadyStopped)
	assert.ErrorIs(t, l.transition(Started), ErrAlreadyStarted)

	require.NoError(t, l.transition(Stopped))
	assert.ErrorIs(t, l.transition(Stopping), ErrAlreadyStopped)
	assert.ErrorIs(t, l.transition(NotStarted), errInvalidTransition)
	assert.Equal(t, Stopped, l.State())
}

func TestLifecycleStartFailureKeepsNotStarted(t *testing.T) {
	var l lifecycle
	errBoom := errors.New("boom")
	assert.ErrorIs(t, l.start(func() error { return errBoom }), errBoom)
	assert.Equal(t, NotStarted, l.State())

	calls := 0
	require.NoError(t, l.start(func() error { calls++; return nil }))
	assert.ErrorIs(t, l.start(func() error { calls++; return nil }), ErrAlreadyStarted)
	assert.Equal(t, 1, calls)
}

func TestLifecycleWhileRunning(t *testing.T) {
	var l lifecycle
	called := false
	fn := func() error { called = true; return nil }

	assert.ErrorIs(t, l.whileRunning(fn), ErrNotRunning)
	assert.False(t, called)

	require.NoError(t, l.transition(Started))
	assert.NoError(t, l.whileRunning(fn))
	assert.True(t, called)

	called = false
	require.NoError(t, l.transition(Stopping))
	assert.ErrorIs(t, l.whileRunning(fn), ErrNotRunning)
	assert.False(t, called)
}

func TestSessionStateString(t *testing.T) {
	assert.Equal(t, "Stopping", Stopping.String())
	assert.Equal(t, "SessionState(9)", SessionState(9).String())
}
