package monolith

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/fd1az/balancer-connector/internal/config"
	"github.com/fd1az/balancer-connector/internal/di"
	"github.com/fd1az/balancer-connector/internal/logger"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

type fakeModule struct {
	registered, started bool
}

func (m *fakeModule) RegisterServices(c di.Container) error {
	m.registered = true
	c.Register("fake", 42)
	return nil
}

func (m *fakeModule) Startup(_ context.Context, mono Monolith) error {
	m.started = mono.Services().Get("fake").(int) == 42
	return nil
}

func TestModulesLifecycle(t *testing.T) {
	a := New(&config.Config{}, logger.Nop())
	m := &fakeModule{}

	require.NoError(t, a.RegisterModules(m))
	require.NoError(t, a.StartModules(context.Background(), m))

	assert.True(t, m.registered)
	assert.True(t, m.started)
	assert.NotNil(t, a.Services().Get("config"))
}

func TestCloseReverseOrderAndCombinedErrors(t *testing.T) {
	a := New(&config.Config{}, logger.Nop())

	var order []int
	a.OnClose(closerFunc(func() error { order = append(order, 1); return errors.New("first") }))
	a.OnClose(closerFunc(func() error { order = append(order, 2); return errors.New("second") }))

	err := a.Close()
	assert.Equal(t, []int{2, 1}, order)
	assert.Len(t, multierr.Errors(err), 2)

	assert.NoError(t, a.Close())
}

type failingModule struct{ err error }

func (m failingModule) RegisterServices(di.Container) error { return nil }

func (m failingModule) Startup(context.Context, Monolith) error { return m.err }

func TestStartModulesStopsAtFirstFailure(t *testing.T) {
	a := New(&config.Config{}, logger.Nop())
	boom := errors.New("boom")
	after := &fakeModule{}

	err := a.StartModules(context.Background(), failingModule{err: boom}, after)

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failingModule")
	assert.False(t, after.started)
}

func TestStartModulesHonoursCancelledContext(t *testing.T) {
	a := New(&config.Config{}, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.StartModules(ctx, &fakeModule{})
	assert.ErrorIs(t, err, context.Canceled)
}
