package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCommand implements Command with a switchable validation result
type fakeCommand struct {
	invalid bool
}

func (c fakeCommand) Validate() error {
	if c.invalid {
		return errors.New("bad command")
	}
	return nil
}

type otherCommand struct{}

func (c otherCommand) Validate() error { return nil }

// countingHandler records how often it ran
type countingHandler struct {
	calls int
	err   error
}

func (h *countingHandler) Handle(ctx context.Context, cmd Command) error {
	h.calls++
	return h.err
}

func TestCommandBus_Send_DispatchesToRegisteredHandler(t *testing.T) {
	// Arrange
	b := NewCommandBus()
	handler := &countingHandler{}
	require.NoError(t, b.Register(fakeCommand{}, handler))

	// Act
	err := b.Send(context.Background(), fakeCommand{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, handler.calls)
}

func TestCommandBus_Send_UnregisteredCommand(t *testing.T) {
	// Arrange
	b := NewCommandBus()
	require.NoError(t, b.Register(fakeCommand{}, &countingHandler{}))

	// Act
	err := b.Send(context.Background(), otherCommand{})

	// Assert
	assert.Error(t, err)
}

func TestCommandBus_Send_InvalidCommandNeverReachesHandler(t *testing.T) {
	// Arrange
	b := NewCommandBus()
	handler := &countingHandler{}
	require.NoError(t, b.Register(fakeCommand{}, handler))

	// Act
	err := b.Send(context.Background(), fakeCommand{invalid: true})

	// Assert
	require.Error(t, err)
	assert.Zero(t, handler.calls)
}

func TestCommandBus_Register_DuplicateType(t *testing.T) {
	// Arrange
	b := NewCommandBus()
	require.NoError(t, b.Register(fakeCommand{}, &countingHandler{}))

	// Act
	err := b.Register(fakeCommand{}, &countingHandler{})

	// Assert
	assert.Error(t, err)
}

func TestCommandBus_Send_WrapsHandlerError(t *testing.T) {
	// Arrange
	cause := errors.New("store unavailable")
	b := NewCommandBus()
	require.NoError(t, b.Register(fakeCommand{}, &countingHandler{err: cause}))

	// Act
	err := b.Send(context.Background(), fakeCommand{})

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestCommandBus_MiddlewareOrder(t *testing.T) {
	// Arrange: two middlewares recording their execution order
	var order []string
	tag := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}

	b := NewCommandBus(tag("outer"), tag("inner"))
	handler := &countingHandler{}
	require.NoError(t, b.Register(fakeCommand{}, handler))

	// Act
	require.NoError(t, b.Send(context.Background(), fakeCommand{}))

	// Assert: first registered middleware runs first
	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, 1, handler.calls)
}

func TestValidationMiddleware_BlocksInvalidCommand(t *testing.T) {
	// Arrange
	handler := &countingHandler{}
	wrapped := ValidationMiddleware()(handler)

	// Act
	err := wrapped.Handle(context.Background(), fakeCommand{invalid: true})

	// Assert
	require.Error(t, err)
	assert.Zero(t, handler.calls)
}
