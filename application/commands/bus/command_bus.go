package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Command is a request to mutate the canvas session. Every command knows
// how to validate its own payload before it reaches a handler.
type Command interface {
	Validate() error
}

// CommandHandler executes one command type.
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) error
}

// CommandBus routes commands to their registered handler by concrete type.
// Middleware given at construction wraps every handler, first middleware
// outermost.
type CommandBus struct {
	mu          sync.RWMutex
	handlers    map[reflect.Type]CommandHandler
	middlewares []Middleware
}

func NewCommandBus(middlewares ...Middleware) *CommandBus {
	return &CommandBus{
		handlers:    make(map[reflect.Type]CommandHandler),
		middlewares: middlewares,
	}
}

// Register binds a handler to the concrete type of cmdType. Registering the
// same type twice is a wiring bug and fails loudly.
func (b *CommandBus) Register(cmdType Command, handler CommandHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(cmdType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for command type %s", t.Name())
	}

	for i := len(b.middlewares) - 1; i >= 0; i-- {
		handler = b.middlewares[i](handler)
	}
	b.handlers[t] = handler
	return nil
}

// Send validates the command and dispatches it. Handler errors come back
// wrapped so callers can still unwrap the cause.
func (b *CommandBus) Send(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("command validation failed: %w", err)
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(cmd)]
	b.mu.RUnlock()

	if !exists {
		return fmt.Errorf("no handler registered for command type %T", cmd)
	}

	if err := handler.Handle(ctx, cmd); err != nil {
		return fmt.Errorf("command handler failed: %w", err)
	}
	return nil
}

// Middleware wraps a handler with cross-cutting behavior.
type Middleware func(next CommandHandler) CommandHandler

// CommandHandlerFunc adapts a function to the CommandHandler interface.
type CommandHandlerFunc func(ctx context.Context, cmd Command) error

func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// Logger is the small logging surface the bus middleware needs.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// LoggingMiddleware logs every command with its outcome.
func LoggingMiddleware(logger Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			cmdType := reflect.TypeOf(cmd).Name()
			logger.Info("Executing command", "type", cmdType)

			err := next.Handle(ctx, cmd)
			if err != nil {
				logger.Error("Command failed", "type", cmdType, "error", err)
				return err
			}
			logger.Info("Command succeeded", "type", cmdType)
			return nil
		})
	}
}

// ValidationMiddleware re-checks Validate inside the pipeline so handlers
// reached through another bus or a direct call are still guarded.
func ValidationMiddleware() Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			if err := cmd.Validate(); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			return next.Handle(ctx, cmd)
		})
	}
}
