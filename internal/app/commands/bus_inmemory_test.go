package commands

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type echoCommand struct{ Text string }

func (echoCommand) Key() string { return "test.echo" }

type otherCommand struct{}

func (otherCommand) Key() string { return "test.other" }

func TestDispatchTypedHandler(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[echoCommand, string](bus, "test.echo", HandlerFunc[echoCommand, string](func(_ context.Context, c echoCommand) (string, error) {
		return "echo:" + c.Text, nil
	}))

	got, err := Dispatch[echoCommand, string](context.Background(), bus, echoCommand{Text: "hi"})
	if err != nil || got != "echo:hi" {
		t.Fatalf("Dispatch() = %q, %v", got, err)
	}
	if _, err := Dispatch[echoCommand, int](context.Background(), bus, echoCommand{}); !errors.Is(err, ErrResultType) {
		t.Fatalf("expected ErrResultType, got %v", err)
	}
	if _, err := bus.Dispatch(context.Background(), otherCommand{}); !errors.Is(err, ErrHandlerNotFound) {
		t.Fatalf("expected ErrHandlerNotFound, got %v", err)
	}
	if _, err := Dispatch[echoCommand, string](context.Background(), nil, echoCommand{}); !errors.Is(err, ErrNilBus) {
		t.Fatalf("expected ErrNilBus, got %v", err)
	}
	if !reflect.DeepEqual(bus.Keys(), []string{"test.echo"}) {
		t.Fatalf("unexpected keys %v", bus.Keys())
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	bus := NewInMemoryBus()
	noop := func(context.Context, Command) (any, error) { return nil, nil }
	bus.RegisterRaw("dup", noop)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	bus.RegisterRaw("dup", noop)
}
