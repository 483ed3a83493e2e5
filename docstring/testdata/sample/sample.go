package sample

import "context"

// Greeter says hello.
type Greeter struct{}

// Greet greets one person.
//
// The name is taken from the path.
func (g *Greeter) Greet(ctx context.Context, name string) (string, error) {
	return "hello " + name, nil
}

func (Greeter) undocumented() {}

type (
	// Box holds one value.
	Box[T any] struct{ v T }

	Plain struct{}
)

// Get returns the value.
func (b Box[T]) Get() T { return b.v }

// Helper is not a method.
func Helper() {}
