package cmd

import "context"

// Middleware decorates a command: guild checks, usage logging and the like.
type Middleware func(Command) Command

// Apply wraps c with mws in order, so the last middleware runs first.
func Apply(c Command, mws ...Middleware) Command {
	for _, mw := range mws {
		c = mw(c)
	}
	return c
}

// Unwrappable is a decorated command that can hand back what it decorates.
type Unwrappable interface {
	Command
	Unwrap() Command
}

// Wrapped keeps Inner's name and description and swaps in RunFunc.
type Wrapped struct {
	Inner   Command
	RunFunc func(ctx context.Context, inv *Invocation) error
}

func (w *Wrapped) Name() string        { return w.Inner.Name() }
func (w *Wrapped) Description() string { return w.Inner.Description() }
func (w *Wrapped) Unwrap() Command     { return w.Inner }

func (w *Wrapped) Run(ctx context.Context, inv *Invocation) error {
	if w.RunFunc == nil {
		return w.Inner.Run(ctx, inv)
	}
	return w.RunFunc(ctx, inv)
}

// Wrap is how middlewares build their decorated command.
func Wrap(c Command, run func(ctx context.Context, inv *Invocation) error) Command {
	return &Wrapped{Inner: c, RunFunc: run}
}

// Root peels every wrapper off c. Adapters use it to reach provider
// interfaces such as a slash definition.
func Root(c Command) Command {
	for c != nil {
		u, ok := c.(Unwrappable)
		if !ok {
			break
		}
		c = u.Unwrap()
	}
	return c
}
