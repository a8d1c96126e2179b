// Package cmd is a transport-agnostic command core: a command has a name, a
// description and Run(ctx, invocation). Discord registration and dispatch live
// in adapters that wrap it.
package cmd

import "context"

// Invocation carries whatever the adapter needs to hand a command. Discord
// adapters put their interaction context in Data.
type Invocation struct {
	Args []string
	Data any
}

// Command is identity plus execution.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
