package commands

import (
	"context"
	"os/signal"
	"syscall"
)

// context returns a context canceled on SIGINT or SIGTERM. The stop
// function is released when the process exits.
func (g *Global) context() context.Context {
	if g.ctx == nil {
		g.ctx, _ = signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	}
	return g.ctx
}
