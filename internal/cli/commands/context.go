// Package commands implements the docfill subcommands.
package commands

import (
	"context"

	"github.com/benjaminschreck/go-docfill/pkg/docfill"
)

// engineKey is used to store the engine in context.
type engineKey struct{}

// WithEngine returns a context carrying engine.
func WithEngine(ctx context.Context, engine *docfill.Engine) context.Context {
	return context.WithValue(ctx, engineKey{}, engine)
}

// EngineFromContext retrieves the engine stored by WithEngine, or an engine
// built from the global configuration.
func EngineFromContext(ctx context.Context) *docfill.Engine {
	if ctx != nil {
		if e, ok := ctx.Value(engineKey{}).(*docfill.Engine); ok {
			return e
		}
	}
	return docfill.New()
}
