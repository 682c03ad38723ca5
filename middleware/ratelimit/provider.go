package ratelimit

import (
	"context"
	"time"

	"go.uber.org/fx"
)

const cleanupInterval = time.Minute

func ProvideMemoryStore(lc fx.Lifecycle) Store {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go store.RunCleanup(ctx, cleanupInterval)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
	return store
}

var Module = fx.Options(
	fx.Provide(ProvideMemoryStore),
)
