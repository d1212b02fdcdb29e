package app

import (
	"context"
	"sync"

	"github.com/Z1ni/disp/internal/config"
)

// Run follows display changes and edits of the preset document until ctx is
// cancelled.
func (a *App) Run(ctx context.Context) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer a.recoverPanic("display watcher")
		if err := a.backend.Watch(ctx, a.TopologyChanged); err != nil && ctx.Err() == nil {
			a.logger.Error("display change watcher stopped", "error", err)
		}
	}()

	watcher, err := config.NewWatcher(a.configPath, a.logger.With("component", "config-watcher"))
	if err != nil {
		a.logger.Warn("config file changes will not be picked up", "error", err)
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer a.recoverPanic("config watcher")
			watcher.Run(ctx, a.ConfigChanged)
		}()
	}

	<-ctx.Done()
	if watcher != nil {
		watcher.Close()
	}
	wg.Wait()
}

func (a *App) recoverPanic(what string) {
	if r := recover(); r != nil {
		a.logger.Error("panic in "+what, "panic", r)
	}
}
