package repository

import (
	"context"
	"fmt"
	"sync"

	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/base/goroutine"
)

// watcher coalesces change notifications, a pending signal absorbs later ones
type watcher struct {
	ctx     bCtx.Ctx
	cancel  context.CancelFunc
	changes chan struct{}
	errs    chan error
	done    chan struct{}
	once    sync.Once
}

func newWatcher(c bCtx.Ctx) *watcher {
	ctx, cancel := bCtx.WithCancel(c)
	return &watcher{
		ctx:     ctx,
		cancel:  cancel,
		changes: make(chan struct{}, 1),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
}

func (w *watcher) start(loop func() error) {
	goroutine.RecoverableGo(func() {
		if err := loop(); err != nil {
			w.errs <- err
		}
	},
		goroutine.WithAfterEnded(func() { close(w.done) }),
		goroutine.WithAfterRecovered(func(p interface{}, _ []byte) {
			w.errs <- fmt.Errorf("log watcher panicked: %v", p)
		}),
	)
}

func (w *watcher) signal() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

func (w *watcher) Changes() <-chan struct{} {
	return w.changes
}

func (w *watcher) Err() <-chan error {
	return w.errs
}

func (w *watcher) Unsubscribe() {
	w.once.Do(func() {
		w.cancel()
		<-w.done
	})
}
