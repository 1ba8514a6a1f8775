package signals

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	signalHandlers      []func()
	signalHandlersMutex sync.Mutex
	signalHandlersOnce  sync.Once

	rootCtx    context.Context
	rootCancel context.CancelFunc
)

// RegisterGracefulTerminationHandler runs fn when SIGINT or SIGTERM is
// received, after Context has been canceled and before the process exits.
func RegisterGracefulTerminationHandler(fn func()) {
	start()
	signalHandlersMutex.Lock()
	defer signalHandlersMutex.Unlock()
	signalHandlers = append(signalHandlers, fn)
}

// Context is canceled on the first SIGINT or SIGTERM. Long running work such
// as image generation should derive from it.
func Context() context.Context {
	start()
	return rootCtx
}

func start() {
	signalHandlersOnce.Do(func() {
		rootCtx, rootCancel = context.WithCancel(context.Background())
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		go signalHandler(c)
	})
}

func signalHandler(c chan os.Signal) {
	<-c
	shutdown()
	os.Exit(0)
}

// shutdown cancels Context and runs the registered handlers in order.
func shutdown() {
	rootCancel()

	signalHandlersMutex.Lock()
	defer signalHandlersMutex.Unlock()
	for _, fn := range signalHandlers {
		fn()
	}
}
