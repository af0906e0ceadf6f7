package serviceutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalContext returns a context that lives until Ctrl+C (or SIGTERM).
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

var (
	exitMutex sync.Mutex
	exitHooks []func()
	exit      = os.Exit
)

// AtExit registers a function that Exit and Fatal run before the process
// exits, hooks run in reverse order of registration.
func AtExit(hook func()) {
	exitMutex.Lock()
	defer exitMutex.Unlock()
	exitHooks = append(exitHooks, hook)
}

// RunExitHooks runs and forgets every registered hook.
func RunExitHooks() {
	exitMutex.Lock()
	hooks := exitHooks
	exitHooks = nil
	exitMutex.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}

func Exit(code int) {
	RunExitHooks()
	exit(code)
}

func Fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	Exit(1)
}
