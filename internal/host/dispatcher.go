package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"

	"github.com/jpalmerr/sidebar/command"
)

// ErrStopped is returned by [Dispatcher.Execute] once the dispatcher has
// stopped, or before it was started.
var ErrStopped = errors.New("dispatcher stopped")

// Executor runs one command. [command.Adapter] satisfies it.
type Executor interface {
	Execute(args []string) command.Result
}

// Teardown is called once when the dispatcher stops. [sidebar.Table]
// satisfies it.
type Teardown interface {
	Unregister()
}

// request is one queued command and where to deliver its outcome.
type request struct {
	args  []string
	reply chan reply
}

type reply struct {
	result command.Result
	err    error
}

// Dispatcher serializes commands onto a single goroutine so the sidebar is
// never touched concurrently.
//
// Lifecycle methods (Start, Stop) are safe for concurrent use and
// idempotent. [Dispatcher.Stop] calls the [Teardown] after the loop has
// exited.
type Dispatcher struct {
	exec     Executor
	teardown Teardown
	logger   *slog.Logger

	requests chan request
	done     chan struct{}
	wg       sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
}

// NewDispatcher creates a [Dispatcher]. teardown may be nil.
func NewDispatcher(exec Executor, teardown Teardown, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		exec:     exec,
		teardown: teardown,
		logger:   logger,
		requests: make(chan request),
		done:     make(chan struct{}),
	}
}

// Start runs the dispatch loop in a background goroutine until ctx is
// cancelled or [Dispatcher.Stop] is called.
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent; calling it after Stop is a no-op.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.started || d.stopped {
		d.mu.Unlock()
		return
	}
	d.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		defer close(d.done)

		for {
			select {
			case <-loopCtx.Done():
				return
			case req := <-d.requests:
				res, err := d.safeExecute(req.args)
				req.reply <- reply{result: res, err: err}
			}
		}
	}()
}

// Execute submits args to the dispatch loop and waits for the result.
//
// Returns [ErrStopped] if the loop is not running, or ctx's error if ctx is
// done first. A command accepted by the loop runs to completion even if the
// caller stops waiting.
func (d *Dispatcher) Execute(ctx context.Context, args []string) (command.Result, error) {
	d.mu.Lock()
	running := d.started && !d.stopped
	d.mu.Unlock()
	if !running {
		return command.Result{}, ErrStopped
	}

	req := request{args: args, reply: make(chan reply, 1)}
	select {
	case d.requests <- req:
	case <-d.done:
		return command.Result{}, ErrStopped
	case <-ctx.Done():
		return command.Result{}, ctx.Err()
	}

	select {
	case r := <-req.reply:
		return r.result, r.err
	case <-ctx.Done():
		return command.Result{}, ctx.Err()
	}
}

// Stop halts the dispatch loop, waits for the running command to finish and
// then tears the sidebar down.
//
// Stop is idempotent. Calling Stop before Start skips the teardown, since
// nothing could have been put on the sidebar.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	started := d.started
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Unlock()

	d.wg.Wait()

	if started && d.teardown != nil {
		d.teardown.Unregister()
		d.logger.Info("sidebar torn down")
	}
}

// safeExecute runs one command with panic recovery.
// If the command panics, it logs the full stack trace with a correlation ID
// and returns an error containing the ID.
func (d *Dispatcher) safeExecute(args []string) (res command.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			stack := debug.Stack()

			d.logger.Error("command panic",
				"correlation_id", correlationID,
				"args", args,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(stack),
			)

			res = command.Result{}
			err = fmt.Errorf("command panic (correlation_id: %s)", correlationID)
		}
	}()
	return d.exec.Execute(args), nil
}
