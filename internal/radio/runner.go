package radio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bluuki/internal/device"
	"github.com/srg/bluuki/internal/groutine"
)

// DefaultStartSettle is how long a blocking scan must survive before a start
// request is reported as complete. Backends report start failures
// synchronously from their scan call, well inside this window.
const DefaultStartSettle = 50 * time.Millisecond

// ErrScanEnded is reported when a scan returned without error inside the settle window
var ErrScanEnded = errors.New("scan ended immediately")

// ScanFunc runs one blocking scan until ctx is done or the scan fails
type ScanFunc func(ctx context.Context) error

// Runner turns a blocking scan call into the asynchronous start/stop pair
// required by Radio.
type Runner struct {
	Name   string
	Settle time.Duration
	Logger *logrus.Logger
	// OnExit is called when a running scan ends without being stopped.
	OnExit func(err error)

	mu       sync.Mutex
	cancel   context.CancelFunc
	finished chan struct{}
}

// Running reports whether a scan goroutine is active
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished != nil
}

// Start launches scan in a named goroutine and reports through done once the
// scan has survived the settle window or failed inside it.
func (r *Runner) Start(scan ScanFunc, done func(error)) {
	logger := r.logger()

	r.mu.Lock()
	if r.finished != nil {
		r.mu.Unlock()
		groutine.Go(context.Background(), r.Name+"-start", func(context.Context) {
			done(device.ErrAlreadyScanning)
		})
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	r.cancel, r.finished = cancel, finished
	r.mu.Unlock()

	result := make(chan scanResult, 1)

	groutine.Go(ctx, r.Name+"-scan", func(ctx context.Context) {
		defer close(finished)
		err := scan(ctx)
		stopped := ctx.Err() != nil

		r.mu.Lock()
		if r.finished == finished {
			r.cancel, r.finished = nil, nil
		}
		r.mu.Unlock()
		cancel()

		result <- scanResult{err: err, stopped: stopped}
	})

	settle := r.Settle
	if settle <= 0 {
		settle = DefaultStartSettle
	}

	groutine.Go(context.Background(), r.Name+"-start", func(context.Context) {
		timer := time.NewTimer(settle)
		defer timer.Stop()

		select {
		case res := <-result:
			switch {
			case res.stopped:
				done(context.Canceled)
			case res.err == nil:
				done(ErrScanEnded)
			default:
				done(device.NormalizeError(res.err))
			}
			return
		case <-timer.C:
			done(nil)
		}

		res := <-result
		if res.stopped {
			return
		}
		err := device.NormalizeError(res.err)
		if err == nil {
			err = ErrScanEnded
		}
		logger.WithError(err).WithField("radio", r.Name).Warn("Scan ended unexpectedly")
		if r.OnExit != nil {
			r.OnExit(err)
		}
	})
}

type scanResult struct {
	err     error
	stopped bool
}

// Stop cancels the running scan, calls stop if given, and reports through done
// once the scan goroutine has returned. Stopping an idle runner completes at once.
func (r *Runner) Stop(stop func() error, done func(error)) {
	r.mu.Lock()
	cancel, finished := r.cancel, r.finished
	r.cancel, r.finished = nil, nil
	r.mu.Unlock()

	groutine.Go(context.Background(), r.Name+"-stop", func(context.Context) {
		if finished == nil {
			done(nil)
			return
		}

		cancel()
		if stop != nil {
			if err := stop(); err != nil {
				done(fmt.Errorf("stop %s scan: %w", r.Name, device.NormalizeError(err)))
				return
			}
		}
		<-finished
		done(nil)
	})
}

func (r *Runner) logger() *logrus.Logger {
	if r.Logger == nil {
		return logrus.StandardLogger()
	}
	return r.Logger
}
