// Package groutine starts named goroutines. Names are attached as pprof labels
// so scan, stop and watcher goroutines are identifiable in profiles and dumps.
package groutine

import (
	"context"
	"fmt"
	"runtime/pprof"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const goroutineNameKey ctxKey = "goroutine_name"

// PanicLogger receives panics recovered from named goroutines.
// Tests may replace it; nil disables recovery.
var PanicLogger = logrus.StandardLogger()

// Go starts fn in a goroutine labelled with name. radio.Runner runs each
// blocking backend scan this way, so a go-ble scan shows up as "goble-scan":
//
//	groutine.Go(ctx, r.Name+"-scan", func(ctx context.Context) {
//		defer close(finished)
//		err := scan(ctx)
//		...
//	})
//
// The ctx passed to fn carries the pprof label and the name (see GetName).
// A panic in fn is logged through PanicLogger instead of crashing the scanner.
// If parentCtx is nil, context.Background() is used.
func Go(parentCtx context.Context, name string, fn func(ctx context.Context)) {
	if parentCtx == nil {
		parentCtx = context.Background()
	}

	labels := pprof.Labels("goroutine_name", name)

	go pprof.Do(parentCtx, labels, func(ctx context.Context) {
		if PanicLogger != nil {
			defer func() {
				if r := recover(); r != nil {
					PanicLogger.WithField("goroutine", name).Error(fmt.Sprintf("recovered panic: %v", r))
				}
			}()
		}
		ctx = context.WithValue(ctx, goroutineNameKey, name)
		fn(ctx)
	})
}

// GetName retrieves the goroutine name from the context.
func GetName(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(goroutineNameKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
