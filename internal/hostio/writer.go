package hostio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/srg/bluuki/internal/event"
	"golang.org/x/term"
)

// EventWriter renders one event
type EventWriter interface {
	Write(ev event.Event) error
}

// NewWriter returns the writer for format ("json" or "text").
func NewWriter(format string, w io.Writer) (EventWriter, error) {
	switch format {
	case "json":
		return NewJSONWriter(w), nil
	case "text":
		return NewTextWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// JSONWriter writes one JSON document per line.
type JSONWriter struct {
	enc *json.Encoder
}

func NewJSONWriter(w io.Writer) *JSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONWriter{enc: enc}
}

func (jw *JSONWriter) Write(ev event.Event) error {
	return jw.enc.Encode(ev)
}

// TextWriter renders a one-line summary per event. Colors are used only when
// the destination is a terminal.
type TextWriter struct {
	w      io.Writer
	id     *color.Color
	ok     *color.Color
	failed *color.Color
	dim    *color.Color
}

func NewTextWriter(w io.Writer) *TextWriter {
	tw := &TextWriter{
		w:      w,
		id:     color.New(color.FgCyan, color.Bold),
		ok:     color.New(color.FgGreen),
		failed: color.New(color.FgRed),
		dim:    color.New(color.Faint),
	}
	tw.SetColors(isTerminal(w))
	return tw
}

// SetColors overrides terminal detection
func (tw *TextWriter) SetColors(enabled bool) {
	for _, c := range []*color.Color{tw.id, tw.ok, tw.failed, tw.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

func (tw *TextWriter) Write(ev event.Event) error {
	var line string
	switch e := ev.(type) {
	case *event.Status:
		line = tw.status(e)
	case *event.Measurement:
		line = tw.measurement(e)
	default:
		return fmt.Errorf("unsupported event %T", ev)
	}
	_, err := fmt.Fprintln(tw.w, line)
	return err
}

func (tw *TextWriter) status(s *event.Status) string {
	state := tw.ok.Sprint(s.State.String())
	if s.Error {
		state = tw.failed.Sprint(s.State.String())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "status %s error=%t stateChange=%t", state, s.Error, s.StateChange)
	if s.Reason != "" {
		fmt.Fprintf(&b, " reason=%q", s.Reason)
	}
	return b.String()
}

func (tw *TextWriter) measurement(m *event.Measurement) string {
	var b strings.Builder
	b.WriteString(tw.id.Sprint(m.PeripheralUUID))
	if m.LocalName != "" {
		fmt.Fprintf(&b, " %q", m.LocalName)
	}
	fmt.Fprintf(&b, " rssi=%d", m.RSSI)

	if ib := m.IBeacon; ib != nil {
		fmt.Fprintf(&b, " ibeacon=%s/%d/%d power=%d accuracy=%.2fm proximity=%s",
			ib.ProximityHex(), ib.Major, ib.Minor, ib.MeasuredPower, ib.Accuracy, ib.Proximity)
	}
	if mag := m.Magnetic; mag != nil {
		fmt.Fprintf(&b, " mag=%d,%d,%d", mag.X, mag.Y, mag.Z)
	}
	b.WriteString(tw.dim.Sprintf(" by=%s", m.DetectedBy))
	return b.String()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// Pump writes events from ch until it is closed or ctx is done. Buffered
// events left when ctx is done are flushed first.
func Pump(ctx context.Context, ch <-chan event.Event, w EventWriter, logger *logrus.Logger) error {
	if logger == nil {
		logger = logrus.New()
	}
	write := func(ev event.Event) {
		if err := w.Write(ev); err != nil {
			logger.WithError(err).WithField("kind", ev.Kind()).Error("Failed to write event")
		}
	}

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			write(ev)
		case <-ctx.Done():
			for {
				select {
				case ev, ok := <-ch:
					if !ok {
						return ctx.Err()
					}
					write(ev)
				default:
					return ctx.Err()
				}
			}
		}
	}
}
