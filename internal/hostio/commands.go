// Package hostio connects the scanner to its host process: operator commands
// come in as JSON lines, events go out as JSON lines or colored text.
package hostio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// MaxCommandLine bounds one operator message
const MaxCommandLine = 64 * 1024

// CommandReader splits an input stream into operator messages.
type CommandReader struct {
	r      io.Reader
	logger *logrus.Logger
}

// NewCommandReader creates a reader over r.
func NewCommandReader(r io.Reader, logger *logrus.Logger) *CommandReader {
	if logger == nil {
		logger = logrus.New()
	}
	return &CommandReader{r: r, logger: logger}
}

// Run calls handle with every non-empty line until the input ends or ctx is
// done. A blocked read is not interrupted by ctx; the check happens between lines.
// Returns nil at end of input.
func (cr *CommandReader) Run(ctx context.Context, handle func([]byte)) error {
	sc := bufio.NewScanner(cr.r)
	sc.Buffer(make([]byte, 0, 4096), MaxCommandLine)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		cr.logger.WithField("bytes", len(line)).Trace("Operator input received")
		handle(append([]byte(nil), line...))
	}

	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("operator message exceeds %d bytes: %w", MaxCommandLine, err)
		}
		return fmt.Errorf("read operator input: %w", err)
	}
	cr.logger.Debug("Operator input closed")
	return nil
}
