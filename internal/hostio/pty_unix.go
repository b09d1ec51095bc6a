//go:build !windows

package hostio

import (
	"errors"
	"fmt"
	"os"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// PTY exposes the operator stream on a pseudo-terminal: another process opens
// Name(), writes command lines and reads events. The slave end is kept open so
// clients can come and go without the master seeing EOF.
type PTY struct {
	master *os.File
	slave  *os.File
}

// OpenPTY creates a raw-mode pseudo-terminal pair.
func OpenPTY() (*PTY, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to create PTY (check permissions and available PTY devices): %w", err)
	}

	if _, err := term.MakeRaw(int(slave.Fd())); err != nil {
		closeErr := errors.Join(master.Close(), slave.Close())
		if closeErr != nil {
			return nil, fmt.Errorf("failed to set PTY %s to raw mode: %w (cleanup: %v)", slave.Name(), err, closeErr)
		}
		return nil, fmt.Errorf("failed to set PTY %s to raw mode: %w", slave.Name(), err)
	}
	return &PTY{master: master, slave: slave}, nil
}

// Name returns the slave path, e.g. /dev/pts/5
func (p *PTY) Name() string {
	return p.slave.Name()
}

func (p *PTY) Read(b []byte) (int, error) {
	return p.master.Read(b)
}

func (p *PTY) Write(b []byte) (int, error) {
	return p.master.Write(b)
}

func (p *PTY) Close() error {
	return errors.Join(p.master.Close(), p.slave.Close())
}
