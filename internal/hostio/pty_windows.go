//go:build windows

package hostio

import "errors"

// PTY is not available on Windows
type PTY struct{}

func OpenPTY() (*PTY, error) {
	return nil, errors.New("PTY is not supported on windows")
}

func (p *PTY) Name() string              { return "" }
func (p *PTY) Read([]byte) (int, error)  { return 0, errors.ErrUnsupported }
func (p *PTY) Write([]byte) (int, error) { return 0, errors.ErrUnsupported }
func (p *PTY) Close() error              { return nil }
