// Package bridge exposes virtual null-modem endpoints as pseudo-terminals,
// so external processes can talk to a pair with ordinary serial tooling.
// Only data bytes cross the pty boundary; modem line semantics stay inside
// the engine, which has no pty-side representation for them.
package bridge

import (
	"context"
	"fmt"
	"os"
	"sync"

	nullmodem "github.com/allbin/go-nullmodem"
	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// Bridge pumps bytes between one null-modem endpoint and a pty master.
// Whatever opens the slave side of the pty effectively sits on this end of
// the virtual cable.
type Bridge struct {
	port   nullmodem.Port
	master *os.File
	slave  *os.File // held open so master reads block instead of erroring

	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

// New allocates a pty, puts its slave into raw mode and starts pumping
// bytes between the master and port in both directions. The caller keeps
// ownership of port and must close the bridge before the port.
func New(port nullmodem.Port) (*Bridge, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("allocate pty: %w", err)
	}

	if err := makeRaw(slave); err != nil {
		master.Close()
		slave.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		port:   port,
		master: master,
		slave:  slave,
		cancel: cancel,
	}

	b.wg.Add(2)
	go b.pumpToPty(ctx)
	go b.pumpFromPty(ctx)
	return b, nil
}

// SlaveName returns the filesystem path external processes open to reach
// this end of the virtual cable
func (b *Bridge) SlaveName() string {
	return b.slave.Name()
}

// Index returns the endpoint index this bridge is attached to
func (b *Bridge) Index() int {
	return b.port.Index()
}

// Close stops both pumps and releases the pty. The endpoint handle itself
// is left open for the caller.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		b.cancel()
		// Closing the master unblocks the pty-side read
		err1 := b.master.Close()
		b.wg.Wait()
		err2 := b.slave.Close()
		if err1 != nil {
			b.closeErr = err1
		} else {
			b.closeErr = err2
		}
	})
	return b.closeErr
}

// pumpToPty forwards bytes the partner endpoint sends into the pty
func (b *Bridge) pumpToPty(ctx context.Context) {
	defer b.wg.Done()
	buf := make([]byte, 1024)
	for {
		n, err := b.port.ReadContext(ctx, buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if _, err := b.master.Write(buf[:n]); err != nil {
			return
		}
	}
}

// pumpFromPty forwards bytes written on the pty slave into the endpoint
func (b *Bridge) pumpFromPty(ctx context.Context) {
	defer b.wg.Done()
	buf := make([]byte, 1024)
	for {
		n, err := b.master.Read(buf)
		if err != nil {
			return
		}
		if n > 0 {
			if _, err := b.port.WriteContext(ctx, buf[:n]); err != nil {
				return
			}
		}
	}
}

// makeRaw disables all line discipline processing on the slave so bytes
// cross the pty unmodified
func makeRaw(slave *os.File) error {
	fd := int(slave.Fd())
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("get termios: %w", err)
	}

	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB
	termios.Cflag |= unix.CS8
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("set termios: %w", err)
	}
	return nil
}
