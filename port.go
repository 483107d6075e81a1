package nullmodem

import (
	"context"
	"errors"
	"sync"
	"time"
)

// writeRoom is the nominal outbound capacity every endpoint advertises.
// The reference device reports a constant 255 regardless of buffering, and
// consumers depend on that, so the virtual wire does the same.
const writeRoom = 255

// Port is an open handle to one side of a virtual null-modem pair
type Port interface {
	Close() error
	Read(buf []byte) (int, error)
	Write(data []byte) (int, error)
	ReadContext(ctx context.Context, buf []byte) (int, error)
	WriteContext(ctx context.Context, data []byte) (int, error)
	WriteRoom() (int, error)

	// Modem signal control and monitoring
	GetModemSignals() (ModemSignals, error)
	SetModemSignals(set, clear SignalMask) error
	SetRTS(state bool) error
	GetRTS() (bool, error)
	SetDTR(state bool) error
	GetDTR() (bool, error)
	WaitForSignalChange(mask SignalMask, timeout time.Duration) (ModemSignals, SignalMask, error)
	WaitForSignalChangeContext(ctx context.Context, mask SignalMask) (ModemSignals, SignalMask, error)
	TransitionCounts() (TransitionCounts, error)

	// Introspection
	Index() int
	Config() (Config, error)
	ApplyConfig(opts ...Option) error
}

// port is the concrete implementation of the Port interface
type port struct {
	mu     sync.RWMutex
	closed bool
	reg    *Registry
	ep     *endpoint
}

// Ensure port implements Port interface at compile time
var _ Port = (*port)(nil)

// guard rejects operations on a closed handle
func (p *port) guard() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPortClosed
	}
	return nil
}

// Index returns the endpoint index this handle is open on
func (p *port) Index() int {
	return p.ep.index
}

// Close releases this handle's reference on the endpoint. The endpoint
// record persists at zero references; its partner keeps observing the last
// signal states this side drove. Closing an already-closed handle is a
// no-op. When the last reference drops, unread inbound data is discarded
// and blocked readers and waiters are woken.
func (p *port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	e := p.ep
	e.mu.Lock()
	if e.openCount > 0 {
		e.openCount--
		if e.openCount == 0 {
			e.inbound = nil
			e.broadcastStatusLocked()
			e.broadcastDataLocked()
		}
	}
	e.mu.Unlock()
	return nil
}

// Read reads forwarded data from the partner endpoint, blocking until data
// arrives or the endpoint is closed
func (p *port) Read(buf []byte) (int, error) {
	if err := p.guard(); err != nil {
		return 0, err
	}
	return p.ep.read(context.Background(), buf)
}

// ReadContext reads forwarded data with cancellation support
func (p *port) ReadContext(ctx context.Context, buf []byte) (int, error) {
	if err := p.guard(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return p.ep.read(ctx, buf)
}

// Write forwards data to the partner endpoint's inbound stream. The wire
// conducts whether or not anyone is listening: with an inactive partner the
// bytes are accepted, counted on this endpoint's TX counter and discarded.
// Nothing is queued for later delivery.
func (p *port) Write(data []byte) (int, error) {
	if err := p.guard(); err != nil {
		return 0, err
	}

	e := p.ep
	peer := p.reg.peer(e.index)
	lockPair(e, peer)
	defer unlockPair(e, peer)

	if !e.activeLocked() {
		return 0, ErrNotOpen
	}
	e.counts.TX += uint32(len(data))
	if peer != nil && peer.activeLocked() {
		peer.pushInboundLocked(data)
	}
	return len(data), nil
}

// WriteContext forwards data with a cancellation pre-check. Forwarding
// itself never blocks; the inbound stream is unbounded and back-pressure is
// a downstream concern.
func (p *port) WriteContext(ctx context.Context, data []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return p.Write(data)
}

// WriteRoom returns the endpoint's advertised outbound capacity
func (p *port) WriteRoom() (int, error) {
	if err := p.guard(); err != nil {
		return 0, err
	}
	e := p.ep
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activeLocked() {
		return 0, ErrNotOpen
	}
	return writeRoom, nil
}

// GetModemSignals returns the merged view of the control register (RTS,
// DTR, LOOP) and the partner-driven status register (CTS, DSR, RI, DCD)
func (p *port) GetModemSignals() (ModemSignals, error) {
	if err := p.guard(); err != nil {
		return ModemSignals{}, err
	}
	e := p.ep
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activeLocked() {
		return ModemSignals{}, ErrNotOpen
	}
	return signalsFromMask(e.control | e.status), nil
}

// SetModemSignals asserts the control signals in set and deasserts those in
// clear, propagating the null-modem wiring rule into an active partner.
// Signals outside the control register are ignored, as are status bits.
func (p *port) SetModemSignals(set, clear SignalMask) error {
	if err := p.guard(); err != nil {
		return err
	}

	e := p.ep
	peer := p.reg.peer(e.index)
	lockPair(e, peer)
	defer unlockPair(e, peer)

	if !e.activeLocked() {
		return ErrNotOpen
	}
	propagateControlLocked(e, peer, set&ControlSignals, clear&ControlSignals)
	return nil
}

// SetRTS manually sets the RTS signal state
func (p *port) SetRTS(state bool) error {
	if state {
		return p.SetModemSignals(SignalRTS, 0)
	}
	return p.SetModemSignals(0, SignalRTS)
}

// GetRTS returns current RTS signal state
func (p *port) GetRTS() (bool, error) {
	signals, err := p.GetModemSignals()
	if err != nil {
		return false, err
	}
	return signals.RTS, nil
}

// SetDTR manually sets the DTR signal state
func (p *port) SetDTR(state bool) error {
	if state {
		return p.SetModemSignals(SignalDTR, 0)
	}
	return p.SetModemSignals(0, SignalDTR)
}

// GetDTR returns current DTR signal state
func (p *port) GetDTR() (bool, error) {
	signals, err := p.GetModemSignals()
	if err != nil {
		return false, err
	}
	return signals.DTR, nil
}

// WaitForSignalChange blocks until a signal in mask transitions, up to
// timeout. A timeout of zero or less blocks indefinitely. Returns the
// signal states observed at the wake plus the mask of signals whose
// transition counters moved.
func (p *port) WaitForSignalChange(mask SignalMask, timeout time.Duration) (ModemSignals, SignalMask, error) {
	if timeout <= 0 {
		return p.WaitForSignalChangeContext(context.Background(), mask)
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	signals, changed, err := p.WaitForSignalChangeContext(ctx, mask)
	if errors.Is(err, ErrInterrupted) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ModemSignals{}, 0, ErrSignalTimeout
	}
	return signals, changed, err
}

// WaitForSignalChangeContext waits with context cancellation support.
// Cancellation surfaces as ErrInterrupted; a wake with no transitions
// recorded on any monitored signal surfaces as ErrNoChange.
func (p *port) WaitForSignalChangeContext(ctx context.Context, mask SignalMask) (ModemSignals, SignalMask, error) {
	if err := p.guard(); err != nil {
		return ModemSignals{}, 0, err
	}
	if ctx.Err() != nil {
		return ModemSignals{}, 0, ErrInterrupted
	}
	return p.ep.waitForChange(ctx, mask)
}

// TransitionCounts returns a snapshot of the endpoint's event counters
func (p *port) TransitionCounts() (TransitionCounts, error) {
	if err := p.guard(); err != nil {
		return TransitionCounts{}, err
	}
	e := p.ep
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activeLocked() {
		return TransitionCounts{}, ErrNotOpen
	}
	return e.counts, nil
}

// Config returns the endpoint's last-applied configuration snapshot
func (p *port) Config() (Config, error) {
	if err := p.guard(); err != nil {
		return Config{}, err
	}
	e := p.ep
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activeLocked() {
		return Config{}, ErrNotOpen
	}
	return e.config, nil
}

// ApplyConfig updates the endpoint's configuration snapshot. The snapshot
// is stored for introspection only; the virtual wire enforces no framing or
// timing, just like the reference device's termios handler.
func (p *port) ApplyConfig(opts ...Option) error {
	if err := p.guard(); err != nil {
		return err
	}
	e := p.ep
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activeLocked() {
		return ErrNotOpen
	}
	config := e.config
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return err
		}
	}
	e.config = config
	return nil
}
