package nullmodem

import (
	"context"
	"sync"
)

// endpoint is the per-index state record behind one side of a virtual
// null-modem pair. It is created on first open and persists at zero
// references so the partner can still observe the last signal states it
// drove; only Registry.Shutdown tears records down.
//
// All fields below mu are guarded by it. Cross-endpoint updates (the signal
// propagator and the data forwarder writing into the partner) lock both
// sides, lower index first.
type endpoint struct {
	index int

	mu        sync.Mutex
	openCount int

	control SignalMask // output register: RTS, DTR, LOOP
	status  SignalMask // input register, driven only by the partner
	counts  TransitionCounts
	config  Config

	inbound []byte // bytes forwarded by the partner, unread

	// Broadcast channels, closed and replaced on each event. Waiters grab
	// the current channel under mu and select on it unlocked.
	statusNotify chan struct{}
	dataNotify   chan struct{}
}

func newEndpoint(index int) *endpoint {
	return &endpoint{
		index:        index,
		config:       DefaultConfig(),
		statusNotify: make(chan struct{}),
		dataNotify:   make(chan struct{}),
	}
}

// active reports whether the endpoint has open references. Callers hold mu.
func (e *endpoint) activeLocked() bool {
	return e.openCount > 0
}

// broadcastStatusLocked wakes every goroutine blocked on a signal change
func (e *endpoint) broadcastStatusLocked() {
	close(e.statusNotify)
	e.statusNotify = make(chan struct{})
}

// broadcastDataLocked wakes every goroutine blocked on inbound data
func (e *endpoint) broadcastDataLocked() {
	close(e.dataNotify)
	e.dataNotify = make(chan struct{})
}

// applyStatusLocked replaces the status register, counting one transition
// per flipped signal and waking waiters when anything flipped. The caller
// holds e.mu and has already verified the endpoint is active.
func (e *endpoint) applyStatusLocked(newStatus SignalMask) {
	changed := detectSignalChanges(e.status, newStatus)
	e.status = newStatus &^ ControlSignals
	if changed == 0 {
		return
	}
	if changed&SignalCTS != 0 {
		e.counts.CTS++
	}
	if changed&SignalDSR != 0 {
		e.counts.DSR++
	}
	if changed&SignalRI != 0 {
		e.counts.RI++
	}
	if changed&SignalDCD != 0 {
		e.counts.DCD++
	}
	e.broadcastStatusLocked()
}

// pushInboundLocked appends forwarded bytes to the inbound stream and wakes
// blocked readers. The caller holds e.mu.
func (e *endpoint) pushInboundLocked(data []byte) {
	e.inbound = append(e.inbound, data...)
	e.counts.RX += uint32(len(data))
	e.broadcastDataLocked()
}

// forceCloseLocked drops all references, discards unread inbound data and
// wakes every blocked reader and waiter. Registers and counters persist.
func (e *endpoint) forceCloseLocked() {
	e.openCount = 0
	e.inbound = nil
	e.broadcastStatusLocked()
	e.broadcastDataLocked()
}

// read copies unread inbound bytes into buf, blocking until data arrives,
// the endpoint loses its last reference, or ctx is cancelled.
func (e *endpoint) read(ctx context.Context, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	e.mu.Lock()
	for {
		if !e.activeLocked() {
			e.mu.Unlock()
			return 0, ErrNotOpen
		}
		if len(e.inbound) > 0 {
			n := copy(buf, e.inbound)
			e.inbound = e.inbound[n:]
			e.mu.Unlock()
			return n, nil
		}
		notify := e.dataNotify
		e.mu.Unlock()

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-notify:
		}
		e.mu.Lock()
	}
}

// waitForChange blocks until a transition counter for a signal in mask moves.
//
// The wait is edge-triggered but level-checked: any transition on the
// endpoint wakes it, and it only returns success once a requested signal's
// counter differs from the snapshot taken at entry (or at the last wake).
// A wake with no transitions recorded on any monitored signal is reported
// as ErrNoChange; that happens when the endpoint is closed underneath the
// waiter. Cancellation is reported as ErrInterrupted.
func (e *endpoint) waitForChange(ctx context.Context, mask SignalMask) (ModemSignals, SignalMask, error) {
	if mask&StatusSignals == 0 {
		return ModemSignals{}, 0, ErrInvalidSignalMask
	}
	e.mu.Lock()
	if !e.activeLocked() {
		e.mu.Unlock()
		return ModemSignals{}, 0, ErrNotOpen
	}
	prev := e.counts
	for {
		notify := e.statusNotify
		e.mu.Unlock()

		select {
		case <-ctx.Done():
			return ModemSignals{}, 0, ErrInterrupted
		case <-notify:
		}

		e.mu.Lock()
		now := e.counts
		if now.CTS == prev.CTS && now.DSR == prev.DSR &&
			now.RI == prev.RI && now.DCD == prev.DCD {
			e.mu.Unlock()
			return ModemSignals{}, 0, ErrNoChange
		}
		if changed := changedSignals(prev, now); changed&mask != 0 {
			signals := signalsFromMask(e.control | e.status)
			e.mu.Unlock()
			return signals, changed, nil
		}
		prev = now
	}
}

// lockPair acquires both endpoint locks in index order. peer may be nil when
// the partner record has never been created.
func lockPair(e, peer *endpoint) {
	if peer == nil {
		e.mu.Lock()
		return
	}
	if e.index < peer.index {
		e.mu.Lock()
		peer.mu.Lock()
	} else {
		peer.mu.Lock()
		e.mu.Lock()
	}
}

func unlockPair(e, peer *endpoint) {
	e.mu.Unlock()
	if peer != nil {
		peer.mu.Unlock()
	}
}
