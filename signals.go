package nullmodem

import "golang.org/x/sys/unix"

// tiocmLOOP is the kernel's TIOCM_LOOP bit (0x8000 on all Linux
// architectures); x/sys/unix only defines TIOCM_LOOP for ppc targets.
const tiocmLOOP = 0x8000

// ModemSignals represents modem control signal states for one endpoint.
// CTS, DSR, RI and DCD are inputs derived from the partner endpoint;
// RTS, DTR and LOOP are outputs asserted by this endpoint.
type ModemSignals struct {
	CTS  bool // Clear To Send
	DSR  bool // Data Set Ready
	RI   bool // Ring Indicator
	DCD  bool // Data Carrier Detect
	RTS  bool // Request To Send
	DTR  bool // Data Terminal Ready
	LOOP bool // Loopback mode flag (recorded, never propagated)
}

// SignalMask identifies modem signals in set/clear and wait operations
type SignalMask int

const (
	SignalCTS SignalMask = 1 << iota
	SignalDSR
	SignalRI
	SignalDCD
	SignalRTS
	SignalDTR
	SignalLOOP
)

// StatusSignals are the input signals an endpoint can wait on
const StatusSignals = SignalCTS | SignalDSR | SignalRI | SignalDCD

// ControlSignals are the output signals an endpoint can set or clear
const ControlSignals = SignalRTS | SignalDTR | SignalLOOP

// statusFromControl applies the null-modem wiring rule: one endpoint's
// asserted control signals become its partner's status signals.
//
//	RTS -> CTS
//	DTR -> DSR + DCD
//
// LOOP stays local and RI is never driven by the wiring rule.
func statusFromControl(control SignalMask) SignalMask {
	var status SignalMask
	if control&SignalRTS != 0 {
		status |= SignalCTS
	}
	if control&SignalDTR != 0 {
		status |= SignalDSR | SignalDCD
	}
	return status
}

// signalMaskToTIOCM converts SignalMask to unix TIOCM bits
func signalMaskToTIOCM(mask SignalMask) int {
	var bits int
	if mask&SignalCTS != 0 {
		bits |= unix.TIOCM_CTS
	}
	if mask&SignalDSR != 0 {
		bits |= unix.TIOCM_DSR
	}
	if mask&SignalRI != 0 {
		bits |= unix.TIOCM_RI
	}
	if mask&SignalDCD != 0 {
		bits |= unix.TIOCM_CAR
	}
	if mask&SignalRTS != 0 {
		bits |= unix.TIOCM_RTS
	}
	if mask&SignalDTR != 0 {
		bits |= unix.TIOCM_DTR
	}
	if mask&SignalLOOP != 0 {
		bits |= tiocmLOOP
	}
	return bits
}

// tiocmToSignalMask converts unix TIOCM bits to a SignalMask
func tiocmToSignalMask(bits int) SignalMask {
	var mask SignalMask
	if bits&unix.TIOCM_CTS != 0 {
		mask |= SignalCTS
	}
	if bits&unix.TIOCM_DSR != 0 {
		mask |= SignalDSR
	}
	if bits&unix.TIOCM_RI != 0 {
		mask |= SignalRI
	}
	if bits&unix.TIOCM_CAR != 0 {
		mask |= SignalDCD
	}
	if bits&unix.TIOCM_RTS != 0 {
		mask |= SignalRTS
	}
	if bits&unix.TIOCM_DTR != 0 {
		mask |= SignalDTR
	}
	if bits&tiocmLOOP != 0 {
		mask |= SignalLOOP
	}
	return mask
}

// signalsFromMask expands a register mask into a ModemSignals value
func signalsFromMask(mask SignalMask) ModemSignals {
	return ModemSignals{
		CTS:  mask&SignalCTS != 0,
		DSR:  mask&SignalDSR != 0,
		RI:   mask&SignalRI != 0,
		DCD:  mask&SignalDCD != 0,
		RTS:  mask&SignalRTS != 0,
		DTR:  mask&SignalDTR != 0,
		LOOP: mask&SignalLOOP != 0,
	}
}

// detectSignalChanges compares old and new status registers to determine
// which monitored signals changed
func detectSignalChanges(oldStatus, newStatus SignalMask) SignalMask {
	return (oldStatus ^ newStatus) & StatusSignals
}

// TransitionCounts is a snapshot of an endpoint's cumulative event counters.
// The error counters at the bottom can never increment on a virtual wire but
// are reported for serial interface compatibility.
type TransitionCounts struct {
	CTS uint32 // CTS edges observed
	DSR uint32 // DSR edges observed
	RI  uint32 // RI edges observed
	DCD uint32 // DCD edges observed

	TX uint32 // bytes written by this endpoint
	RX uint32 // bytes delivered to this endpoint

	FrameErrors  uint32
	Overruns     uint32
	ParityErrors uint32
	Breaks       uint32
	BufOverruns  uint32
}

// changedSignals reports which monitored signals have transition counters
// that differ between two snapshots
func changedSignals(prev, now TransitionCounts) SignalMask {
	var changed SignalMask
	if now.CTS != prev.CTS {
		changed |= SignalCTS
	}
	if now.DSR != prev.DSR {
		changed |= SignalDSR
	}
	if now.RI != prev.RI {
		changed |= SignalRI
	}
	if now.DCD != prev.DCD {
		changed |= SignalDCD
	}
	return changed
}
