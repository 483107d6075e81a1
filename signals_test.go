package nullmodem

import (
	"testing"

	"golang.org/x/sys/unix"
)

// TestStatusFromControl tests the null-modem wiring rule
func TestStatusFromControl(t *testing.T) {
	tests := []struct {
		name     string
		control  SignalMask
		expected SignalMask
	}{
		{
			name:     "Nothing asserted",
			control:  0,
			expected: 0,
		},
		{
			name:     "RTS raises CTS",
			control:  SignalRTS,
			expected: SignalCTS,
		},
		{
			name:     "DTR raises DSR and DCD",
			control:  SignalDTR,
			expected: SignalDSR | SignalDCD,
		},
		{
			name:     "RTS and DTR together",
			control:  SignalRTS | SignalDTR,
			expected: SignalCTS | SignalDSR | SignalDCD,
		},
		{
			name:     "LOOP is not propagated",
			control:  SignalLOOP,
			expected: 0,
		},
		{
			name:     "LOOP alongside RTS",
			control:  SignalLOOP | SignalRTS,
			expected: SignalCTS,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := statusFromControl(tt.control)
			if result != tt.expected {
				t.Errorf("statusFromControl(%v) = %v, want %v", tt.control, result, tt.expected)
			}
		})
	}
}

// TestDetectSignalChanges tests status register change detection
func TestDetectSignalChanges(t *testing.T) {
	tests := []struct {
		name      string
		oldStatus SignalMask
		newStatus SignalMask
		expected  SignalMask
	}{
		{
			name:      "No change",
			oldStatus: SignalCTS | SignalDSR,
			newStatus: SignalCTS | SignalDSR,
			expected:  0,
		},
		{
			name:      "CTS rose",
			oldStatus: 0,
			newStatus: SignalCTS,
			expected:  SignalCTS,
		},
		{
			name:      "CTS fell",
			oldStatus: SignalCTS,
			newStatus: 0,
			expected:  SignalCTS,
		},
		{
			name:      "DSR and DCD rose together",
			oldStatus: 0,
			newStatus: SignalDSR | SignalDCD,
			expected:  SignalDSR | SignalDCD,
		},
		{
			name:      "Control bits are ignored",
			oldStatus: 0,
			newStatus: SignalRTS | SignalDTR,
			expected:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := detectSignalChanges(tt.oldStatus, tt.newStatus)
			if result != tt.expected {
				t.Errorf("detectSignalChanges(%v, %v) = %v, want %v",
					tt.oldStatus, tt.newStatus, result, tt.expected)
			}
		})
	}
}

// TestSignalMaskToTIOCM tests the signal mask conversion
func TestSignalMaskToTIOCM(t *testing.T) {
	tests := []struct {
		name     string
		mask     SignalMask
		expected int
	}{
		{
			name:     "CTS only",
			mask:     SignalCTS,
			expected: unix.TIOCM_CTS,
		},
		{
			name:     "DSR only",
			mask:     SignalDSR,
			expected: unix.TIOCM_DSR,
		},
		{
			name:     "RI only",
			mask:     SignalRI,
			expected: unix.TIOCM_RI,
		},
		{
			name:     "DCD only",
			mask:     SignalDCD,
			expected: unix.TIOCM_CAR,
		},
		{
			name:     "Control signals",
			mask:     SignalRTS | SignalDTR | SignalLOOP,
			expected: unix.TIOCM_RTS | unix.TIOCM_DTR | tiocmLOOP,
		},
		{
			name:     "All status signals",
			mask:     StatusSignals,
			expected: unix.TIOCM_CTS | unix.TIOCM_DSR | unix.TIOCM_RI | unix.TIOCM_CAR,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := signalMaskToTIOCM(tt.mask)
			if result != tt.expected {
				t.Errorf("signalMaskToTIOCM(%v) = %v, want %v", tt.mask, result, tt.expected)
			}
			back := tiocmToSignalMask(result)
			if back != tt.mask {
				t.Errorf("tiocmToSignalMask(%v) = %v, want %v", result, back, tt.mask)
			}
		})
	}
}

// TestChangedSignals tests transition counter comparison
func TestChangedSignals(t *testing.T) {
	tests := []struct {
		name     string
		prev     TransitionCounts
		now      TransitionCounts
		expected SignalMask
	}{
		{
			name:     "Identical snapshots",
			prev:     TransitionCounts{CTS: 3, DSR: 1},
			now:      TransitionCounts{CTS: 3, DSR: 1},
			expected: 0,
		},
		{
			name:     "CTS moved",
			prev:     TransitionCounts{CTS: 3},
			now:      TransitionCounts{CTS: 5},
			expected: SignalCTS,
		},
		{
			name:     "DSR and DCD moved",
			prev:     TransitionCounts{},
			now:      TransitionCounts{DSR: 1, DCD: 1},
			expected: SignalDSR | SignalDCD,
		},
		{
			name:     "Byte counters are not signals",
			prev:     TransitionCounts{},
			now:      TransitionCounts{TX: 10, RX: 10},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := changedSignals(tt.prev, tt.now)
			if result != tt.expected {
				t.Errorf("changedSignals() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// TestSignalsFromMask tests register expansion
func TestSignalsFromMask(t *testing.T) {
	signals := signalsFromMask(SignalCTS | SignalDTR | SignalLOOP)
	if !signals.CTS || !signals.DTR || !signals.LOOP {
		t.Errorf("expected CTS, DTR and LOOP set, got %+v", signals)
	}
	if signals.DSR || signals.RI || signals.DCD || signals.RTS {
		t.Errorf("unexpected signals set: %+v", signals)
	}
}
