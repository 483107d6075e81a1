// Package nullmodem emulates a null-modem cable between two serial
// endpoints entirely in software.
//
// Endpoints live in a Registry and are wired into fixed pairs: endpoint 2k
// is permanently cabled to endpoint 2k+1. Each side behaves like one end of
// a crossed serial link, carrying both data bytes and modem control line
// semantics: asserting RTS on one side raises CTS on the other, asserting
// DTR raises the partner's DSR and DCD, and blocked waiters are woken on
// every line transition.
//
// # Basic Usage
//
// Open both sides of the first pair in the default registry:
//
//	a, err := nullmodem.Open(0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Close()
//
//	b, err := nullmodem.Open(1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//
//	// Bytes written on one side appear on the other
//	a.Write([]byte("hello"))
//	buf := make([]byte, 16)
//	n, _ := b.Read(buf)
//
// # Modem Signals
//
// Control and status lines follow the null-modem wiring rule:
//
//	a.SetRTS(true)            // raises CTS on b
//	a.SetDTR(true)            // raises DSR and DCD on b
//	signals, _ := b.GetModemSignals()
//
// Waits are event-driven and count every edge exactly once:
//
//	signals, changed, err := b.WaitForSignalChange(
//	    nullmodem.SignalCTS|nullmodem.SignalDSR,
//	    5*time.Second,
//	)
//
// # Registries
//
// The package-level Open uses a process-wide registry of eight endpoints
// (four pairs). Dedicated registries with a different pair count are
// available through NewRegistry:
//
//	reg, err := nullmodem.NewRegistry(nullmodem.WithPortCount(2))
//	a, _ := reg.Open(0)
//	b, _ := reg.Open(1)
//
// # Lifecycle
//
// An endpoint record is created the first time its index is opened and
// persists at zero references until Registry.Shutdown, so a partner can
// still observe the last line states a closed side drove. A side that opens
// late is seeded with the line states its partner already asserts.
//
// # Error Handling
//
// The library provides specific error types for robust error handling:
//
//	var (
//	    ErrInvalidIndex  // index outside the registry's range
//	    ErrNotOpen       // operation on an endpoint with zero references
//	    ErrInterrupted   // signal wait cancelled
//	    ErrNoChange      // wait woke with no transitions recorded
//	    ErrSignalTimeout // signal wait timed out
//	    // ... and more
//	)
//
// Use errors.Is() for error type checking:
//
//	if errors.Is(err, nullmodem.ErrNoChange) {
//	    // Port closed underneath the waiter
//	}
//
// # What Is Not Emulated
//
// The wire reports and propagates line states but never throttles: there is
// no baud-rate pacing and no flow-control back-pressure. Configuration
// applied with ApplyConfig is stored for introspection only.
package nullmodem
