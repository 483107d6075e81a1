package nullmodem

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func openPair(t *testing.T) (Port, Port) {
	t.Helper()
	reg, err := NewRegistry(WithPortCount(2))
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	a, err := reg.Open(0)
	if err != nil {
		t.Fatalf("Open(0) failed: %v", err)
	}
	b, err := reg.Open(1)
	if err != nil {
		t.Fatalf("Open(1) failed: %v", err)
	}
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b
}

// TestWriteForwardsToPartner verifies the data path: bytes written on one
// side are readable on the other in original order
func TestWriteForwardsToPartner(t *testing.T) {
	a, b := openPair(t)

	payload := []byte("the quick brown fox")
	n, err := a.Write(payload)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(payload) {
		t.Errorf("Write accepted %d bytes, want %d", n, len(payload))
	}

	buf := make([]byte, 64)
	got := make([]byte, 0, len(payload))
	for len(got) < len(payload) {
		n, err := b.Read(buf)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		got = append(got, buf[:n]...)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Read returned %q, want %q", got, payload)
	}

	aCounts, _ := a.TransitionCounts()
	bCounts, _ := b.TransitionCounts()
	if aCounts.TX != uint32(len(payload)) {
		t.Errorf("sender TX = %d, want %d", aCounts.TX, len(payload))
	}
	if bCounts.RX != uint32(len(payload)) {
		t.Errorf("receiver RX = %d, want %d", bCounts.RX, len(payload))
	}
}

// TestWriteToInactivePartner verifies the "cable still conducts" rule:
// bytes are accepted and counted on the sender but silently discarded
func TestWriteToInactivePartner(t *testing.T) {
	reg, _ := NewRegistry(WithPortCount(2))
	a, _ := reg.Open(0)
	defer a.Close()

	payload := []byte("nobody listening")
	n, err := a.Write(payload)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(payload) {
		t.Errorf("Write accepted %d bytes, want %d", n, len(payload))
	}

	counts, _ := a.TransitionCounts()
	if counts.TX != uint32(len(payload)) {
		t.Errorf("sender TX = %d, want %d", counts.TX, len(payload))
	}

	// Nothing was queued: a late-opening partner reads nothing
	b, _ := reg.Open(1)
	defer b.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	buf := make([]byte, 16)
	if n, err := b.ReadContext(ctx, buf); err == nil {
		t.Errorf("expected no queued data, read %d bytes", n)
	}
	bCounts, _ := b.TransitionCounts()
	if bCounts.RX != 0 {
		t.Errorf("receiver RX = %d, want 0", bCounts.RX)
	}
}

func TestWriteNotOpen(t *testing.T) {
	reg, _ := NewRegistry(WithPortCount(2))
	a, _ := reg.Open(0)
	a.Close()

	if _, err := a.Write([]byte("x")); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Write on closed handle = %v, want ErrPortClosed", err)
	}
}

func TestWriteRoom(t *testing.T) {
	a, _ := openPair(t)

	room, err := a.WriteRoom()
	if err != nil {
		t.Fatalf("WriteRoom failed: %v", err)
	}
	if room != 255 {
		t.Errorf("WriteRoom = %d, want 255", room)
	}

	a.Close()
	if _, err := a.WriteRoom(); !errors.Is(err, ErrPortClosed) {
		t.Errorf("WriteRoom on closed handle = %v, want ErrPortClosed", err)
	}
}

// TestReadBlocksUntilWrite verifies the blocking read path wakes on
// forwarded data
func TestReadBlocksUntilWrite(t *testing.T) {
	a, b := openPair(t)

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		buf := make([]byte, 16)
		n, err := b.Read(buf)
		done <- result{data: buf[:n], err: err}
	}()

	time.Sleep(50 * time.Millisecond)
	if _, err := a.Write([]byte("ping")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("Read failed: %v", r.err)
		}
		if !bytes.Equal(r.data, []byte("ping")) {
			t.Errorf("Read returned %q, want %q", r.data, "ping")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Read did not wake on forwarded data")
	}
}

func TestReadContextCancel(t *testing.T) {
	_, b := openPair(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		buf := make([]byte, 16)
		_, err := b.ReadContext(ctx, buf)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("ReadContext = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ReadContext did not observe cancellation")
	}
}

// TestReadWokenByClose verifies blocked readers are released when the
// endpoint loses its last reference
func TestReadWokenByClose(t *testing.T) {
	reg, _ := NewRegistry(WithPortCount(2))
	b, _ := reg.Open(1)

	done := make(chan error, 1)
	go func() {
		buf := make([]byte, 16)
		_, err := b.Read(buf)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	b.Close()

	select {
	case err := <-done:
		if !errors.Is(err, ErrNotOpen) {
			t.Errorf("Read after close = %v, want ErrNotOpen", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Read did not wake on close")
	}
}

func TestGetSetModemSignals(t *testing.T) {
	a, b := openPair(t)

	if err := a.SetRTS(true); err != nil {
		t.Fatalf("SetRTS failed: %v", err)
	}
	if err := a.SetDTR(true); err != nil {
		t.Fatalf("SetDTR failed: %v", err)
	}

	aSignals, _ := a.GetModemSignals()
	if !aSignals.RTS || !aSignals.DTR {
		t.Errorf("control register not reported: %+v", aSignals)
	}

	bSignals, _ := b.GetModemSignals()
	if !bSignals.CTS || !bSignals.DSR || !bSignals.DCD {
		t.Errorf("wiring rule not applied: %+v", bSignals)
	}
	if bSignals.RTS || bSignals.DTR {
		t.Errorf("partner's control bits leaked into %+v", bSignals)
	}

	rts, _ := a.GetRTS()
	dtr, _ := a.GetDTR()
	if !rts || !dtr {
		t.Errorf("GetRTS/GetDTR = %v/%v, want true/true", rts, dtr)
	}

	// Clearing propagates too
	if err := a.SetModemSignals(0, SignalRTS|SignalDTR); err != nil {
		t.Fatalf("SetModemSignals failed: %v", err)
	}
	bSignals, _ = b.GetModemSignals()
	if bSignals.CTS || bSignals.DSR || bSignals.DCD {
		t.Errorf("cleared control bits still asserted on partner: %+v", bSignals)
	}
}

// TestLoopStaysLocal verifies LOOP is recorded but never crosses the wire
func TestLoopStaysLocal(t *testing.T) {
	a, b := openPair(t)

	if err := a.SetModemSignals(SignalLOOP, 0); err != nil {
		t.Fatalf("SetModemSignals failed: %v", err)
	}
	aSignals, _ := a.GetModemSignals()
	if !aSignals.LOOP {
		t.Errorf("LOOP not recorded locally: %+v", aSignals)
	}
	bSignals, _ := b.GetModemSignals()
	if bSignals != (ModemSignals{}) {
		t.Errorf("LOOP affected the partner: %+v", bSignals)
	}
	bCounts, _ := b.TransitionCounts()
	if bCounts != (TransitionCounts{}) {
		t.Errorf("LOOP counted a transition on the partner: %+v", bCounts)
	}
}

func TestStatusRegisterNotSelfWritable(t *testing.T) {
	a, b := openPair(t)

	// Status bits passed to set/clear must be ignored
	if err := a.SetModemSignals(SignalCTS|SignalDSR|SignalRI|SignalDCD, 0); err != nil {
		t.Fatalf("SetModemSignals failed: %v", err)
	}
	aSignals, _ := a.GetModemSignals()
	if aSignals.CTS || aSignals.DSR || aSignals.RI || aSignals.DCD {
		t.Errorf("status register was self-written: %+v", aSignals)
	}
	bSignals, _ := b.GetModemSignals()
	if bSignals != (ModemSignals{}) {
		t.Errorf("ignored bits propagated: %+v", bSignals)
	}
}

func TestConfigSnapshot(t *testing.T) {
	a, _ := openPair(t)

	config, err := a.Config()
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if config.BaudRate != 38400 || config.DataBits != 8 || config.StopBits != 1 || config.Parity != ParityNone {
		t.Errorf("unexpected default config: %+v", config)
	}

	if err := a.ApplyConfig(WithBaudRate(115200), WithParity(ParityEven), WithStopBits(2)); err != nil {
		t.Fatalf("ApplyConfig failed: %v", err)
	}
	config, _ = a.Config()
	if config.BaudRate != 115200 || config.Parity != ParityEven || config.StopBits != 2 {
		t.Errorf("ApplyConfig not recorded: %+v", config)
	}

	if err := a.ApplyConfig(WithBaudRate(4321)); !errors.Is(err, ErrInvalidBaudRate) {
		t.Errorf("ApplyConfig with bad baud = %v, want ErrInvalidBaudRate", err)
	}
	// Failed apply leaves the snapshot untouched
	config, _ = a.Config()
	if config.BaudRate != 115200 {
		t.Errorf("failed ApplyConfig mutated snapshot: %+v", config)
	}
}

func TestErrorCountersStayZero(t *testing.T) {
	a, b := openPair(t)

	a.SetRTS(true)
	a.Write([]byte("data"))
	buf := make([]byte, 4)
	b.Read(buf)

	counts, _ := b.TransitionCounts()
	if counts.FrameErrors != 0 || counts.Overruns != 0 || counts.ParityErrors != 0 ||
		counts.Breaks != 0 || counts.BufOverruns != 0 {
		t.Errorf("error counters moved on a virtual wire: %+v", counts)
	}
}
