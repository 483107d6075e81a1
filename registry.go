package nullmodem

import "sync"

// DefaultPortCount is the number of endpoints (four pairs) a registry
// provides unless configured otherwise, matching the reference device count.
const DefaultPortCount = 8

// PartnerIndex returns the index of the endpoint wired to index. Endpoints
// are partitioned into fixed pairs {2k, 2k+1}, so the partner is always the
// adjacent index.
func PartnerIndex(index int) int {
	return index ^ 1
}

// Registry owns the process-wide arena of endpoint records. Records are
// created lazily on first open and persist until Shutdown.
type Registry struct {
	mu        sync.Mutex
	closed    bool
	endpoints []*endpoint
}

// RegistryOption configures a Registry
type RegistryOption func(*int) error

// WithPortCount sets the number of endpoints in the registry. The count
// must be positive and even so every endpoint has a partner.
func WithPortCount(n int) RegistryOption {
	return func(count *int) error {
		if n <= 0 || n%2 != 0 {
			return ErrInvalidPortCount
		}
		*count = n
		return nil
	}
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	count := DefaultPortCount
	for _, opt := range opts {
		if err := opt(&count); err != nil {
			return nil, err
		}
	}
	return &Registry{endpoints: make([]*endpoint, count)}, nil
}

// PortCount returns the number of endpoint indices in the registry
func (r *Registry) PortCount() int {
	return len(r.endpoints)
}

// PairCount returns the number of null-modem pairs in the registry
func (r *Registry) PairCount() int {
	return len(r.endpoints) / 2
}

// Indices returns all valid endpoint indices in order
func (r *Registry) Indices() []int {
	indices := make([]int, len(r.endpoints))
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// lookup returns the endpoint record for index plus a peek at its partner,
// creating the endpoint record on first use. Creation is idempotent under
// the registry lock: concurrent first opens observe the same record.
func (r *Registry) lookup(index int) (*endpoint, *endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, nil, ErrRegistryClosed
	}
	if index < 0 || index >= len(r.endpoints) {
		return nil, nil, ErrInvalidIndex
	}
	if r.endpoints[index] == nil {
		r.endpoints[index] = newEndpoint(index)
	}
	return r.endpoints[index], r.endpoints[PartnerIndex(index)], nil
}

// peer peeks at the partner record of index without creating anything
func (r *Registry) peer(index int) *endpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endpoints[PartnerIndex(index)]
}

// Open opens the endpoint at index and returns a handle to it. The record
// is created on first open and reused afterwards.
//
// On the transition from zero to one reference the endpoint's status
// register is seeded from an active partner's control register, so a
// late-joining side immediately observes the line states the early side
// already asserted. The seed itself is silent (no transition counts); the
// reverse direction is a real event for the partner and is counted there.
func (r *Registry) Open(index int, opts ...Option) (Port, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}

	e, peer, err := r.lookup(index)
	if err != nil {
		return nil, err
	}

	lockPair(e, peer)
	defer unlockPair(e, peer)

	if !e.activeLocked() {
		// First open of this session: derive status from the partner's
		// current control register, or drop to all-clear when nothing is
		// connected yet.
		if peer != nil && peer.activeLocked() {
			e.status = statusFromControl(peer.control)
			// Cabling is static: control bits this endpoint still asserts
			// from an earlier session become visible to the partner now.
			if e.control&ControlSignals != 0 {
				peer.applyStatusLocked(statusFromControl(e.control))
			}
		} else {
			e.status = 0
		}
	}
	e.openCount++
	e.config = config

	if config.InitialRTS != nil {
		propagateControlLocked(e, peer, maskIf(*config.InitialRTS, SignalRTS), maskIf(!*config.InitialRTS, SignalRTS))
	}
	if config.InitialDTR != nil {
		propagateControlLocked(e, peer, maskIf(*config.InitialDTR, SignalDTR), maskIf(!*config.InitialDTR, SignalDTR))
	}

	return &port{reg: r, ep: e}, nil
}

// maskIf returns mask when cond holds, zero otherwise
func maskIf(cond bool, mask SignalMask) SignalMask {
	if cond {
		return mask
	}
	return 0
}

// propagateControlLocked is the signal propagator: it updates e's control
// register from set/clear and rewires the resulting status bits into an
// active partner, counting each flipped bit there and waking its waiters.
// When the partner is absent or inactive the control change is recorded
// locally only. Both locks (where the partner record exists) are held by
// the caller.
func propagateControlLocked(e, peer *endpoint, set, clear SignalMask) {
	control := e.control
	var partnerStatus SignalMask
	wired := peer != nil && peer.activeLocked()
	if wired {
		partnerStatus = peer.status
	}

	if set&SignalRTS != 0 {
		control |= SignalRTS
		partnerStatus |= SignalCTS
	}
	if set&SignalDTR != 0 {
		control |= SignalDTR
		partnerStatus |= SignalDSR | SignalDCD
	}
	if set&SignalLOOP != 0 {
		control |= SignalLOOP
	}
	if clear&SignalRTS != 0 {
		control &^= SignalRTS
		partnerStatus &^= SignalCTS
	}
	if clear&SignalDTR != 0 {
		control &^= SignalDTR
		partnerStatus &^= SignalDSR | SignalDCD
	}
	if clear&SignalLOOP != 0 {
		control &^= SignalLOOP
	}

	e.control = control
	if wired {
		peer.applyStatusLocked(partnerStatus)
	}
}

// Shutdown force-closes every endpoint, waking all blocked readers and
// signal waiters, and prevents further opens. Registers and counters stay
// readable through the registry's own records but every handle operation
// reports ErrNotOpen afterwards.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for _, e := range r.endpoints {
		if e == nil {
			continue
		}
		e.mu.Lock()
		e.forceCloseLocked()
		e.mu.Unlock()
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry with DefaultPortCount endpoints
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry, _ = NewRegistry()
	})
	return defaultRegistry
}

// Open opens an endpoint in the default registry
func Open(index int, opts ...Option) (Port, error) {
	return Default().Open(index, opts...)
}
