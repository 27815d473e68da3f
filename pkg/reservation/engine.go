package reservation

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SandboxServers/MeridianConsole-sub006/internal/apperr"
	"github.com/SandboxServers/MeridianConsole-sub006/internal/applog"
)

// DefaultTTL is the reservation lifetime Reserve applies when ttl is
// zero or negative, i.e. the caller's request omitted one.
const DefaultTTL = 15 * time.Minute

// MaxTTL is the hard upper bound Reserve enforces on any requested TTL.
const MaxTTL = 24 * time.Hour

// nodeLedger is the per-node capacity ledger: the capacity total,
// everything currently claimed, and every reservation (of any status)
// this node has ever produced that the engine still needs to index for
// token lookups. Every field is guarded by mu; operations on two
// different nodes never contend for the same lock, giving per-node
// isolation.
type nodeLedger struct {
	mu              sync.Mutex
	capacity        Dimensions
	claimedInFlight Dimensions
	reservations    map[string]*CapacityReservation
}

func (nl *nodeLedger) activeSum() Dimensions {
	var sum Dimensions
	for _, r := range nl.reservations {
		if r.Status == StatusPending {
			sum = sum.Add(r.Dimensions)
		}
	}
	return sum
}

func (nl *nodeLedger) available() Dimensions {
	return nl.capacity.Sub(nl.claimedInFlight).Sub(nl.activeSum())
}

// Engine is the concurrent-safe per-node capacity allocator.
type Engine struct {
	publisher Publisher
	log       applog.Logger
	now       func() time.Time

	mu         sync.Mutex // guards nodes and tokenIndex only; never held during a node's critical section
	nodes      map[string]*nodeLedger
	tokenIndex map[string]string // token -> nodeId
}

// NewEngine builds an empty Engine. publisher and log may both be nil.
func NewEngine(publisher Publisher, log applog.Logger) *Engine {
	if publisher == nil {
		publisher = DiscardPublisher()
	}
	if log == nil {
		log = applog.Discard()
	}
	return &Engine{
		publisher:  publisher,
		log:        log,
		now:        time.Now,
		nodes:      make(map[string]*nodeLedger),
		tokenIndex: make(map[string]string),
	}
}

// RegisterNode declares a node's total capacity, making it eligible to
// accept reservations. Re-registering an existing node updates its total
// without disturbing any reservation already held against it.
func (e *Engine) RegisterNode(nodeID string, total Dimensions) {
	e.mu.Lock()
	nl, ok := e.nodes[nodeID]
	if !ok {
		nl = &nodeLedger{reservations: make(map[string]*CapacityReservation)}
		e.nodes[nodeID] = nl
	}
	e.mu.Unlock()

	nl.mu.Lock()
	nl.capacity = total
	nl.mu.Unlock()
}

func (e *Engine) ledgerFor(nodeID string) (*nodeLedger, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	nl, ok := e.nodes[nodeID]
	return nl, ok
}

// Reserve grants a time-bounded hold on nodeID's capacity. A zero or
// negative ttl means the caller omitted one and is treated as
// DefaultTTL; anything else must fall within (0, MaxTTL].
func (e *Engine) Reserve(nodeID string, dims Dimensions, requestedBy string, ttl time.Duration, correlationID string) (*CapacityReservation, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if ttl > MaxTTL {
		return nil, apperr.New(apperr.ReservationInvalidTTL, "ttl must not exceed 24h")
	}

	nl, ok := e.ledgerFor(nodeID)
	if !ok {
		return nil, apperr.New(apperr.ReservationNodeNotAccepting, "node is not registered with the engine")
	}

	nl.mu.Lock()
	if !nl.available().GreaterOrEqual(dims) {
		nl.mu.Unlock()
		return nil, apperr.New(apperr.ReservationInsufficientCapacity, "insufficient available capacity on node "+nodeID)
	}

	now := e.now()
	res := &CapacityReservation{
		Token:         uuid.NewString(),
		NodeID:        nodeID,
		Dimensions:    dims,
		RequestedBy:   requestedBy,
		CorrelationID: correlationID,
		Status:        StatusPending,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}
	nl.reservations[res.Token] = res
	nl.mu.Unlock()

	e.mu.Lock()
	e.tokenIndex[res.Token] = nodeID
	e.mu.Unlock()

	e.publisher.Publish(CapacityReserved{Token: res.Token, NodeID: nodeID, Dimensions: dims, Timestamp: now})

	out := *res
	return &out, nil
}

// Claim binds a Pending, unexpired reservation to serverID, moving its
// capacity into claimedInFlight.
func (e *Engine) Claim(token, serverID string) (*CapacityReservation, error) {
	nodeID, nl, res, err := e.lookup(token)
	if err != nil {
		return nil, err
	}

	nl.mu.Lock()
	now := e.now()

	if res.Status != StatusPending {
		nl.mu.Unlock()
		return nil, apperr.New(apperr.ReservationNotPending, "reservation is not pending")
	}
	if !res.ExpiresAt.After(now) {
		e.expireLocked(nl, res, now)
		nl.mu.Unlock()
		e.publisher.Publish(CapacityReservationExpired{Token: token, NodeID: nodeID, Dimensions: res.Dimensions, Timestamp: now})
		return nil, apperr.New(apperr.ReservationExpired, "reservation expired before being claimed")
	}

	nl.claimedInFlight = nl.claimedInFlight.Add(res.Dimensions)
	res.Status = StatusClaimed
	res.ClaimedAt = &now
	res.ClaimedServerID = serverID
	out := *res
	nl.mu.Unlock()

	e.publisher.Publish(CapacityClaimed{Token: token, NodeID: nodeID, Dimensions: res.Dimensions, ServerID: serverID, Timestamp: now})
	return &out, nil
}

// Release frees a reservation's capacity from either Pending or Claimed.
// Already-terminal reservations report AlreadyTerminal rather than a
// silent no-op.
func (e *Engine) Release(token, reason string) error {
	nodeID, nl, res, err := e.lookup(token)
	if err != nil {
		return err
	}

	nl.mu.Lock()
	now := e.now()

	switch res.Status {
	case StatusPending:
		res.Status = StatusReleased
		res.ReleasedAt = &now
	case StatusClaimed:
		nl.claimedInFlight = nl.claimedInFlight.Sub(res.Dimensions)
		res.Status = StatusReleased
		res.ReleasedAt = &now
	default:
		nl.mu.Unlock()
		return apperr.New(apperr.ReservationAlreadyTerminal, "reservation is already in a terminal state")
	}
	dims := res.Dimensions
	nl.mu.Unlock()

	e.publisher.Publish(CapacityReleased{Token: token, NodeID: nodeID, Dimensions: dims, Reason: reason, Timestamp: now})
	return nil
}

// GetAvailable returns capacity minus claimed minus active Pending
// reservations for nodeID.
func (e *Engine) GetAvailable(nodeID string) (Dimensions, error) {
	nl, ok := e.ledgerFor(nodeID)
	if !ok {
		return Dimensions{}, apperr.New(apperr.ReservationNodeNotAccepting, "node is not registered with the engine")
	}
	nl.mu.Lock()
	defer nl.mu.Unlock()
	return nl.available(), nil
}

// ListActive returns every Pending or Claimed reservation on nodeID, in
// no particular order.
func (e *Engine) ListActive(nodeID string) ([]CapacityReservation, error) {
	nl, ok := e.ledgerFor(nodeID)
	if !ok {
		return nil, apperr.New(apperr.ReservationNodeNotAccepting, "node is not registered with the engine")
	}

	nl.mu.Lock()
	defer nl.mu.Unlock()

	out := make([]CapacityReservation, 0, len(nl.reservations))
	for _, r := range nl.reservations {
		if r.Status == StatusPending || r.Status == StatusClaimed {
			out = append(out, *r)
		}
	}
	return out, nil
}

// ExpireStale transitions every Pending reservation across every node
// whose expiresAt has passed to Expired, freeing its capacity. It is
// invoked periodically by a Sweeper and is idempotent.
func (e *Engine) ExpireStale() {
	e.mu.Lock()
	ledgers := make(map[string]*nodeLedger, len(e.nodes))
	for id, nl := range e.nodes {
		ledgers[id] = nl
	}
	e.mu.Unlock()

	now := e.now()
	for nodeID, nl := range ledgers {
		var expired []CapacityReservation

		nl.mu.Lock()
		for _, r := range nl.reservations {
			if r.Status == StatusPending && !r.ExpiresAt.After(now) {
				e.expireLocked(nl, r, now)
				expired = append(expired, *r)
			}
		}
		nl.mu.Unlock()

		for _, r := range expired {
			e.publisher.Publish(CapacityReservationExpired{Token: r.Token, NodeID: nodeID, Dimensions: r.Dimensions, Timestamp: now})
		}
	}
}

// expireLocked transitions res to Expired. Caller must hold nl.mu. Active
// capacity is freed implicitly: activeSum only counts Pending
// reservations, so flipping the status is the entire release.
func (e *Engine) expireLocked(nl *nodeLedger, res *CapacityReservation, now time.Time) {
	res.Status = StatusExpired
	res.ExpiredAt = &now
}

func (e *Engine) lookup(token string) (nodeID string, nl *nodeLedger, res *CapacityReservation, err error) {
	e.mu.Lock()
	nodeID, ok := e.tokenIndex[token]
	e.mu.Unlock()
	if !ok {
		return "", nil, nil, apperr.New(apperr.ReservationNotFound, "no reservation with that token")
	}

	nl, ok = e.ledgerFor(nodeID)
	if !ok {
		return "", nil, nil, apperr.New(apperr.ReservationNotFound, "no reservation with that token")
	}

	nl.mu.Lock()
	res, ok = nl.reservations[token]
	nl.mu.Unlock()
	if !ok {
		return "", nil, nil, apperr.New(apperr.ReservationNotFound, "no reservation with that token")
	}

	return nodeID, nl, res, nil
}
