package reservation

import "time"

// Event is the common shape every emitted lifecycle event satisfies:
// token, nodeId, dimensions, and a timestamp.
type Event interface {
	eventToken() string
}

// CapacityReserved is published when Reserve succeeds.
type CapacityReserved struct {
	Token      string
	NodeID     string
	Dimensions Dimensions
	Timestamp  time.Time
}

func (e CapacityReserved) eventToken() string { return e.Token }

// CapacityClaimed is published when Claim succeeds.
type CapacityClaimed struct {
	Token      string
	NodeID     string
	Dimensions Dimensions
	ServerID   string
	Timestamp  time.Time
}

func (e CapacityClaimed) eventToken() string { return e.Token }

// CapacityReleased is published when Release succeeds, from either
// Pending or Claimed.
type CapacityReleased struct {
	Token      string
	NodeID     string
	Dimensions Dimensions
	Reason     string
	Timestamp  time.Time
}

func (e CapacityReleased) eventToken() string { return e.Token }

// CapacityReservationExpired is published for every reservation whose
// expiresAt passed without a claim, by ExpireStale or by a Claim attempt
// that finds it expired.
type CapacityReservationExpired struct {
	Token      string
	NodeID     string
	Dimensions Dimensions
	Timestamp  time.Time
}

func (e CapacityReservationExpired) eventToken() string { return e.Token }

// Publisher receives events as the engine produces them. Publish MUST
// NOT block the caller for long; the engine calls it after its critical
// section has already been released, so no operation holds a lock
// across this call.
type Publisher interface {
	Publish(evt Event)
}

// PublisherFunc adapts a plain function to the Publisher interface.
type PublisherFunc func(Event)

// Publish calls f(evt).
func (f PublisherFunc) Publish(evt Event) { f(evt) }

// DiscardPublisher drops every event; used as the default when an Engine
// is constructed without an explicit Publisher.
func DiscardPublisher() Publisher { return PublisherFunc(func(Event) {}) }
