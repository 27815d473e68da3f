// Package reservation implements the capacity reservation engine: a
// per-node ledger of memory/disk/CPU capacity, a two-phase
// reserve/claim/release lifecycle, and a TTL-driven expiry sweeper.
package reservation

import "time"

// Status is the closed set a CapacityReservation moves through. It leaves
// Pending exactly once, to Claimed, Released or Expired; a Claimed
// reservation can still move to Released. Released and Expired are
// terminal.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusClaimed  Status = "Claimed"
	StatusReleased Status = "Released"
	StatusExpired  Status = "Expired"
)

// Dimensions is the three capacity axes the engine tracks together.
type Dimensions struct {
	MemoryMB      int
	DiskMB        int
	CPUMillicores int
}

// Add returns the element-wise sum of d and o.
func (d Dimensions) Add(o Dimensions) Dimensions {
	return Dimensions{
		MemoryMB:      d.MemoryMB + o.MemoryMB,
		DiskMB:        d.DiskMB + o.DiskMB,
		CPUMillicores: d.CPUMillicores + o.CPUMillicores,
	}
}

// Sub returns the element-wise difference d - o.
func (d Dimensions) Sub(o Dimensions) Dimensions {
	return Dimensions{
		MemoryMB:      d.MemoryMB - o.MemoryMB,
		DiskMB:        d.DiskMB - o.DiskMB,
		CPUMillicores: d.CPUMillicores - o.CPUMillicores,
	}
}

// GreaterOrEqual reports whether every axis of d is >= the matching axis
// of o.
func (d Dimensions) GreaterOrEqual(o Dimensions) bool {
	return d.MemoryMB >= o.MemoryMB && d.DiskMB >= o.DiskMB && d.CPUMillicores >= o.CPUMillicores
}

// NodeCapacity is the configured total for one node. Available capacity
// is computed on demand as capacity - claimedInFlight - sum(active
// reservations), never stored directly, so it can never drift out of
// sync with the ledger it's derived from.
type NodeCapacity struct {
	NodeID string
	Total  Dimensions
}

// CapacityReservation is one hold against a node's capacity.
type CapacityReservation struct {
	Token           string
	NodeID          string
	Dimensions      Dimensions
	RequestedBy     string
	CorrelationID   string
	Status          Status
	CreatedAt       time.Time
	ExpiresAt       time.Time
	ClaimedAt       *time.Time
	ReleasedAt      *time.Time
	ExpiredAt       *time.Time
	ClaimedServerID string
}
