// Package apperr provides the error taxonomy shared by every component of
// the supervision core: a numeric CodeError classification (similar in
// spirit to HTTP status codes), automatic call-site capture, and
// parent/child error hierarchies compatible with errors.Is and errors.As.
package apperr

// CodeError is a numeric error classification. Each package of the core
// owns a contiguous range so that a bare code unambiguously identifies
// both the failing component and the failure kind.
type CodeError uint16

const (
	// UnknownError is the zero value: no specific code was attached.
	UnknownError CodeError = 0
)

// Package code ranges, mirroring the base-per-package convention used
// throughout the core's ambient error stack.
const (
	MinPkgFrame       CodeError = 100
	MinPkgProtocol    CodeError = 200
	MinPkgConfig      CodeError = 300
	MinPkgProcess     CodeError = 400
	MinPkgIsolation   CodeError = 500
	MinPkgLifecycle   CodeError = 600
	MinPkgReservation CodeError = 700
	MinPkgSupervisor  CodeError = 800
)

// Frame errors: wire-framing and transport I/O failures.
const (
	FrameShortRead CodeError = MinPkgFrame + iota
	FrameOversize
	FrameZeroLength
	FrameWriteTimeout
	FrameClosed
)

// Protocol errors: decoding and dispatching control messages.
const (
	ProtocolMalformedJSON CodeError = MinPkgProtocol + iota
	ProtocolMissingType
	ProtocolUnknownType
	ProtocolStdinNotRedirected
)

// Config errors: loading and validating a ServerConfig file.
const (
	ConfigReadFailed CodeError = MinPkgConfig + iota
	ConfigTooLarge
	ConfigNestingTooDeep
	ConfigDecodeFailed
	ConfigInvalid
)

// Process errors: spawning and running the child process.
const (
	ProcessSpawnFailed CodeError = MinPkgProcess + iota
	ProcessAlreadyStarted
	ProcessNotStarted
	ProcessArgvInvalid
	ProcessExitUnknown
)

// Isolation errors: creating and assigning the OS resource group.
const (
	IsolationCreateFailed CodeError = MinPkgIsolation + iota
	IsolationAssignFailed
	IsolationLimitRejected
	IsolationDisposed
)

// Lifecycle errors: state-machine transitions and stop/restart timing.
const (
	LifecycleInvalidTransition CodeError = MinPkgLifecycle + iota
	LifecycleDisposed
	LifecycleStopTimeout
)

// Reservation errors: the capacity allocator's reserve/claim/release paths.
const (
	ReservationInsufficientCapacity CodeError = MinPkgReservation + iota
	ReservationInvalidTTL
	ReservationNodeNotAccepting
	ReservationNotFound
	ReservationNotPending
	ReservationExpired
	ReservationAlreadyTerminal
)

// Supervisor errors: command-line parsing and startup.
const (
	SupervisorBadArguments CodeError = MinPkgSupervisor + iota
	SupervisorConnectTimeout
)

// Uint16 returns the raw numeric value of the code.
func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

// Int returns the raw numeric value of the code as an int.
func (c CodeError) Int() int {
	return int(c)
}
