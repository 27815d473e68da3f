// Package protocol implements the JSON control-message taxonomy exchanged
// over the frame layer: a tagged union keyed on the "type" field,
// dispatched strictly sequentially by a single reader task.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/SandboxServers/MeridianConsole-sub006/internal/apperr"
)

// Type identifies the variant of a Message on the wire.
type Type string

const (
	TypeCommand   Type = "command"
	TypeInput     Type = "input"
	TypeHeartbeat Type = "heartbeat"
	TypeShutdown  Type = "shutdown"
	TypeStatus    Type = "status"
	TypeOutput    Type = "output"
	TypeAck       Type = "ack"
)

// CommandKind enumerates the imperative commands the parent may send.
type CommandKind string

const (
	CommandGetStatus CommandKind = "GetStatus"
	CommandStop      CommandKind = "Stop"
	CommandKill      CommandKind = "Kill"
)

// CommandMessage is sent parent -> supervisor to request an action.
type CommandMessage struct {
	Type           string      `json:"type"`
	Command        CommandKind `json:"command"`
	CorrelationID  string      `json:"correlationId,omitempty"`
	TimeoutSeconds *int        `json:"timeoutSeconds,omitempty"`
}

// InputMessage carries a line to forward to the child's stdin.
type InputMessage struct {
	Type  string `json:"type"`
	Input string `json:"input"`
}

// HeartbeatMessage is sent parent -> supervisor; the supervisor echoes it.
type HeartbeatMessage struct {
	Type     string `json:"type"`
	Sequence int64  `json:"sequence"`
}

// ShutdownMessage requests a graceful-then-forced stop of the host
// process itself.
type ShutdownMessage struct {
	Type                   string `json:"type"`
	GracefulTimeoutSeconds *int   `json:"gracefulTimeoutSeconds,omitempty"`
	Reason                 string `json:"reason,omitempty"`
}

// StatusMessage is emitted supervisor -> parent on every lifecycle
// transition and in reply to GetStatus.
type StatusMessage struct {
	Type      string    `json:"type"`
	State     string    `json:"state"`
	OsPid     *int      `json:"osPid,omitempty"`
	ExitCode  *int      `json:"exitCode,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OutputMessage carries one captured line of child stdout/stderr.
type OutputMessage struct {
	Type      string    `json:"type"`
	Data      string    `json:"data"`
	IsError   bool      `json:"isError"`
	Timestamp time.Time `json:"timestamp"`
}

// AckMessage replies to a correlated CommandMessage.
type AckMessage struct {
	Type           string    `json:"type"`
	AcknowledgedID string    `json:"acknowledgedId"`
	Success        bool      `json:"success"`
	ErrorMessage   string    `json:"errorMessage,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// HeartbeatAck is the supervisor's echo of a HeartbeatMessage.
type HeartbeatAck struct {
	Type      string    `json:"type"`
	Sequence  int64     `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	ServerID  string    `json:"serverId"`
}

// MaxLineBytes bounds a single captured output line before truncation;
// anything longer is cut and given the literal suffix "... [TRUNCATED]".
const MaxLineBytes = 64 * 1024

const truncatedSuffix = "... [TRUNCATED]"

// TruncateLine applies the output-line truncation rule.
func TruncateLine(line string) string {
	if len(line) <= MaxLineBytes {
		return line
	}
	cut := MaxLineBytes - len(truncatedSuffix)
	if cut < 0 {
		cut = 0
	}
	return line[:cut] + truncatedSuffix
}

type envelope struct {
	Type string `json:"type"`
}

// Decode parses one frame payload into its concrete message type. A
// malformed-JSON or missing-type payload is reported as a
// apperr.ProtocolMalformedJSON / apperr.ProtocolMissingType error and MUST
// be treated as per-frame-recoverable by the caller: log and continue
// reading, never tear down the connection. An unrecognized type is
// apperr.ProtocolUnknownType, also per-frame-recoverable.
func Decode(payload []byte) (interface{}, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, apperr.Wrap(apperr.ProtocolMalformedJSON, "decoding frame envelope", err)
	}
	if env.Type == "" {
		return nil, apperr.New(apperr.ProtocolMissingType, "frame is missing a type field")
	}

	switch Type(env.Type) {
	case TypeCommand:
		var m CommandMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, apperr.Wrap(apperr.ProtocolMalformedJSON, "decoding command message", err)
		}
		return &m, nil
	case TypeInput:
		var m InputMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, apperr.Wrap(apperr.ProtocolMalformedJSON, "decoding input message", err)
		}
		return &m, nil
	case TypeHeartbeat:
		var m HeartbeatMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, apperr.Wrap(apperr.ProtocolMalformedJSON, "decoding heartbeat message", err)
		}
		return &m, nil
	case TypeShutdown:
		var m ShutdownMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, apperr.Wrap(apperr.ProtocolMalformedJSON, "decoding shutdown message", err)
		}
		return &m, nil
	default:
		return nil, apperr.New(apperr.ProtocolUnknownType, "unknown message type: "+env.Type)
	}
}

// Encode marshals an outbound message. Callers pass one of StatusMessage,
// OutputMessage, AckMessage or HeartbeatAck with its Type field already
// set (see the New* constructors below).
func Encode(msg interface{}) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, apperr.Wrap(apperr.ProtocolMalformedJSON, "encoding outbound message", err)
	}
	return b, nil
}

// NewStatus builds a StatusMessage with its Type and Timestamp populated.
func NewStatus(state string, osPid, exitCode *int, message string, now time.Time) *StatusMessage {
	return &StatusMessage{
		Type:      string(TypeStatus),
		State:     state,
		OsPid:     osPid,
		ExitCode:  exitCode,
		Message:   message,
		Timestamp: now,
	}
}

// NewOutput builds an OutputMessage, applying the output-line truncation rule.
func NewOutput(data string, isError bool, now time.Time) *OutputMessage {
	return &OutputMessage{
		Type:      string(TypeOutput),
		Data:      TruncateLine(data),
		IsError:   isError,
		Timestamp: now,
	}
}

// NewAck builds an AckMessage replying to acknowledgedID.
func NewAck(acknowledgedID string, success bool, errMsg string, now time.Time) *AckMessage {
	return &AckMessage{
		Type:           string(TypeAck),
		AcknowledgedID: acknowledgedID,
		Success:        success,
		ErrorMessage:   errMsg,
		Timestamp:      now,
	}
}

// NewHeartbeatAck builds the supervisor's echo of a heartbeat.
func NewHeartbeatAck(sequence int64, serverID string, now time.Time) *HeartbeatAck {
	return &HeartbeatAck{
		Type:      string(TypeHeartbeat),
		Sequence:  sequence,
		Timestamp: now,
		ServerID:  serverID,
	}
}
