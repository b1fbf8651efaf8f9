package gateway

import (
	"errors"
	"fmt"

	"github.com/gatewaykit/gateway/closecode"
	"github.com/gatewaykit/gateway/opcode"
)

var (
	// ErrEncodingTooLarge is returned when an outbound payload reaches the
	// 4096 byte transport limit. Failing locally converts a silent server
	// disconnect into a diagnosable error.
	ErrEncodingTooLarge = errors.New("outbound payload is at or above 4096 bytes")

	// ErrInvalidPayload is returned when an outbound payload violates a
	// send precondition, such as a presence activity the gateway rejects.
	ErrInvalidPayload = errors.New("payload can not be sent")

	// ErrLivenessTimeout is returned when a heartbeat interval passes
	// without the previous heartbeat being acknowledged.
	ErrLivenessTimeout = errors.New("heartbeat was not acknowledged since last interval")

	// ErrAbruptTermination is returned when the session host tears the
	// stream down without an orderly close.
	ErrAbruptTermination = errors.New("session terminated abruptly")

	// ErrPreHelloDispatch is returned when a dispatch event arrives before
	// the server hello. The protocol guarantees hello first.
	ErrPreHelloDispatch = errors.New("dispatch event received before hello")
)

type DecodeErrorKind int

const (
	DecodeBadJSON DecodeErrorKind = iota + 1
	DecodeUnknownOp
	DecodeBadDispatch
)

func (k DecodeErrorKind) String() string {
	switch k {
	case DecodeBadJSON:
		return "bad json"
	case DecodeUnknownOp:
		return "unknown op code"
	case DecodeBadDispatch:
		return "bad dispatch payload"
	default:
		return "unknown"
	}
}

// DecodeError is a failure to translate a transport frame into a Payload.
type DecodeError struct {
	Kind DecodeErrorKind
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failed (%s): %s", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// GatewayError describes a close code and/or op code received from the
// server which ended the session.
type GatewayError struct {
	CloseCode closecode.Type
	OpCode    opcode.Op
	Reason    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("[%d | %d]: %s", e.CloseCode, e.OpCode.Val(), e.Reason)
}

func (e GatewayError) CanReconnect() bool {
	return closecode.CanReconnectAfter(e.CloseCode) || opcode.CanReconnectAfter(e.OpCode)
}
