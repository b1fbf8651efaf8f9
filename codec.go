package gateway

import (
	"fmt"

	"github.com/gatewaykit/gateway/command"
	"github.com/gatewaykit/gateway/event"
	"github.com/gatewaykit/gateway/json"
	"github.com/gatewaykit/gateway/opcode"
)

// MaxOutboundBytes is enforced by the gateway; anything larger causes the
// server to drop the connection without a diagnostic.
const MaxOutboundBytes = 4096

// envelope is the wire representation of a payload. Inbound payloads are
// resolved into opcode.Op constants after parsing; outbound commands are
// written with their raw op value.
type envelope struct {
	Op uint8           `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  int64           `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

// Encode serialises an outbound command into a text frame.
func Encode(cmd *Command) ([]byte, error) {
	if cmd.Op == command.UpdatePresence {
		if err := validatePresence(cmd.Data); err != nil {
			return nil, err
		}
	}

	data, err := json.Marshal(&envelope{Op: uint8(cmd.Op), D: cmd.Data})
	if err != nil {
		return nil, fmt.Errorf("unable to marshal outbound payload. %w", err)
	}
	if len(data) >= MaxOutboundBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrEncodingTooLarge, len(data))
	}
	return data, nil
}

// Decode parses a complete text frame into a Payload.
func Decode(data []byte) (*Payload, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Kind: DecodeBadJSON, Err: err}
	}

	op, ok := opcode.FromReceiveValue(env.Op)
	if !ok {
		return nil, &DecodeError{Kind: DecodeUnknownOp, Err: fmt.Errorf("op code %d", env.Op)}
	}

	payload := &Payload{
		Op:        op,
		Data:      env.D,
		Seq:       env.S,
		EventName: event.Type(env.T),
	}
	if op == opcode.Dispatch && (payload.EventName == "" || payload.Seq <= 0) {
		return nil, &DecodeError{
			Kind: DecodeBadDispatch,
			Err:  fmt.Errorf("dispatch with event name %q and seq %d", payload.EventName, payload.Seq),
		}
	}
	return payload, nil
}

func validatePresence(data json.RawMessage) error {
	var presence PresenceUpdate
	if err := json.Unmarshal(data, &presence); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, err)
	}

	for _, activity := range presence.Activities {
		if !activity.CanSend() {
			return fmt.Errorf("%w: activity %+v", ErrInvalidPayload, activity)
		}
	}
	return nil
}
