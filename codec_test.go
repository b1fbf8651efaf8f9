package gateway

import (
	"errors"
	"strings"
	"testing"

	"github.com/gatewaykit/gateway/command"
	"github.com/gatewaykit/gateway/event"
	"github.com/gatewaykit/gateway/json"
	"github.com/gatewaykit/gateway/opcode"
)

func TestEncode(t *testing.T) {
	t.Run("heartbeat", func(t *testing.T) {
		data, err := Encode(&Command{Op: command.Heartbeat, Data: RawMessage(`443`)})
		if err != nil {
			t.Fatal(err)
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatal("wrote invalid json", err)
		}
		if env.Op != uint8(command.Heartbeat) {
			t.Errorf("incorrect op code. Got %d, wants %d", env.Op, command.Heartbeat)
		}
		if string(env.D) != "443" {
			t.Errorf("incorrect data. Got %s, wants 443", env.D)
		}
	})

	t.Run("null heartbeat data survives", func(t *testing.T) {
		data, err := Encode(&Command{Op: command.Heartbeat, Data: RawMessage(`null`)})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), `"d":null`) {
			t.Errorf("null data was dropped: %s", data)
		}
	})

	t.Run("too large", func(t *testing.T) {
		big := `"` + strings.Repeat("a", MaxOutboundBytes) + `"`
		_, err := Encode(&Command{Op: command.Identify, Data: RawMessage(big)})
		if err == nil {
			t.Fatal("expected encoding to fail")
		}
		if !errors.Is(err, ErrEncodingTooLarge) {
			t.Errorf("unexpected error: %s", err)
		}
	})

	t.Run("presence", func(t *testing.T) {
		t.Run("ok", func(t *testing.T) {
			data := RawMessage(`{"since":null,"activities":[{"name":"with fire","type":0}],"status":"online","afk":false}`)
			if _, err := Encode(&Command{Op: command.UpdatePresence, Data: data}); err != nil {
				t.Fatal(err)
			}
		})
		t.Run("nameless activity", func(t *testing.T) {
			data := RawMessage(`{"activities":[{"name":"","type":0}],"status":"online"}`)
			_, err := Encode(&Command{Op: command.UpdatePresence, Data: data})
			if !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("expected ErrInvalidPayload, got %v", err)
			}
		})
		t.Run("streaming without url", func(t *testing.T) {
			data := RawMessage(`{"activities":[{"name":"live","type":1}],"status":"online"}`)
			_, err := Encode(&Command{Op: command.UpdatePresence, Data: data})
			if !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("expected ErrInvalidPayload, got %v", err)
			}
		})
		t.Run("unknown activity type", func(t *testing.T) {
			data := RawMessage(`{"activities":[{"name":"x","type":9}],"status":"online"}`)
			_, err := Encode(&Command{Op: command.UpdatePresence, Data: data})
			if !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("expected ErrInvalidPayload, got %v", err)
			}
		})
	})
}

func TestDecode(t *testing.T) {
	t.Run("hello", func(t *testing.T) {
		payload, err := Decode([]byte(`{"op":10,"d":{"heartbeat_interval":45000}}`))
		if err != nil {
			t.Fatal(err)
		}
		if payload.Op != opcode.Hello {
			t.Errorf("incorrect op code. Got %d", payload.Op.Val())
		}

		var hello Hello
		if err := json.Unmarshal(payload.Data, &hello); err != nil {
			t.Fatal(err)
		}
		if hello.HeartbeatIntervalMilli != 45000 {
			t.Errorf("incorrect interval. Got %d", hello.HeartbeatIntervalMilli)
		}
	})

	t.Run("dispatch", func(t *testing.T) {
		payload, err := Decode([]byte(`{"op":0,"s":7,"t":"MESSAGE_CREATE","d":{}}`))
		if err != nil {
			t.Fatal(err)
		}
		if payload.Seq != 7 {
			t.Errorf("incorrect seq. Got %d, wants 7", payload.Seq)
		}
		if payload.EventName != event.MessageCreate {
			t.Errorf("incorrect event name. Got %s", payload.EventName)
		}
	})

	t.Run("bad json", func(t *testing.T) {
		_, err := Decode([]byte(`{[7]]99{{`))
		assertDecodeKind(t, err, DecodeBadJSON)
	})

	t.Run("unknown op", func(t *testing.T) {
		_, err := Decode([]byte(`{"op":45}`))
		assertDecodeKind(t, err, DecodeUnknownOp)
	})

	t.Run("send-only op is not receivable", func(t *testing.T) {
		_, err := Decode([]byte(`{"op":2}`))
		assertDecodeKind(t, err, DecodeUnknownOp)
	})

	t.Run("dispatch without event name", func(t *testing.T) {
		_, err := Decode([]byte(`{"op":0,"s":3,"d":{}}`))
		assertDecodeKind(t, err, DecodeBadDispatch)
	})

	t.Run("dispatch without seq", func(t *testing.T) {
		_, err := Decode([]byte(`{"op":0,"t":"READY","d":{}}`))
		assertDecodeKind(t, err, DecodeBadDispatch)
	})
}

func assertDecodeKind(t *testing.T, err error, kind DecodeErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected decode to fail")
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("not a DecodeError: %v", err)
	}
	if decodeErr.Kind != kind {
		t.Errorf("incorrect kind. Got %s, wants %s", decodeErr.Kind, kind)
	}
}
