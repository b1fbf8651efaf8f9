package opcode

import "testing"

func TestConstants(t *testing.T) {
	if highestBit == 0 {
		t.Error("highestBit is not set")
	}
	if reservedMask == 0 {
		t.Error("reservedMask is not set")
	}
	if reservedMask>>(size-4) != 0b1111 {
		t.Error("reservedMask is incorrectly set")
	}
	if valueMask == 0 {
		t.Error("valueMask is not set")
	}
	if send == 0 {
		t.Error("send is not set")
	}
	if receive == 0 {
		t.Error("receive is not set")
	}
	if internalOnly == 0 {
		t.Error("internalOnly is not set")
	}
}

func TestGuards(t *testing.T) {
	for _, op := range []Op{Dispatch, Heartbeat, Identify, UpdatePresence, UpdateVoiceState, Resume, Reconnect, RequestGuildMembers, InvalidSession, Hello, HeartbeatAck} {
		if !op.InternalUseOnly() {
			if !op.Send() {
				t.Errorf("if opcode is not limited to internal use, it must be send-able. Code %d", op.Val())
			}
		}

		if (op.Receive() || op.Send()) == false {
			t.Errorf("opcode does not have a directional guard defined. Code %d", op.Val())
		}
	}
}

func TestFromReceiveValue(t *testing.T) {
	t.Run("receivable", func(t *testing.T) {
		for _, op := range []Op{Dispatch, Heartbeat, Reconnect, InvalidSession, Hello, HeartbeatAck} {
			got, ok := FromReceiveValue(op.Val())
			if !ok {
				t.Errorf("op %d should be receivable", op.Val())
			}
			if got != op {
				t.Errorf("resolved the wrong op. Got %d, wants %d", got.Val(), op.Val())
			}
		}
	})

	t.Run("send only", func(t *testing.T) {
		for _, op := range []Op{Identify, UpdatePresence, UpdateVoiceState, Resume, RequestGuildMembers} {
			if _, ok := FromReceiveValue(op.Val()); ok {
				t.Errorf("op %d should not be receivable", op.Val())
			}
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, ok := FromReceiveValue(45); ok {
			t.Error("op 45 should not resolve")
		}
	})
}
