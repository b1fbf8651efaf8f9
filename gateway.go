package gateway

import (
	"fmt"

	"github.com/gatewaykit/gateway/command"
	"github.com/gatewaykit/gateway/event"
	"github.com/gatewaykit/gateway/intent"
	"github.com/gatewaykit/gateway/json"
	"github.com/gatewaykit/gateway/opcode"
)

type RawMessage = json.RawMessage

type ShardID uint

const (
	NormalCloseCode  uint16 = 1000
	RestartCloseCode uint16 = 1012
)

// Payload is a single decoded gateway message. Data holds the raw "d" field
// and is only interpreted for the op codes that affect session state.
type Payload struct {
	Op        opcode.Op
	Data      json.RawMessage
	Seq       int64
	EventName event.Type
}

func (p Payload) String() string {
	return fmt.Sprintf("{\n\t\"op\":%d,\n\t\"data\": %s\n\t\"seq\":%d\n}", p.Op.Val(), string(p.Data), p.Seq)
}

// Command is an outbound gateway message before encoding. Commands produced
// by the session state machine and commands submitted by the application
// share the same outbound pipe.
type Command struct {
	Op   command.Type
	Data json.RawMessage
}

type Hello struct {
	HeartbeatIntervalMilli int64 `json:"heartbeat_interval"`
}

type Ready struct {
	SessionID string `json:"session_id"`
}

type Resume struct {
	BotToken       string `json:"token"`
	SessionID      string `json:"session_id"`
	SequenceNumber int64  `json:"seq"`
}

type IdentifyConnectionProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

type Identify struct {
	BotToken       string      `json:"token"`
	Properties     interface{} `json:"properties"`
	Compress       bool        `json:"compress,omitempty"`
	LargeThreshold uint8       `json:"large_threshold,omitempty"`
	Shard          [2]int      `json:"shard"`
	Presence       RawMessage  `json:"presence,omitempty"`
	Intents        intent.Type `json:"intents"`
}

// Activity is the subset of a presence activity the client validates
// before sending.
type Activity struct {
	Name  string `json:"name"`
	Type  int    `json:"type"`
	URL   string `json:"url,omitempty"`
	State string `json:"state,omitempty"`
}

// CanSend reports whether the gateway accepts this activity from a client.
// Streaming activities must carry a url, and the type must be one Discord
// recognises.
func (a *Activity) CanSend() bool {
	if a == nil || a.Name == "" {
		return false
	}
	if a.Type < 0 || a.Type > 5 {
		return false
	}
	if a.Type == 1 && a.URL == "" {
		return false
	}
	return true
}

type PresenceUpdate struct {
	Since      *int64      `json:"since"`
	Activities []*Activity `json:"activities"`
	Status     string      `json:"status"`
	AFK        bool        `json:"afk"`
}
