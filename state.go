package gateway

import (
	"go.uber.org/atomic"
)

// ResumeData is everything a future session needs to re-attach to this one.
// It exists from the first successfully decoded Ready event until the
// session ends unresumable, and its Seq tracks the last dispatch observed.
type ResumeData struct {
	Token     string
	SessionID string
	Seq       int64
}

// StateCtx is the mutable session record. All writes happen on the session
// goroutine; heartbeatACK is an atomic.Bool and each tick consumes it with a
// compare-and-swap.
//
// heartbeatACK is true whenever the client is clear to send the next
// heartbeat: set on Hello and on every HeartbeatAck, cleared by each sent
// heartbeat. A heartbeat tick observing false means the server never
// acknowledged the previous beat.
type StateCtx struct {
	heartbeatACK atomic.Bool

	resume *ResumeData
}

func newStateCtx(prior *ResumeData) *StateCtx {
	ctx := &StateCtx{}
	ctx.heartbeatACK.Store(true)
	if prior != nil {
		copied := *prior
		ctx.resume = &copied
	}
	return ctx
}

// advance records the sequence number of a dispatch event. Sequence numbers
// are only tracked while resume data exists, either carried over from a
// prior session or established by a Ready event.
func (ctx *StateCtx) advance(seq int64) {
	if ctx.resume != nil {
		ctx.resume.Seq = seq
	}
}

func (ctx *StateCtx) Resumable() bool {
	return ctx.resume != nil
}

func (ctx *StateCtx) SequenceNumber() int64 {
	if ctx.resume == nil {
		return 0
	}
	return ctx.resume.Seq
}
