package gateway

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/gatewaykit/gateway/command"
	"github.com/gatewaykit/gateway/event"
	"github.com/gatewaykit/gateway/intent"
	"github.com/gatewaykit/gateway/internal/util"
	"github.com/gatewaykit/gateway/json"
	"github.com/gatewaykit/gateway/opcode"
)

// Outcome is the terminal value of a session run. Resume is nil when the
// next connection must re-identify. Wait tells the reconnect supervisor to
// delay before the next attempt, which the invalid session flow requires to
// avoid identify storms.
type Outcome struct {
	Resume *ResumeData
	Wait   bool
}

const controlBufferSize = 8

// Session multiplexes one gateway connection: it consumes the decoded
// inbound sequence, reacts per op code on its own goroutine, emits control
// messages on the outbound channel, forwards every inbound payload to the
// dispatch channel, and resolves the two completion futures exactly once.
type Session struct {
	botToken            string
	shardID             ShardID
	totalNumberOfShards int
	intents             intent.Type
	largeThreshold      uint8
	presence            RawMessage

	// events that are not found in the allowlist are viewed as redundant
	// and may be skipped by the dispatch router
	allowlist           util.Set[event.Type]
	directMessageEvents []event.Type
	guildEvents         []event.Type

	connectionProperties *IdentifyConnectionProperties
	priorResume          *ResumeData
	logger               Logger

	ctx *StateCtx

	inbound  <-chan Incoming
	control  chan *Command
	dispatch chan *Payload

	dispatchClosed chan struct{}
	cancelDispatch sync.Once

	outcome *Completion[Outcome]
	started *Completion[struct{}]

	hb       *time.Timer
	interval time.Duration
	hbArmed  bool
}

func NewSession(inbound <-chan Incoming, botToken string, options ...Option) (*Session, error) {
	session := &Session{
		botToken:       botToken,
		inbound:        inbound,
		control:        make(chan *Command, controlBufferSize),
		dispatch:       make(chan *Payload),
		dispatchClosed: make(chan struct{}),
		outcome:        NewCompletion[Outcome](),
		started:        NewCompletion[struct{}](),
		logger:         &nopLogger{},
	}

	for i := range options {
		if err := options[i](session); err != nil {
			return nil, err
		}
	}

	if session.intents == 0 && (len(session.guildEvents) > 0 || len(session.directMessageEvents) > 0) {
		// derive intents
		session.intents |= intent.GuildEventsToIntents(session.guildEvents)
		session.intents |= intent.DMEventsToIntents(session.directMessageEvents)

		// allowlist the specified events only
		session.allowlist = util.Set[event.Type]{}
		session.allowlist.Add(session.guildEvents...)
		session.allowlist.Add(session.directMessageEvents...)

		// crucial for normal function
		session.allowlist.Add(event.Ready, event.Resumed)
	}

	// connection properties
	if session.connectionProperties == nil {
		session.connectionProperties = &IdentifyConnectionProperties{
			OS:      runtime.GOOS,
			Browser: "github.com/gatewaykit/gateway",
			Device:  "github.com/gatewaykit/gateway",
		}
	}

	// sharding
	if session.totalNumberOfShards == 0 {
		if session.shardID == 0 {
			session.totalNumberOfShards = 1
		} else {
			return nil, fmt.Errorf("missing shard count")
		}
	}
	if int(session.shardID) >= session.totalNumberOfShards {
		return nil, fmt.Errorf("shard id is higher than shard count")
	}

	session.ctx = newStateCtx(session.priorResume)
	return session, nil
}

// Control is the outbound control channel: identify/resume and heartbeats.
// It closes when the session terminates.
func (s *Session) Control() <-chan *Command {
	return s.control
}

// Dispatch is the tee of every inbound payload in arrival order, control
// messages included. It closes when the session terminates. A slow consumer
// stalls the inbound side rather than growing a buffer.
func (s *Session) Dispatch() <-chan *Payload {
	return s.dispatch
}

// Outcome resolves once, when the session terminates: either a resume
// verdict for the supervisor, or the error that ended the session.
func (s *Session) Outcome() *Completion[Outcome] {
	return s.outcome
}

// Started resolves on the first Ready or Resumed event, or fails with the
// error that ended a session which never got that far.
func (s *Session) Started() *Completion[struct{}] {
	return s.started
}

// CancelDispatch signals that the dispatch consumer is done. The session
// completes gracefully with its current resume data.
func (s *Session) CancelDispatch() {
	s.cancelDispatch.Do(func() {
		close(s.dispatchClosed)
	})
}

// Abort fails both futures. The host uses it when the surrounding stream
// dies in a way the session itself can not observe, such as a synchronous
// encode failure in the write pump.
func (s *Session) Abort(err error) {
	s.outcome.Fail(err)
	s.started.Fail(err)
}

// FilterEvent reports whether a dispatch event is in the configured
// allowlist. Without an allowlist every event passes.
func (s *Session) FilterEvent(evt event.Type) bool {
	if s.allowlist != nil {
		return s.allowlist.Contains(evt)
	}

	return true
}

// Run processes the inbound sequence until a termination path fires. It
// owns all mutation of the session state; both output channels are closed
// on return.
func (s *Session) Run(ctx context.Context) {
	defer close(s.control)
	defer close(s.dispatch)

	s.hb = time.NewTimer(time.Hour)
	if !s.hb.Stop() {
		<-s.hb.C
	}
	defer s.hb.Stop()

	for {
		select {
		case in, ok := <-s.inbound:
			if !ok {
				s.outcome.Complete(Outcome{Resume: s.ctx.resume})
				return
			}
			if in.Err != nil {
				s.Abort(in.Err)
				return
			}
			if done := s.process(ctx, in.Payload); done {
				return
			}
		case <-s.hb.C:
			if !s.beat(ctx) {
				return
			}
			s.hb.Reset(s.interval)
		case <-s.dispatchClosed:
			s.outcome.Complete(Outcome{Resume: s.ctx.resume})
			return
		case <-ctx.Done():
			s.Abort(ErrAbruptTermination)
			return
		}
	}
}

// process reacts to one payload and tees it to the dispatch channel.
// Reports whether the session terminated.
func (s *Session) process(ctx context.Context, payload *Payload) bool {
	switch payload.Op {
	case opcode.Hello:
		if done := s.hello(ctx, payload); done {
			return true
		}
	case opcode.Dispatch:
		if !s.hbArmed {
			s.Abort(fmt.Errorf("%w: %s", ErrPreHelloDispatch, payload.EventName))
			return true
		}
		s.dispatched(payload)
	case opcode.Heartbeat:
		// the server may request a beat off-cadence
		if !s.beat(ctx) {
			return true
		}
		if s.hbArmed {
			s.hb.Reset(s.interval)
		}
	case opcode.HeartbeatAck:
		s.ctx.heartbeatACK.Store(true)
	case opcode.Reconnect:
		if !s.tee(ctx, payload) {
			return true
		}
		s.outcome.Complete(Outcome{Resume: s.ctx.resume})
		return true
	case opcode.InvalidSession:
		var resumable bool
		if err := json.Unmarshal(payload.Data, &resumable); err != nil {
			s.logger.Error("unreadable invalid session payload: %s", err)
		}
		if !s.tee(ctx, payload) {
			return true
		}
		out := Outcome{Wait: true}
		if resumable {
			out.Resume = s.ctx.resume
		}
		s.outcome.Complete(out)
		return true
	default:
		// nothing to react to, still forwarded below
	}

	return !s.tee(ctx, payload)
}

func (s *Session) hello(ctx context.Context, payload *Payload) bool {
	var hello Hello
	if err := json.Unmarshal(payload.Data, &hello); err != nil {
		s.Abort(&DecodeError{Kind: DecodeBadDispatch, Err: fmt.Errorf("hello: %w", err)})
		return true
	}

	var cmd *Command
	if s.ctx.resume != nil {
		data, err := json.Marshal(&Resume{
			BotToken:       s.ctx.resume.Token,
			SessionID:      s.ctx.resume.SessionID,
			SequenceNumber: s.ctx.resume.Seq,
		})
		if err != nil {
			s.Abort(fmt.Errorf("unable to marshal resume payload. %w", err))
			return true
		}
		cmd = &Command{Op: command.Resume, Data: data}
	} else {
		data, err := json.Marshal(s.identity())
		if err != nil {
			s.Abort(fmt.Errorf("unable to marshal identify payload. %w", err))
			return true
		}
		cmd = &Command{Op: command.Identify, Data: data}
	}

	if !s.push(ctx, cmd) {
		return true
	}

	// the ack flag is pre-set so the zero-delay first tick always sends
	s.ctx.heartbeatACK.Store(true)
	s.interval = time.Duration(hello.HeartbeatIntervalMilli) * time.Millisecond
	s.hb.Reset(0)
	s.hbArmed = true
	return false
}

func (s *Session) dispatched(payload *Payload) {
	switch payload.EventName {
	case event.Ready:
		var ready Ready
		if err := json.Unmarshal(payload.Data, &ready); err != nil || ready.SessionID == "" {
			// the session keeps running, but can never be resumed
			s.logger.Error("failed to extract session id from ready event: %v", err)
			s.ctx.resume = nil
		} else {
			s.ctx.resume = &ResumeData{
				Token:     s.botToken,
				SessionID: ready.SessionID,
				Seq:       payload.Seq,
			}
		}
		s.started.Complete(struct{}{})
	case event.Resumed:
		s.ctx.advance(payload.Seq)
		s.started.Complete(struct{}{})
	default:
		s.ctx.advance(payload.Seq)
	}
}

// beat runs one heartbeat tick: send if the previous beat was acknowledged,
// fail the session otherwise. Reports whether the session is still alive.
func (s *Session) beat(ctx context.Context) bool {
	if !s.ctx.heartbeatACK.CompareAndSwap(true, false) {
		s.Abort(ErrLivenessTimeout)
		return false
	}

	data := json.RawMessage("null")
	if s.ctx.resume != nil {
		data = json.RawMessage(strconv.FormatInt(s.ctx.resume.Seq, 10))
	}
	return s.push(ctx, &Command{Op: command.Heartbeat, Data: data})
}

func (s *Session) push(ctx context.Context, cmd *Command) bool {
	select {
	case s.control <- cmd:
		return true
	case <-ctx.Done():
		s.Abort(ErrAbruptTermination)
		return false
	}
}

func (s *Session) tee(ctx context.Context, payload *Payload) bool {
	select {
	case s.dispatch <- payload:
		return true
	case <-s.dispatchClosed:
		s.outcome.Complete(Outcome{Resume: s.ctx.resume})
		return false
	case <-ctx.Done():
		s.Abort(ErrAbruptTermination)
		return false
	}
}

func (s *Session) identity() *Identify {
	return &Identify{
		BotToken:       s.botToken,
		Properties:     s.connectionProperties,
		Compress:       false,
		LargeThreshold: s.largeThreshold,
		Shard:          [2]int{int(s.shardID), s.totalNumberOfShards},
		Presence:       s.presence,
		Intents:        s.intents,
	}
}
