package gatewayutil

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"go.uber.org/atomic"

	"github.com/gatewaykit/gateway"
	"github.com/gatewaykit/gateway/closecode"
	"github.com/gatewaykit/gateway/dispatch"
)

type ShardConfig struct {
	BotToken   string
	GatewayURL string

	Logger gateway.Logger

	// mirror raw websocket traffic to the debug log
	LogReceivedWS bool
	LogSentWS     bool

	Options []gateway.Option
}

// Shard binds one websocket connection to one session run. A shard is
// discarded after its session completes; the supervisor creates a fresh one
// per attempt.
type Shard struct {
	conf   ShardConfig
	logger gateway.Logger

	conn        net.Conn
	textWriter  io.Writer
	closeWriter io.Writer
	closed      atomic.Bool

	submissions chan *gateway.Command

	// Session is populated by Run and valid until the next Run.
	Session *gateway.Session
}

func NewShard(conf *ShardConfig) (*Shard, error) {
	if conf.BotToken == "" {
		return nil, errors.New("missing bot token")
	}

	logger := conf.Logger
	if logger == nil {
		logger = &nop{}
	}

	return &Shard{
		conf:        *conf,
		logger:      logger,
		submissions: make(chan *gateway.Command, 16),
	}, nil
}

// ValidateDialURL requires a complete gateway url with api version and
// json encoding:
//
//	"wss://gateway.discord.gg/"                      => invalid
//	"wss://gateway.discord.gg/?v=10"                 => invalid
//	"wss://gateway.discord.gg/?v=10&encoding=json"   => valid
func ValidateDialURL(URLString string) (string, error) {
	u, err := url.Parse(URLString)
	if err != nil {
		return "", err
	}

	if u.Scheme != "wss" {
		return "", fmt.Errorf("url scheme must be wss, got %q", u.Scheme)
	}
	query := u.Query()
	if query.Get("v") == "" {
		return "", errors.New("url must specify the api version")
	}
	if query.Get("encoding") != "json" {
		return "", errors.New("url must specify json encoding")
	}
	return u.String(), nil
}

type ioWriteFlusher struct {
	writer *wsutil.Writer
}

func (i *ioWriteFlusher) Write(p []byte) (n int, err error) {
	if n, err = i.writer.Write(p); err != nil {
		return n, err
	}
	return n, i.writer.Flush()
}

// Dial sets up the websocket connection. The session handshake itself is
// driven by the inbound Hello once Run is called.
func (s *Shard) Dial(ctx context.Context, URLString string) (connection net.Conn, err error) {
	URLString, err = ValidateDialURL(URLString)
	if err != nil {
		return nil, err
	}

	conn, reader, _, err := ws.Dial(ctx, URLString)
	if err != nil {
		return nil, err
	}

	if reader != nil {
		defer ws.PutReader(reader)
		if reader.Size() > 0 {
			_ = conn.Close()
			return nil, errors.New("unexpected data before first frame")
		}
	}

	s.conn = conn
	s.textWriter = s.writer(ws.OpText)
	s.closeWriter = s.writer(ws.OpClose)
	return conn, nil
}

func (s *Shard) writer(op ws.OpCode) io.Writer {
	return &ioWriteFlusher{wsutil.NewWriter(s.conn, ws.StateClientSide, op)}
}

// Submit queues an application command, such as a presence or voice status
// update, onto the outbound pipe. Ordering against the session's own
// control messages is not defined.
func (s *Shard) Submit(cmd *gateway.Command) error {
	if s.closed.Load() {
		return net.ErrClosed
	}

	s.submissions <- cmd
	return nil
}

// Close writes a normal close frame; the session can not be resumed after.
func (s *Shard) Close() error {
	return s.close(gateway.NormalCloseCode)
}

// CloseWithReconnectIntent closes the connection but allows the session to
// be resumed later on.
func (s *Shard) CloseWithReconnectIntent() error {
	return s.close(gateway.RestartCloseCode)
}

func (s *Shard) close(code uint16) error {
	if !s.closed.CompareAndSwap(false, true) {
		return net.ErrClosed
	}
	if s.closeWriter != nil {
		closeCodeBuf := make([]byte, 2)
		binary.BigEndian.PutUint16(closeCodeBuf, code)
		_, _ = s.closeWriter.Write(closeCodeBuf)
	}
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Run wires the full pipeline for one session: transport reads through the
// frame adapter into the session, merged outbound through the codec onto
// the wire, and the dispatch tee into the sink. It blocks until the session
// outcome resolves.
func (s *Shard) Run(ctx context.Context, prior *gateway.ResumeData, sink dispatch.Sink) (gateway.Outcome, error) {
	if s.conn == nil {
		return gateway.Outcome{}, errors.New("shard is not connected, call Dial first")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan gateway.Frame)
	adapter := &gateway.FrameAdapter{Logger: s.logger, LogReceived: s.conf.LogReceivedWS}
	inbound := adapter.Decode(runCtx, frames)

	options := append([]gateway.Option{}, s.conf.Options...)
	options = append(options, gateway.WithLogger(s.logger), gateway.WithResumeData(prior))
	session, err := gateway.NewSession(inbound, s.conf.BotToken, options...)
	if err != nil {
		return gateway.Outcome{}, err
	}
	s.Session = session

	go s.readLoop(runCtx, frames)
	go s.writeLoop(session, gateway.MergeCommands(session.Control(), s.submissions))
	go func() {
		if err := dispatch.Pump(runCtx, session.Dispatch(), sink); err != nil {
			session.CancelDispatch()
		}
	}()
	go session.Run(runCtx)

	outcome, err := session.Outcome().Get(ctx)
	cancel()
	_ = s.Close()
	return outcome, err
}

func (s *Shard) readLoop(ctx context.Context, frames chan<- gateway.Frame) {
	defer close(frames)

	controlHandler := wsutil.ControlFrameHandler(s.conn, ws.StateClientSide)
	rd := &wsutil.Reader{
		Source:          s.conn,
		State:           ws.StateClientSide,
		CheckUTF8:       true,
		SkipHeaderCheck: false,
		OnIntermediate:  controlHandler,
	}

	for {
		hdr, err := rd.NextFrame()
		if err != nil {
			s.emit(ctx, frames, gateway.Frame{Err: fmt.Errorf("websocket read failed. %w", err)})
			return
		}

		if hdr.OpCode.IsControl() {
			// the server does send close frames, these must be handled
			if err := controlHandler(hdr, rd); err != nil {
				var errClose wsutil.ClosedError
				if errors.As(err, &errClose) {
					s.emit(ctx, frames, gateway.Frame{Err: &gateway.GatewayError{
						CloseCode: closecode.Type(errClose.Code),
						Reason:    errClose.Reason,
					}})
				} else {
					s.emit(ctx, frames, gateway.Frame{Err: err})
				}
				return
			}
			continue
		}

		data, err := io.ReadAll(rd)
		if err != nil {
			s.emit(ctx, frames, gateway.Frame{Err: fmt.Errorf("websocket read failed. %w", err)})
			return
		}

		frame := gateway.Frame{
			Binary:    hdr.OpCode == ws.OpBinary,
			Fragments: [][]byte{data},
		}
		if !s.emitFrame(ctx, frames, frame) {
			return
		}
	}
}

func (s *Shard) emit(ctx context.Context, frames chan<- gateway.Frame, frame gateway.Frame) {
	_ = s.emitFrame(ctx, frames, frame)
}

func (s *Shard) emitFrame(ctx context.Context, frames chan<- gateway.Frame, frame gateway.Frame) bool {
	select {
	case frames <- frame:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Shard) writeLoop(session *gateway.Session, outbound <-chan *gateway.Command) {
	for cmd := range outbound {
		data, err := gateway.Encode(cmd)
		if err != nil {
			// encode failures are synchronous send failures, they end the session
			session.Abort(err)
			_ = s.Close()
			return
		}

		if s.conf.LogSentWS {
			s.logger.Debug("sent: %s", string(data))
		}

		if _, err := s.textWriter.Write(data); err != nil {
			s.logger.Error("websocket write failed: %s", err)
			if s.conn != nil {
				_ = s.conn.Close()
			}
			return
		}
	}
}

type nop struct{}

func (n *nop) Debug(_ string, _ ...interface{}) {}
func (n *nop) Info(_ string, _ ...interface{})  {}
func (n *nop) Warn(_ string, _ ...interface{})  {}
func (n *nop) Error(_ string, _ ...interface{}) {}
