package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Frame is one transport message. Fragments arrive in order and belong to
// the same message; binary frames are zlib compressed end-to-end. A frame
// with Err set terminates the stream with a transport failure.
type Frame struct {
	Binary    bool
	Fragments [][]byte
	Err       error
}

// Incoming is one element of the decoded message sequence consumed by the
// session state machine.
type Incoming struct {
	Payload *Payload
	Err     error
}

// FrameAdapter binds transport frames to the payload codec: fragments are
// concatenated, binary frames inflated, and the result decoded. A decode or
// inflate failure ends the sequence.
type FrameAdapter struct {
	Logger Logger

	// LogReceived mirrors every raw inbound frame to the debug log.
	LogReceived bool
}

// Decode starts the adapter and returns the lazy sequence of decoded
// messages. The sequence ends when frames closes, when a frame fails to
// decode, or when ctx is cancelled. Each frame is fully resolved before the
// next is read; text and binary frames are never reordered.
func (a *FrameAdapter) Decode(ctx context.Context, frames <-chan Frame) <-chan Incoming {
	logger := a.Logger
	if logger == nil {
		logger = &nopLogger{}
	}

	out := make(chan Incoming)
	go func() {
		defer close(out)
		for {
			var frame Frame
			var ok bool
			select {
			case frame, ok = <-frames:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}

			if frame.Err != nil {
				emit(ctx, out, Incoming{Err: frame.Err})
				return
			}

			data := bytes.Join(frame.Fragments, nil)
			if frame.Binary {
				var err error
				if data, err = inflate(data); err != nil {
					emit(ctx, out, Incoming{Err: err})
					return
				}
			}

			if a.LogReceived {
				logger.Debug("received: %s", string(data))
			}

			payload, err := Decode(data)
			if err != nil {
				emit(ctx, out, Incoming{Err: err})
				return
			}
			if !emit(ctx, out, Incoming{Payload: payload}) {
				return
			}
		}
	}()
	return out
}

func emit(ctx context.Context, out chan<- Incoming, in Incoming) bool {
	select {
	case out <- in:
		return true
	case <-ctx.Done():
		return false
	}
}

func inflate(data []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to inflate binary frame. %w", err)
	}
	defer reader.Close()

	inflated, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("unable to inflate binary frame. %w", err)
	}
	return inflated, nil
}
