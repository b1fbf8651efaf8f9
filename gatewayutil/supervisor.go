package gatewayutil

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/gatewaykit/gateway"
	"github.com/gatewaykit/gateway/dispatch"
)

const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 64 * time.Second
)

// Supervisor owns the reconnect loop. It runs one session at a time,
// carries resume data between runs, delays when the outcome asks for it,
// and backs off exponentially until a session reaches Ready or Resumed.
type Supervisor struct {
	Conf *ShardConfig
	Sink dispatch.Sink
}

func (sup *Supervisor) Run(ctx context.Context) error {
	logger := sup.Conf.Logger
	if logger == nil {
		logger = &nop{}
	}

	var resume *gateway.ResumeData
	backoff := initialBackoff

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		shard, err := NewShard(sup.Conf)
		if err != nil {
			return err
		}

		if _, err := shard.Dial(ctx, sup.Conf.GatewayURL); err != nil {
			logger.Error("dial failed: %s", err)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff)
			continue
		}

		outcome, err := shard.Run(ctx, resume, sup.Sink)

		// a session that reached Ready or Resumed resets the backoff: the
		// credentials and intents are known good, so retry immediately.
		started := false
		if shard.Session.Started().Resolved() {
			if _, serr := shard.Session.Started().Get(ctx); serr == nil {
				backoff = initialBackoff
				started = true
			}
		}

		if err != nil {
			var gerr *gateway.GatewayError
			if errors.As(err, &gerr) && !gerr.CanReconnect() {
				return err
			}
			logger.Error("session failed: %s", err)

			// resume data is only carried by an orderly outcome
			resume = nil
			if !started {
				if !sleep(ctx, backoff) {
					return ctx.Err()
				}
				backoff = nextBackoff(backoff)
			}
			continue
		}

		resume = outcome.Resume
		if outcome.Wait {
			if !sleep(ctx, invalidSessionDelay()) {
				return ctx.Err()
			}
		}
	}
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

// invalidSessionDelay spreads re-identifies out over 1-5 seconds, as the
// gateway documentation asks.
func invalidSessionDelay() time.Duration {
	return time.Duration(1+rand.Intn(5)) * time.Second
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
