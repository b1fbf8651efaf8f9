package gateway

import (
	"errors"

	"github.com/gatewaykit/gateway/event"
	"github.com/gatewaykit/gateway/intent"
	"github.com/gatewaykit/gateway/internal/util"
)

// Option for initializing a new session. An option must be deterministic
// regardless of when or how many times it is executed.
type Option func(session *Session) error

func WithDirectMessageEvents(events ...event.Type) Option {
	set := util.Set[event.Type]{}
	set.Add(events...)
	deduplicated := set.ToSlice()

	return func(session *Session) error {
		if len(deduplicated) != len(events) {
			return errors.New("duplicated direct message events found")
		}
		if session.intents > 0 {
			return errors.New("'DirectMessageEvents' can not be set when using 'Intents' option")
		}

		session.directMessageEvents = events
		return nil
	}
}

func WithGuildEvents(events ...event.Type) Option {
	set := util.Set[event.Type]{}
	set.Add(events...)
	deduplicated := set.ToSlice()

	return func(session *Session) error {
		if len(deduplicated) != len(events) {
			return errors.New("duplicated guild events found")
		}
		if session.intents > 0 {
			return errors.New("'GuildEvents' can not be set when using 'Intents' option")
		}

		session.guildEvents = events
		return nil
	}
}

func WithIntents(intents intent.Type) Option {
	return func(session *Session) error {
		if len(session.directMessageEvents) > 0 || len(session.guildEvents) > 0 {
			return errors.New("'Intents' can not be used along with 'DirectMessageEvents' and/or 'GuildEvents'")
		}

		session.intents = intents
		return nil
	}
}

func WithShardID(id ShardID) Option {
	return func(session *Session) error {
		session.shardID = id
		return nil
	}
}

func WithShardCount(count int) Option {
	if count < 0 {
		panic("shard count can not be negative")
	}

	return func(session *Session) error {
		session.totalNumberOfShards = count
		return nil
	}
}

func WithLargeThreshold(threshold uint8) Option {
	return func(session *Session) error {
		session.largeThreshold = threshold
		return nil
	}
}

// WithInitialPresence sets the presence sent along with identify. The value
// must be a marshalled PresenceUpdate.
func WithInitialPresence(presence RawMessage) Option {
	return func(session *Session) error {
		session.presence = presence
		return nil
	}
}

func WithIdentifyConnectionProperties(properties *IdentifyConnectionProperties) Option {
	return func(session *Session) error {
		session.connectionProperties = properties
		return nil
	}
}

// WithResumeData carries the verdict of a previous session into this one.
// When set, the session resumes instead of identifying at Hello.
func WithResumeData(resume *ResumeData) Option {
	return func(session *Session) error {
		if resume != nil && (resume.Token == "" || resume.SessionID == "") {
			return errors.New("resume data is missing token or session id")
		}

		session.priorResume = resume
		return nil
	}
}

func WithLogger(logger Logger) Option {
	return func(session *Session) error {
		if logger == nil {
			return errors.New("logger is nil")
		}

		session.logger = logger
		return nil
	}
}
