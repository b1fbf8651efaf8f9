package intent

import (
	"github.com/gatewaykit/gateway/event"
)

type Type int

const (
	Guilds Type = 1 << iota
	GuildMembers
	GuildBans
	GuildEmojisAndStickers
	GuildIntegrations
	GuildWebhooks
	GuildInvites
	GuildVoiceStates
	GuildPresences
	GuildMessages
	GuildMessageReactions
	GuildMessageTyping
	DirectMessages
	DirectMessageReactions
	DirectMessageTyping
)

var guildIntentsToEventsMap = map[Type][]event.Type{
	Guilds: {
		event.GuildCreate,
		event.GuildUpdate,
		event.GuildDelete,
		event.ChannelCreate,
		event.ChannelUpdate,
		event.ChannelDelete,
		event.ChannelPinsUpdate,
	},
	GuildMembers: {
		event.GuildMemberAdd,
		event.GuildMemberUpdate,
		event.GuildMemberRemove,
	},
	GuildVoiceStates: {
		event.VoiceStateUpdate,
	},
	GuildPresences: {
		event.PresenceUpdate,
	},
	GuildMessages: {
		event.MessageCreate,
		event.MessageUpdate,
		event.MessageDelete,
	},
	GuildMessageReactions: {
		event.MessageReactionAdd,
		event.MessageReactionRemove,
	},
	GuildMessageTyping: {
		event.TypingStart,
	},
}

var dmIntentsToEventsMap = map[Type][]event.Type{
	DirectMessages: {
		event.ChannelPinsUpdate,
		event.MessageCreate,
		event.MessageUpdate,
		event.MessageDelete,
	},
	DirectMessageReactions: {
		event.MessageReactionAdd,
		event.MessageReactionRemove,
	},
	DirectMessageTyping: {
		event.TypingStart,
	},
}

func eventsToIntents(events []event.Type, mapping map[Type][]event.Type) Type {
	var intents Type
	for i, eventNames := range mapping {
		for _, listed := range eventNames {
			for _, evt := range events {
				if evt == listed {
					intents |= i
					break
				}
			}
		}
	}
	return intents
}

// GuildEventsToIntents derives the guild intents required to receive every
// event in the given list.
func GuildEventsToIntents(events []event.Type) Type {
	return eventsToIntents(events, guildIntentsToEventsMap)
}

// DMEventsToIntents derives the direct message intents required to receive
// every event in the given list.
func DMEventsToIntents(events []event.Type) Type {
	return eventsToIntents(events, dmIntentsToEventsMap)
}
