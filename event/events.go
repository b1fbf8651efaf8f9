package event

// Type is the name of a dispatch event, as found in the "t" field
// of a gateway payload.
type Type string

const (
	Ready   Type = "READY"
	Resumed Type = "RESUMED"

	ChannelCreate     Type = "CHANNEL_CREATE"
	ChannelDelete     Type = "CHANNEL_DELETE"
	ChannelPinsUpdate Type = "CHANNEL_PINS_UPDATE"
	ChannelUpdate     Type = "CHANNEL_UPDATE"

	GuildCreate       Type = "GUILD_CREATE"
	GuildDelete       Type = "GUILD_DELETE"
	GuildMemberAdd    Type = "GUILD_MEMBER_ADD"
	GuildMemberRemove Type = "GUILD_MEMBER_REMOVE"
	GuildMemberUpdate Type = "GUILD_MEMBER_UPDATE"
	GuildMembersChunk Type = "GUILD_MEMBERS_CHUNK"
	GuildUpdate       Type = "GUILD_UPDATE"

	InteractionCreate Type = "INTERACTION_CREATE"

	MessageCreate         Type = "MESSAGE_CREATE"
	MessageDelete         Type = "MESSAGE_DELETE"
	MessageReactionAdd    Type = "MESSAGE_REACTION_ADD"
	MessageReactionRemove Type = "MESSAGE_REACTION_REMOVE"
	MessageUpdate         Type = "MESSAGE_UPDATE"

	PresenceUpdate Type = "PRESENCE_UPDATE"
	TypingStart    Type = "TYPING_START"

	VoiceServerUpdate Type = "VOICE_SERVER_UPDATE"
	VoiceStateUpdate  Type = "VOICE_STATE_UPDATE"
)
