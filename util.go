package gateway

import (
	"strconv"

	"github.com/gatewaykit/gateway/command"
	"github.com/gatewaykit/gateway/json"
)

// DeriveShardID resolves which shard receives events for a guild, so
// passthrough commands can be submitted to the right connection.
func DeriveShardID(snowflake uint64, totalNumberOfShards uint) ShardID {
	createdUnix := snowflake >> 22
	groups := uint64(totalNumberOfShards)
	return ShardID(createdUnix % groups)
}

// RequestGuildMembersCommand builds the passthrough command that asks the
// gateway to stream a guild's member list. Submit it on the shard returned
// by DeriveShardID for the guild.
func RequestGuildMembersCommand(guildID uint64, query string, limit int) (*Command, error) {
	data, err := json.Marshal(struct {
		GuildID string `json:"guild_id"`
		Query   string `json:"query"`
		Limit   int    `json:"limit"`
	}{
		GuildID: strconv.FormatUint(guildID, 10),
		Query:   query,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	return &Command{Op: command.RequestGuildMembers, Data: data}, nil
}
