package gatewayutil

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/gatewaykit/gateway"
	"github.com/gatewaykit/gateway/intent"
)

const DefaultGatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"

// Config is the environment surface of a shard. A .env file in the working
// directory is honored, process environment wins.
type Config struct {
	BotToken   string
	GatewayURL string

	ShardID        uint
	ShardCount     int
	Intents        intent.Type
	LargeThreshold uint8

	LogReceivedWS bool
	LogSentWS     bool
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:   os.Getenv("GATEWAY_TOKEN"),
		GatewayURL: DefaultGatewayURL,
	}
	if cfg.BotToken == "" {
		return nil, errors.New("missing GATEWAY_TOKEN")
	}
	if u := os.Getenv("GATEWAY_URL"); u != "" {
		cfg.GatewayURL = u
	}

	var err error
	if cfg.ShardID, err = envUint("GATEWAY_SHARD_ID"); err != nil {
		return nil, err
	}
	shardCount, err := envUint("GATEWAY_SHARD_COUNT")
	if err != nil {
		return nil, err
	}
	cfg.ShardCount = int(shardCount)

	intents, err := envUint("GATEWAY_INTENTS")
	if err != nil {
		return nil, err
	}
	cfg.Intents = intent.Type(intents)

	threshold, err := envUint("GATEWAY_LARGE_THRESHOLD")
	if err != nil {
		return nil, err
	}
	if threshold > 250 {
		return nil, fmt.Errorf("GATEWAY_LARGE_THRESHOLD above 250: %d", threshold)
	}
	cfg.LargeThreshold = uint8(threshold)

	cfg.LogReceivedWS = envBool("GATEWAY_LOG_RECEIVED_WS")
	cfg.LogSentWS = envBool("GATEWAY_LOG_SENT_WS")
	return cfg, nil
}

// ShardConfig assembles the dial + session configuration for this
// environment.
func (c *Config) ShardConfig(logger gateway.Logger) *ShardConfig {
	options := []gateway.Option{
		gateway.WithShardID(gateway.ShardID(c.ShardID)),
	}
	if c.ShardCount > 0 {
		options = append(options, gateway.WithShardCount(c.ShardCount))
	}
	if c.Intents != 0 {
		options = append(options, gateway.WithIntents(c.Intents))
	}
	if c.LargeThreshold > 0 {
		options = append(options, gateway.WithLargeThreshold(c.LargeThreshold))
	}

	return &ShardConfig{
		BotToken:      c.BotToken,
		GatewayURL:    c.GatewayURL,
		Logger:        logger,
		LogReceivedWS: c.LogReceivedWS,
		LogSentWS:     c.LogSentWS,
		Options:       options,
	}
}

func envUint(key string) (uint, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s is not a number: %q", key, raw)
	}
	return uint(v), nil
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
