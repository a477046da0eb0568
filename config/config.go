package config

import (
	"strings"

	"github.com/cyverse-de/configurate"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	EnvPrefix            = "IDSTORE_ADMIN"
	DefaultRoutingPrefix = "index.group"
)

type Config struct {
	AWSRegion   string
	AWSProfile  string
	AWSEndpoint string

	AMQPURI           string
	AMQPExchangeName  string
	AMQPRoutingPrefix string
}

// Load reads the config file at path, or starts from an empty configuration
// when path is empty. Environment variables override file values either way.
func Load(path string) (*viper.Viper, error) {
	var (
		cfg *viper.Viper
		err error
	)

	if path != "" {
		if cfg, err = configurate.Init(path); err != nil {
			return nil, errors.Wrapf(err, "Failed to read config file %s", path)
		}
	} else {
		cfg = viper.New()
	}

	cfg.SetEnvPrefix(EnvPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	return cfg, nil
}

func NewFromViper(cfg *viper.Viper) (*Config, error) {
	cfg.SetDefault("amqp.routing_prefix", DefaultRoutingPrefix)

	c := &Config{
		AWSRegion:   cfg.GetString("aws.region"),
		AWSProfile:  cfg.GetString("aws.profile"),
		AWSEndpoint: cfg.GetString("aws.endpoint"),

		AMQPURI:           cfg.GetString("amqp.uri"),
		AMQPExchangeName:  cfg.GetString("amqp.exchange.name"),
		AMQPRoutingPrefix: cfg.GetString("amqp.routing_prefix"),
	}

	err := c.Validate()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AMQPEnabled reports whether group change events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURI != ""
}

func (c *Config) Validate() error {
	var errorkeys []string

	// The AWS settings all fall back to the SDK's default chain.

	if c.AMQPEnabled() {
		if c.AMQPExchangeName == "" {
			errorkeys = append(errorkeys, "amqp.exchange.name")
		}
		if c.AMQPRoutingPrefix == "" {
			errorkeys = append(errorkeys, "amqp.routing_prefix")
		}
	}

	if len(errorkeys) > 0 {
		return errors.Errorf("Configuration keys must be set: %s", strings.Join(errorkeys, ", "))
	}
	return nil
}
