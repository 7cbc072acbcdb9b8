package configs

// Redis configures the Pub/Sub change feed that drives live queries. When
// Enabled is false an in-process feed is used instead, which only reaches
// subscribers connected to the same instance.
type Redis struct {
	Enabled  bool   `env:"ENABLED" envDefault:"false"`
	Addr     string `env:"ADDRESS" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	// ChannelPrefix namespaces the channels so several deployments can
	// share one Redis.
	ChannelPrefix string `env:"CHANNEL_PREFIX" envDefault:"viral-reward"`
}
