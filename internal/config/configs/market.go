package configs

// Market holds marketplace policy knobs. Bonuses are expressed in minor
// currency units (cents) and are credited once, at registration, as an
// initial-bonus ledger entry.
type Market struct {
	AdvertiserBonus int64 `env:"ADVERTISER_BONUS" envDefault:"0"`
	ClipperBonus    int64 `env:"CLIPPER_BONUS" envDefault:"0"`
	// SeedDemo provisions a demo advertiser, clipper and campaign on start.
	SeedDemo bool `env:"SEED_DEMO" envDefault:"false"`
	// ListLimit caps the number of rows returned by list queries.
	ListLimit int `env:"LIST_LIMIT" envDefault:"100"`
}
