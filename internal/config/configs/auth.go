package configs

// Auth configures verification of bearer tokens issued by the external
// identity provider. Tokens are RS256 signed; the provider's public key is
// read from PublicKeyPath at startup.
type Auth struct {
	PublicKeyPath string `env:"PUBLIC_KEY_PATH" envDefault:"/etc/viral-reward/idp.pem"`
	Issuer        string `env:"ISSUER"`
	Audience      string `env:"AUDIENCE"`
}
