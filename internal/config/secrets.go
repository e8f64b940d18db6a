package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so keys are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg

	redact(&out.Wallet.PrivateKey)
	redact(&out.Wallet.KeyPassword)
	redact(&out.CoSigner.PrivateKey)
	redact(&out.CoSigner.KeyPassword)

	return out
}

func redact(s *string) {
	if *s != "" {
		*s = "***"
	}
}
