package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies MKTADAPTER_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MKTADAPTER_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML.
func applyEnvOverrides(cfg *Config) {
	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "MKTADAPTER_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.EncryptedKeyPath, "MKTADAPTER_WALLET_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Wallet.KeyPassword, "MKTADAPTER_WALLET_KEY_PASSWORD")

	// ── Co-signer ──
	setStr(&cfg.CoSigner.PrivateKey, "MKTADAPTER_COSIGNER_PRIVATE_KEY")
	setStr(&cfg.CoSigner.EncryptedKeyPath, "MKTADAPTER_COSIGNER_ENCRYPTED_KEY_PATH")
	setStr(&cfg.CoSigner.KeyPassword, "MKTADAPTER_COSIGNER_KEY_PASSWORD")

	// ── Chain ──
	setStr(&cfg.Chain.RPCURL, "MKTADAPTER_CHAIN_RPC_URL")
	setInt64(&cfg.Chain.ChainID, "MKTADAPTER_CHAIN_CHAIN_ID")

	// ── Contracts ──
	setStr(&cfg.Contracts.SeaportExchange, "MKTADAPTER_CONTRACTS_SEAPORT_EXCHANGE")
	setStr(&cfg.Contracts.LooksRareExchange, "MKTADAPTER_CONTRACTS_LOOKSRARE_EXCHANGE")
	setStr(&cfg.Contracts.X2Y2Exchange, "MKTADAPTER_CONTRACTS_X2Y2_EXCHANGE")
	setStr(&cfg.Contracts.BlurExchange, "MKTADAPTER_CONTRACTS_BLUR_EXCHANGE")
	setStringSlice(&cfg.Contracts.ApprovedStrategies, "MKTADAPTER_CONTRACTS_APPROVED_STRATEGIES")
	setStringSlice(&cfg.Contracts.ApprovedPolicies, "MKTADAPTER_CONTRACTS_APPROVED_POLICIES")

	// ── Credit ──
	setStr(&cfg.Credit.SettlementContract, "MKTADAPTER_CREDIT_SETTLEMENT_CONTRACT")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "MKTADAPTER_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
