// Package config defines the top-level configuration for the order adapter
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by MKTADAPTER_* environment
// variables.
type Config struct {
	Wallet    WalletConfig    `toml:"wallet"`
	CoSigner  WalletConfig    `toml:"cosigner"`
	Chain     ChainConfig     `toml:"chain"`
	Contracts ContractsConfig `toml:"contracts"`
	Credit    CreditConfig    `toml:"credit"`
	LogLevel  string          `toml:"log_level"`
}

// WalletConfig holds one signing identity's credentials: either a raw key or
// an encrypted key file plus its password.
type WalletConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// ChainConfig holds the RPC endpoint and chain parameters.
type ChainConfig struct {
	RPCURL  string `toml:"rpc_url"`
	ChainID int64  `toml:"chain_id"`
}

// ContractsConfig holds the per-protocol verifying-contract addresses and
// the approved strategy/policy allowlists. Addresses are consumed as opaque
// configuration; approval semantics live at settlement time.
type ContractsConfig struct {
	SeaportExchange    string   `toml:"seaport_exchange"`
	LooksRareExchange  string   `toml:"looksrare_exchange"`
	X2Y2Exchange       string   `toml:"x2y2_exchange"`
	BlurExchange       string   `toml:"blur_exchange"`
	ApprovedStrategies []string `toml:"approved_strategies"`
	ApprovedPolicies   []string `toml:"approved_policies"`
}

// CreditConfig holds the settlement contract that verifies credit voucher
// signatures.
type CreditConfig struct {
	SettlementContract string `toml:"settlement_contract"`
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Chain: ChainConfig{
			RPCURL:  "http://127.0.0.1:8545",
			ChainID: 1,
		},
		LogLevel: "info",
	}
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// ── Wallet ──
	// Exactly one credential source must be usable.
	if c.Wallet.PrivateKey == "" && c.Wallet.EncryptedKeyPath == "" {
		errs = append(errs, "wallet: either private_key or encrypted_key_path must be set")
	}
	if c.Wallet.EncryptedKeyPath != "" && c.Wallet.KeyPassword == "" {
		errs = append(errs, "wallet: key_password is required when encrypted_key_path is set")
	}
	if c.CoSigner.EncryptedKeyPath != "" && c.CoSigner.KeyPassword == "" {
		errs = append(errs, "cosigner: key_password is required when encrypted_key_path is set")
	}

	if c.Chain.RPCURL == "" {
		errs = append(errs, "chain: rpc_url must not be empty")
	}
	if c.Chain.ChainID <= 0 {
		errs = append(errs, fmt.Sprintf("chain: chain_id must be positive, got %d", c.Chain.ChainID))
	}

	checkAddr := func(field, v string) {
		if v == "" {
			errs = append(errs, field+" must not be empty")
			return
		}
		if !common.IsHexAddress(v) {
			errs = append(errs, fmt.Sprintf("%s: %q is not a hex address", field, v))
		}
	}
	checkAddr("contracts: seaport_exchange", c.Contracts.SeaportExchange)
	checkAddr("contracts: looksrare_exchange", c.Contracts.LooksRareExchange)
	checkAddr("contracts: x2y2_exchange", c.Contracts.X2Y2Exchange)
	checkAddr("contracts: blur_exchange", c.Contracts.BlurExchange)
	checkAddr("credit: settlement_contract", c.Credit.SettlementContract)
	for i, s := range c.Contracts.ApprovedStrategies {
		if !common.IsHexAddress(s) {
			errs = append(errs, fmt.Sprintf("contracts: approved_strategies[%d]: %q is not a hex address", i, s))
		}
	}
	for i, p := range c.Contracts.ApprovedPolicies {
		if !common.IsHexAddress(p) {
			errs = append(errs, fmt.Sprintf("contracts: approved_policies[%d]: %q is not a hex address", i, p))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Addresses converts a validated string slice into address form.
func Addresses(in []string) []common.Address {
	out := make([]common.Address, 0, len(in))
	for _, s := range in {
		out = append(out, common.HexToAddress(s))
	}
	return out
}
