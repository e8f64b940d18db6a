// Command adapterd is the entry point for the order and credit-signature
// adapter. It loads configuration, resolves the signing keys, wires the
// per-protocol builders behind the facade, executes one build request, and
// prints the signed order as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"

	"github.com/parallel-finance/marketadapter/internal/adapter"
	"github.com/parallel-finance/marketadapter/internal/chain"
	"github.com/parallel-finance/marketadapter/internal/config"
	"github.com/parallel-finance/marketadapter/internal/crypto"
	"github.com/parallel-finance/marketadapter/internal/domain"
	"github.com/parallel-finance/marketadapter/internal/eip712"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	requestPath := flag.String("request", "-", "path to a JSON build request ('-' for stdin)")
	flag.Parse()

	// Setup structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Set log level from config.
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *requestPath, logger); err != nil {
		logger.Error("build failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, requestPath string, logger *slog.Logger) error {
	signer, err := crypto.NewRingSigner(
		crypto.KeySource{
			RawPrivateKey:    cfg.Wallet.PrivateKey,
			EncryptedKeyPath: cfg.Wallet.EncryptedKeyPath,
			KeyPassword:      cfg.Wallet.KeyPassword,
		},
		crypto.KeySource{
			RawPrivateKey:    cfg.CoSigner.PrivateKey,
			EncryptedKeyPath: cfg.CoSigner.EncryptedKeyPath,
			KeyPassword:      cfg.CoSigner.KeyPassword,
		},
	)
	if err != nil {
		return fmt.Errorf("resolving signing keys: %w", err)
	}

	accessor, err := chain.NewClient(
		cfg.Chain.RPCURL,
		common.HexToAddress(cfg.Contracts.SeaportExchange),
		common.HexToAddress(cfg.Contracts.BlurExchange),
	)
	if err != nil {
		return fmt.Errorf("connecting to chain: %w", err)
	}
	defer accessor.Close()

	registry := eip712.NewRegistry(big.NewInt(cfg.Chain.ChainID), map[domain.Protocol]common.Address{
		domain.ProtocolSeaport:   common.HexToAddress(cfg.Contracts.SeaportExchange),
		domain.ProtocolLooksRare: common.HexToAddress(cfg.Contracts.LooksRareExchange),
		domain.ProtocolX2Y2:      common.HexToAddress(cfg.Contracts.X2Y2Exchange),
		domain.ProtocolBlur:      common.HexToAddress(cfg.Contracts.BlurExchange),
	})

	facade := adapter.New(signer, registry, accessor, adapter.Options{
		ApprovedStrategies: config.Addresses(cfg.Contracts.ApprovedStrategies),
		ApprovedPolicies:   config.Addresses(cfg.Contracts.ApprovedPolicies),
		CreditSettlement:   common.HexToAddress(cfg.Credit.SettlementContract),
	}, logger)

	req, err := readRequest(requestPath)
	if err != nil {
		return err
	}

	logger.Info("building order",
		slog.String("protocol", string(req.Protocol)),
		slog.String("maker", signer.Address().Hex()),
	)
	order, err := facade.BuildAndSign(ctx, req)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(order, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding signed order: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func readRequest(path string) (adapter.BuildRequest, error) {
	var req adapter.BuildRequest
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return req, fmt.Errorf("reading build request: %w", err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parsing build request: %w", err)
	}
	return req, nil
}
