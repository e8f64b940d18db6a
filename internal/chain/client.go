package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Minimal read-only fragments of the exchange ABIs.
const (
	counterABIJSON = `[{"name":"getCounter","type":"function","stateMutability":"view","inputs":[{"name":"offerer","type":"address"}],"outputs":[{"name":"counter","type":"uint256"}]}]`
	noncesABIJSON  = `[{"name":"nonces","type":"function","stateMutability":"view","inputs":[{"name":"trader","type":"address"}],"outputs":[{"name":"nonce","type":"uint256"}]}]`
)

// Client is the ethclient-backed Accessor.
type Client struct {
	eth             *ethclient.Client
	counterContract common.Address
	nonceContract   common.Address
	counterABI      abi.ABI
	noncesABI       abi.ABI
}

// NewClient dials rpcURL and binds the two exchange contracts read at build
// time: the standard exchange for counters, the policy exchange for nonces.
func NewClient(rpcURL string, counterContract, nonceContract common.Address) (*Client, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("chain: dialing %s: %w", rpcURL, err)
	}
	counterABI, err := abi.JSON(strings.NewReader(counterABIJSON))
	if err != nil {
		return nil, fmt.Errorf("chain: parsing counter ABI: %w", err)
	}
	noncesABI, err := abi.JSON(strings.NewReader(noncesABIJSON))
	if err != nil {
		return nil, fmt.Errorf("chain: parsing nonces ABI: %w", err)
	}
	return &Client{
		eth:             eth,
		counterContract: counterContract,
		nonceContract:   nonceContract,
		counterABI:      counterABI,
		noncesABI:       noncesABI,
	}, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// Counter reads getCounter(offerer) from the standard exchange.
func (c *Client) Counter(ctx context.Context, offerer common.Address) (*big.Int, error) {
	return c.readUint(ctx, c.counterABI, c.counterContract, "getCounter", offerer)
}

// Nonce reads nonces(trader) from the policy exchange.
func (c *Client) Nonce(ctx context.Context, trader common.Address) (*big.Int, error) {
	return c.readUint(ctx, c.noncesABI, c.nonceContract, "nonces", trader)
}

// ChainID returns the connected chain's id.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain: reading chain id: %w", err)
	}
	return id, nil
}

// BlockTimestamp returns the latest block's timestamp.
func (c *Client) BlockTimestamp(ctx context.Context) (uint64, error) {
	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("chain: reading latest header: %w", err)
	}
	return header.Time, nil
}

func (c *Client) readUint(ctx context.Context, parsed abi.ABI, contract common.Address, method string, account common.Address) (*big.Int, error) {
	data, err := parsed.Pack(method, account)
	if err != nil {
		return nil, fmt.Errorf("chain: packing %s call: %w", method, err)
	}
	raw, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("chain: calling %s on %s: %w", method, contract.Hex(), err)
	}
	out, err := parsed.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("chain: decoding %s result: %w", method, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("chain: unexpected %s result arity %d", method, len(out))
	}
	val, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("chain: unexpected %s result type %T", method, out[0])
	}
	return val, nil
}
