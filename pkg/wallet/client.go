// Package wallet reads follower and target balances from Polygon and the Polymarket data API.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	json "github.com/goccy/go-json"
	"github.com/mselser95/polymarket-mirror/pkg/retry"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultUSDC       = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"
	defaultDataAPIURL = "https://data-api.polymarket.com"
	usdcDecimals      = 6

	balanceOfABI = `[{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"}]`
)

// contractCaller is the slice of ethclient.Client used for balance reads.
type contractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	Close()
}

type dialFunc func(ctx context.Context, rpcURL string) (contractCaller, error)

func dialEthclient(ctx context.Context, rpcURL string) (contractCaller, error) {
	return ethclient.DialContext(ctx, rpcURL)
}

// Client fetches USDC balances over RPC and positions over the data API.
type Client struct {
	rpcURLs    []string
	usdc       common.Address
	dataAPIURL string
	httpClient *http.Client
	httpPolicy retry.Policy
	balanceOf  abi.ABI
	dial       dialFunc
	logger     *zap.Logger
}

// ClientConfig holds wallet client configuration.
type ClientConfig struct {
	RPCURLs     []string // tried in order
	USDCAddress string
	DataAPIURL  string
	HTTPPolicy  retry.Policy
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// NewClient creates a new wallet client.
func NewClient(cfg *ClientConfig) (c *Client, err error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if len(cfg.RPCURLs) == 0 {
		return nil, errors.New("at least one RPC URL is required")
	}

	usdc := cfg.USDCAddress
	if usdc == "" {
		usdc = defaultUSDC
	}
	if !common.IsHexAddress(usdc) {
		return nil, fmt.Errorf("invalid USDC address %q", usdc)
	}

	dataAPIURL := cfg.DataAPIURL
	if dataAPIURL == "" {
		dataAPIURL = defaultDataAPIURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	parsed, err := abi.JSON(strings.NewReader(balanceOfABI))
	if err != nil {
		return nil, fmt.Errorf("parse ABI: %w", err)
	}

	policy := cfg.HTTPPolicy
	if policy.MaxAttempts < 1 {
		policy = retry.Fixed(1, 0)
	}

	client := &Client{
		rpcURLs:    cfg.RPCURLs,
		usdc:       common.HexToAddress(usdc),
		dataAPIURL: strings.TrimRight(dataAPIURL, "/"),
		httpClient: httpClient,
		httpPolicy: policy,
		balanceOf:  parsed,
		dial:       dialEthclient,
		logger:     cfg.Logger,
	}

	return client, nil
}

// USDCBalance returns the USDC balance of address in dollars. RPC endpoints are tried in
// order; the first one that answers wins.
func (c *Client) USDCBalance(ctx context.Context, address string) (balance float64, err error) {
	if !common.IsHexAddress(address) {
		return 0, fmt.Errorf("invalid address %q", address)
	}

	data, err := c.balanceOf.Pack("balanceOf", common.HexToAddress(address))
	if err != nil {
		return 0, fmt.Errorf("pack ABI: %w", err)
	}

	errs := make([]error, 0, len(c.rpcURLs))
	for i, rpcURL := range c.rpcURLs {
		raw, callErr := c.callBalance(ctx, rpcURL, data)
		if callErr == nil {
			return decimal.NewFromBigInt(raw, -usdcDecimals).InexactFloat64(), nil
		}

		if ctx.Err() != nil {
			return 0, fmt.Errorf("get USDC balance: %w", ctx.Err())
		}

		RPCFailuresTotal.WithLabelValues(fmt.Sprintf("%d", i+1)).Inc()
		c.logger.Warn("rpc-endpoint-failed",
			zap.Int("endpoint", i+1),
			zap.String("address", address),
			zap.Error(callErr))
		errs = append(errs, callErr)
	}

	return 0, fmt.Errorf("get USDC balance: all RPC endpoints failed: %w", errors.Join(errs...))
}

func (c *Client) callBalance(ctx context.Context, rpcURL string, data []byte) (*big.Int, error) {
	client, err := c.dial(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial RPC: %w", err)
	}
	defer client.Close()

	msg := ethereum.CallMsg{
		To:   &c.usdc,
		Data: data,
	}

	result, err := client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call contract: %w", err)
	}

	return new(big.Int).SetBytes(result), nil
}

// Positions fetches the open positions of address from the data API. Zero-size entries are
// dropped.
func (c *Client) Positions(ctx context.Context, address string) (positions []types.Position, err error) {
	query := url.Values{}
	query.Set("user", address)
	target := c.dataAPIURL + "/positions?" + query.Encode()

	raw, err := retry.DoValue(ctx, c.httpPolicy, func(ctx context.Context) ([]types.Position, error) {
		return c.fetchPositions(ctx, target)
	}, retry.IsTransient)
	if err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}

	positions = make([]types.Position, 0, len(raw))
	for _, pos := range raw {
		if pos.Size > 0 {
			positions = append(positions, pos)
		}
	}

	return positions, nil
}

func (c *Client) fetchPositions(ctx context.Context, target string) ([]types.Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &types.APIError{
			StatusCode: resp.StatusCode,
			Method:     http.MethodGet,
			Path:       "/positions",
			Body:       string(body),
		}
	}

	var positions []types.Position
	err = json.Unmarshal(body, &positions)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return positions, nil
}
