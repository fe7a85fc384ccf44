// Package clob is the Polymarket CLOB REST gateway used by the mirroring engine.
package clob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	json "github.com/goccy/go-json"
	"github.com/mselser95/polymarket-mirror/pkg/retry"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"github.com/polymarket/go-order-utils/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client talks to the CLOB REST API. All calls made through one Client share a single
// rate limiter, so the minimum spacing holds across every caller in the process.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	httpPolicy retry.Policy
	creds      Credentials
	signer     *Signer
	logger     *zap.Logger
	now        func() time.Time
}

// Config holds configuration for the CLOB client.
type Config struct {
	BaseURL         string
	Credentials     Credentials
	Signer          *Signer // nil for a read-only client
	MinCallInterval time.Duration
	HTTPPolicy      retry.Policy
	HTTPClient      *http.Client
	Logger          *zap.Logger
}

// NewClient creates a CLOB client.
func NewClient(cfg *Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	limit := rate.Inf
	if cfg.MinCallInterval > 0 {
		limit = rate.Every(cfg.MinCallInterval)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		httpPolicy: cfg.HTTPPolicy,
		creds:      cfg.Credentials,
		signer:     cfg.Signer,
		logger:     logger,
		now:        time.Now,
	}
}

// GetMarket fetches GET /markets/{conditionID}.
func (c *Client) GetMarket(ctx context.Context, conditionID string) (*types.MarketInfo, error) {
	var market types.MarketInfo
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/markets/" + url.PathEscape(conditionID),
		endpoint: "market",
	}, &market)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", types.ErrMarketNotFound, conditionID)
		}
		return nil, fmt.Errorf("fetch market: %w", err)
	}

	return &market, nil
}

// GetOrderBook fetches GET /book?token_id=.
func (c *Client) GetOrderBook(ctx context.Context, tokenID string) (*types.OrderBook, error) {
	var book types.OrderBook
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/book",
		query:    url.Values{"token_id": []string{tokenID}},
		endpoint: "book",
	}, &book)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", types.ErrBookNotFound, tokenID)
		}
		return nil, fmt.Errorf("fetch orderbook: %w", err)
	}

	return &book, nil
}

// BuildOrder signs an order for req. It makes no network call.
func (c *Client) BuildOrder(ctx context.Context, req types.OrderRequest) (*model.SignedOrder, error) {
	if c.signer == nil {
		return nil, fmt.Errorf("build order: client has no signer")
	}

	return c.signer.Sign(req)
}

// PostOrder submits a signed order. Only rate-limit responses are retried here: a server
// error may already have accepted the order.
func (c *Client) PostOrder(
	ctx context.Context,
	order *model.SignedOrder,
	orderType types.OrderType,
) (*types.OrderSubmissionResponse, error) {
	body := types.OrderSubmissionRequest{
		Order:     toSignedOrderJSON(order),
		Owner:     c.creds.APIKey,
		OrderType: orderType,
	}

	var resp types.OrderSubmissionResponse
	err := c.do(ctx, request{
		method:        http.MethodPost,
		path:          "/order",
		body:          body,
		authenticated: true,
		endpoint:      "order",
		retryable:     isRateLimited,
	}, &resp)
	if err != nil {
		var apiErr *types.APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return nil, rejection(order, apiErr)
		}
		return nil, fmt.Errorf("post order: %w", err)
	}

	return &resp, nil
}

// CancelOrder cancels a resting order via DELETE /order.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	var resp types.CancelOrderResponse
	err := c.do(ctx, request{
		method:        http.MethodDelete,
		path:          "/order",
		body:          types.CancelOrderRequest{OrderID: orderID},
		authenticated: true,
		endpoint:      "cancel",
	}, &resp)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}

	if reason, ok := resp.NotCanceled[orderID]; ok {
		c.logger.Debug("order-not-canceled",
			zap.String("order-id", orderID),
			zap.String("reason", reason))
	}

	return nil
}

// GetOrder fetches GET /data/order/{orderID}.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*types.OrderQueryResponse, error) {
	var resp types.OrderQueryResponse
	err := c.do(ctx, request{
		method:        http.MethodGet,
		path:          "/data/order/" + url.PathEscape(orderID),
		authenticated: true,
		endpoint:      "get-order",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	return &resp, nil
}

// DeriveAPIKey derives the L2 credentials bound to the signing key via GET
// /auth/derive-api-key. The same nonce always yields the same credentials.
func (c *Client) DeriveAPIKey(ctx context.Context, nonce int64) (Credentials, error) {
	if c.signer == nil {
		return Credentials{}, errors.New("derive api key requires a signer")
	}

	headers, err := l1Headers(c.signer, nonce, c.now())
	if err != nil {
		return Credentials{}, err
	}

	var resp types.APIKeyResponse
	err = c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/auth/derive-api-key",
		headers:  headers,
		endpoint: "derive-api-key",
	}, &resp)
	if err != nil {
		return Credentials{}, fmt.Errorf("derive api key: %w", err)
	}

	return Credentials{APIKey: resp.APIKey, Secret: resp.Secret, Passphrase: resp.Passphrase}, nil
}

type request struct {
	method        string
	path          string
	query         url.Values
	body          any
	authenticated bool
	headers       http.Header // extra headers, used for L1 auth
	endpoint      string      // metrics label
	retryable     func(error) bool
}

// do waits for the shared limiter before every attempt and retries per httpPolicy.
func (c *Client) do(ctx context.Context, r request, out any) error {
	var payload []byte
	if r.body != nil {
		encoded, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = encoded
	}

	retryable := r.retryable
	if retryable == nil {
		retryable = retry.IsTransient
	}

	policy := c.httpPolicy
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		RetriesTotal.WithLabelValues(r.endpoint).Inc()
		c.logger.Debug("clob-request-retrying",
			zap.String("endpoint", r.endpoint),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	return policy.Do(ctx, func(ctx context.Context) error {
		return c.attempt(ctx, r, payload, out)
	}, retryable)
}

func (c *Client) attempt(ctx context.Context, r request, payload []byte, out any) error {
	waitStart := time.Now()
	err := c.limiter.Wait(ctx)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	LimiterWaitSeconds.Observe(time.Since(waitStart).Seconds())

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	for key, values := range r.headers {
		req.Header[key] = values
	}

	if r.authenticated {
		if c.signer == nil || !c.creds.Valid() {
			return fmt.Errorf("%s %s requires API credentials and a signer", r.method, r.path)
		}
		headers, headerErr := l2Headers(c.creds, c.signer.Address(), r.method, r.path, payload, c.now())
		if headerErr != nil {
			return headerErr
		}
		for key, values := range headers {
			req.Header[key] = values
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		RequestsTotal.WithLabelValues(r.endpoint, "error").Inc()
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	RequestDurationSeconds.WithLabelValues(r.endpoint).Observe(time.Since(start).Seconds())
	RequestsTotal.WithLabelValues(r.endpoint, http.StatusText(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &types.APIError{
			StatusCode: resp.StatusCode,
			Method:     r.method,
			Path:       r.path,
			Body:       string(body),
		}
	}

	if out == nil || len(body) == 0 {
		return nil
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	return nil
}

func toSignedOrderJSON(order *model.SignedOrder) types.SignedOrderJSON {
	side := types.SideBuy
	if order.Side.Uint64() == uint64(model.SELL) {
		side = types.SideSell
	}

	return types.SignedOrderJSON{
		Salt:          order.Salt.Int64(),
		Maker:         order.Maker.Hex(),
		Signer:        order.Signer.Hex(),
		Taker:         order.Taker.Hex(),
		TokenID:       order.TokenId.String(),
		MakerAmount:   order.MakerAmount.String(),
		TakerAmount:   order.TakerAmount.String(),
		Side:          string(side),
		Expiration:    order.Expiration.String(),
		Nonce:         order.Nonce.String(),
		FeeRateBps:    order.FeeRateBps.String(),
		SignatureType: int(order.SignatureType.Int64()),
		Signature:     "0x" + common.Bytes2Hex(order.Signature),
	}
}

// rejection converts a 4xx order response into an OrderError carrying the CLOB error code.
func rejection(order *model.SignedOrder, apiErr *types.APIError) *types.OrderError {
	var payload struct {
		Error    string `json:"error"`
		ErrorMsg string `json:"errorMsg"`
	}
	_ = json.Unmarshal([]byte(apiErr.Body), &payload)

	message := payload.ErrorMsg
	if message == "" {
		message = payload.Error
	}
	if message == "" {
		message = apiErr.Body
	}

	side := types.SideBuy
	if order.Side.Uint64() == uint64(model.SELL) {
		side = types.SideSell
	}

	return &types.OrderError{
		Code:    errorCode(message),
		Message: message,
		Side:    side,
	}
}

var knownErrorCodes = []string{
	types.ErrInvalidMinTickSize,
	types.ErrNotEnoughBalance,
	types.ErrFOKNotFilled,
	types.ErrMarketNotReady,
	types.ErrUnmatched,
}

func errorCode(message string) string {
	for _, code := range knownErrorCodes {
		if strings.Contains(message, code) {
			return code
		}
	}
	return types.ErrUnknownStatus
}

func isStatus(err error, status int) bool {
	var apiErr *types.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

func isRateLimited(err error) bool {
	return isStatus(err, http.StatusTooManyRequests)
}
