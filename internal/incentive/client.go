package incentive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sheikh-saqib/midas-transaction-engine/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 2 * time.Second

	maxResponseBytes = 1 << 20
)

var (
	ErrBadStatus         = errors.New("unexpected status")
	ErrMalformedResponse = errors.New("malformed response")
)

// BreakerConfig controls when the client stops calling a failing service.
type BreakerConfig struct {
	ConsecutiveFailures uint32        // failures in a row that open the breaker
	OpenTimeout         time.Duration // how long the breaker stays open
	MaxRequests         uint32        // probes allowed while half-open
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
		MaxRequests:         1,
	}
}

type Config struct {
	URL     string
	Timeout time.Duration
	Breaker BreakerConfig
}

// Client calls the external incentive service. FetchBonus never returns an
// error; every failure becomes an Unavailable result and a warning log line.
type Client struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Breaker == (BreakerConfig{}) {
		cfg.Breaker = DefaultBreakerConfig()
	}

	c := &Client{
		url:        cfg.URL,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
		logger:     logger,
	}

	threshold := cfg.Breaker.ConsecutiveFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "incentive",
		MaxRequests: cfg.Breaker.MaxRequests,
		Timeout:     cfg.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("incentive circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return c
}

type bonusRequest struct {
	Sender    string      `json:"sender"`
	Recipient string      `json:"recipient"`
	Amount    json.Number `json:"amount"`
}

type bonusResponse struct {
	Amount json.RawMessage `json:"amount"`
}

func (c *Client) FetchBonus(ctx context.Context, event models.TransferEvent) Result {
	out, err := c.breaker.Execute(func() (any, error) {
		return c.call(ctx, event)
	})
	if err != nil {
		c.logger.Warn("incentive service unavailable, continuing with zero bonus",
			zap.String("sender", event.Sender),
			zap.String("breaker_state", c.breaker.State().String()),
			zap.Error(err),
		)
		return Unavailable(err)
	}
	return Ok(out.(decimal.Decimal))
}

func (c *Client) call(ctx context.Context, event models.TransferEvent) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(bonusRequest{
		Sender:    event.Sender,
		Recipient: event.Recipient,
		Amount:    json.Number(event.Amount.String()),
	})
	if err != nil {
		return decimal.Zero, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return decimal.Zero, err
	}

	return parseBonus(raw)
}

// parseBonus accepts a JSON number >= 0. A missing or null amount means no bonus.
func parseBonus(raw []byte) (decimal.Decimal, error) {
	var payload bonusResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	v := bytes.TrimSpace(payload.Amount)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return decimal.Zero, nil
	}
	if v[0] == '"' {
		return decimal.Zero, fmt.Errorf("%w: amount is not a number", ErrMalformedResponse)
	}

	bonus, err := decimal.NewFromString(string(v))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if bonus.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative amount %s", ErrMalformedResponse, bonus)
	}
	if err := models.CheckAmount(bonus); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return bonus, nil
}
