package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/i474232898/krishimitra-sync/internal/common"
	"github.com/i474232898/krishimitra-sync/internal/domain"
)

// Client is the Remote Data Gateway backed by the KrishiMitra HTTP API.
// It holds no state besides its circuit breaker.
type Client struct {
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	validate *validator.Validate
	logger   logrus.FieldLogger
}

var _ domain.Gateway = (*Client)(nil)

// New creates a Client for baseURL. A nil logger discards gateway logs.
func New(baseURL string, client *http.Client, logger logrus.FieldLogger) *Client {
	if logger == nil {
		logger = common.DiscardLogger()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "krishimitra-api",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit:  cb,
		validate: validator.New(),
		logger:   logger.WithField("component", "gateway"),
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return c.do(ctx, method, path, nil, payload, "application/json", out)
}

// do runs one logical call. The payload is replayed on every retry and every
// attempt carries the same request id.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte, contentType string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	requestID := uuid.NewString()
	log := c.logger.WithFields(logrus.Fields{"method": method, "path": path, "request_id": requestID})

	buildRequest := func() (*http.Request, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequest(method, u, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		return req, nil
	}

	start := time.Now()
	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		log.WithError(err).Debug("request failed")
		return unavailable(method+" "+path, err)
	}
	log.WithFields(logrus.Fields{"status": resp.StatusCode, "took": time.Since(start).String()}).Debug("request done")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	defer drain(resp)

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrPartialData, path, err)
	}
	return nil
}

// checkSchema validates a decoded response against its struct tags.
func (c *Client) checkSchema(path string, v any) error {
	if err := c.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrPartialData, path, err)
	}
	return nil
}

func coordQuery(coord domain.Coordinate) url.Values {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", coord.Lat))
	q.Set("lon", fmt.Sprintf("%f", coord.Lon))
	return q
}

func setIf(q url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		q.Set(key, value)
	}
}
